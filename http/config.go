package http

import (
	"fmt"
	"log/slog"

	x402 "github.com/mark3labs/x402-function-go"
	"github.com/mark3labs/x402-function-go/facilitator"
	"github.com/mark3labs/x402-function-go/price"
	"github.com/mark3labs/x402-function-go/validation"
)

// Config holds the process-wide configuration for the payment middleware.
// All fields are read-only after NewMiddleware.
type Config struct {
	// Enabled gates the whole middleware. When false, Require is a no-op
	// pass-through.
	Enabled bool

	// Scheme is the x402 scheme identifier offered in requirements.
	// Default "exact".
	Scheme string

	// Network is the network identifier offered in requirements.
	// Default "base-sepolia".
	Network string

	// Asset is the token contract address. Defaults to the Base Sepolia
	// USDC address.
	Asset string

	// AssetDecimals is the token decimals used for atomic-unit conversion.
	// Default 6.
	AssetDecimals int

	// DefaultPayTo is the fallback recipient address when route metadata
	// carries no payTo override.
	DefaultPayTo string

	// MaxTimeoutSeconds is copied into every requirement. Default 30.
	MaxTimeoutSeconds int

	// MimeType is the optional response MIME type copied into requirements.
	MimeType string

	// OutputSchema is the optional JSON schema copied into requirements.
	OutputSchema map[string]interface{}

	// Extra is the optional scheme-specific object copied into requirements
	// (e.g. the EIP-712 domain {name, version}).
	Extra map[string]interface{}

	// FacilitatorBaseURL is the facilitator endpoint. Required when Enabled
	// unless Facilitator is set directly.
	FacilitatorBaseURL string

	// Facilitator overrides the HTTP facilitator client. Used by tests and
	// by callers that need custom transports.
	Facilitator facilitator.Facilitator

	// Calculators resolves price-calculator references in route metadata.
	Calculators *price.Registry

	// Logger receives middleware logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Payment is the per-route payment metadata, attached at route registration
// time. Exactly one of Price and PriceCalculatorRef must be set.
type Payment struct {
	// Price is the static human-readable amount (e.g. "0.01").
	Price string

	// PayTo overrides Config.DefaultPayTo for this route.
	PayTo string

	// Description is the human-readable resource description offered in
	// requirements.
	Description string

	// PriceCalculatorRef names a Calculator in the configured registry,
	// consulted per request when Price is empty.
	PriceCalculatorRef string
}

// withDefaults returns a copy of the config with defaults applied.
func (cfg Config) withDefaults() Config {
	if cfg.Scheme == "" {
		cfg.Scheme = "exact"
	}
	if cfg.Network == "" {
		cfg.Network = x402.BaseSepolia.NetworkID
	}
	if cfg.Asset == "" {
		cfg.Asset = x402.BaseSepolia.USDCAddress
	}
	if cfg.AssetDecimals == 0 {
		cfg.AssetDecimals = price.DefaultAssetDecimals
	}
	if cfg.MaxTimeoutSeconds == 0 {
		cfg.MaxTimeoutSeconds = 30
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// validate checks the config after defaults. Only called when Enabled.
func (cfg Config) validate() error {
	if cfg.FacilitatorBaseURL == "" && cfg.Facilitator == nil {
		return fmt.Errorf("x402: facilitator base URL must be configured when enabled")
	}
	if _, err := x402.ValidateNetwork(cfg.Network); err != nil {
		return fmt.Errorf("x402: %w", err)
	}
	if err := validation.ValidateAddress(cfg.Asset, cfg.Network); err != nil {
		return fmt.Errorf("x402: asset: %w", err)
	}
	if cfg.DefaultPayTo != "" {
		if err := validation.ValidateAddress(cfg.DefaultPayTo, cfg.Network); err != nil {
			return fmt.Errorf("x402: defaultPayTo: %w", err)
		}
	}
	return nil
}
