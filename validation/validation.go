// Package validation provides validation for payment requirements before they
// are offered to clients. Address checks are delegated to the chain SDKs so
// checksummed EVM addresses and base58 Solana keys are accepted exactly as the
// facilitator would accept them.
package validation

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"

	x402 "github.com/mark3labs/x402-function-go"
)

// ValidateAmount validates that an amount string is a canonical non-negative
// integer in atomic units: decimal digits only, no sign, no fraction, and no
// leading zeros except "0" itself.
func ValidateAmount(amount string) error {
	if amount == "" {
		return fmt.Errorf("%w: amount cannot be empty", x402.ErrInvalidAmount)
	}
	if len(amount) > 1 && amount[0] == '0' {
		return fmt.Errorf("%w: leading zeros in %q", x402.ErrInvalidAmount, amount)
	}
	for i := 0; i < len(amount); i++ {
		if amount[i] < '0' || amount[i] > '9' {
			return fmt.Errorf("%w: %q is not a non-negative integer", x402.ErrInvalidAmount, amount)
		}
	}

	// Digits-only strings of any length are fine; parse to confirm.
	if _, ok := new(big.Int).SetString(amount, 10); !ok {
		return fmt.Errorf("%w: %q", x402.ErrInvalidAmount, amount)
	}
	return nil
}

// ValidateAddress validates an address for the given network. EVM networks
// require a 0x-prefixed 20-byte hex address; SVM networks require a base58
// ed25519 public key.
func ValidateAddress(address string, network string) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	networkType, err := x402.ValidateNetwork(network)
	if err != nil {
		return fmt.Errorf("cannot validate address: %w", err)
	}

	switch networkType {
	case x402.NetworkTypeEVM:
		if !common.IsHexAddress(address) {
			return fmt.Errorf("invalid EVM address: %s", address)
		}
		return nil

	case x402.NetworkTypeSVM:
		if _, err := solana.PublicKeyFromBase58(address); err != nil {
			return fmt.Errorf("invalid Solana address %s: %w", address, err)
		}
		return nil

	default:
		return fmt.Errorf("unsupported network type for address validation: %d", networkType)
	}
}

// ValidateRequirement performs a full validation of a payment requirement
// before it is offered to clients: amount, network, scheme, and both
// addresses must be well formed.
func ValidateRequirement(req x402.PaymentRequirement) error {
	if req.Scheme == "" {
		return fmt.Errorf("invalid requirement: scheme cannot be empty")
	}
	if err := ValidateAmount(req.MaxAmountRequired); err != nil {
		return fmt.Errorf("invalid requirement: %w", err)
	}
	if _, err := x402.ValidateNetwork(req.Network); err != nil {
		return fmt.Errorf("invalid requirement: %w", err)
	}
	if err := ValidateAddress(req.PayTo, req.Network); err != nil {
		return fmt.Errorf("invalid requirement: payTo: %w", err)
	}
	if err := ValidateAddress(req.Asset, req.Network); err != nil {
		return fmt.Errorf("invalid requirement: asset: %w", err)
	}
	if req.MaxTimeoutSeconds < 0 {
		return fmt.Errorf("invalid requirement: timeout cannot be negative: %d", req.MaxTimeoutSeconds)
	}
	return nil
}
