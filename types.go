// Package x402 defines the wire model for the server side of the x402
// "HTTP 402 Payment Required" payment-mediation protocol: the payment
// requirements a server advertises, the payment payload a client presents,
// and the verification/settlement records exchanged with a facilitator.
package x402

// ProtocolVersion is the x402 protocol version this module implements.
const ProtocolVersion = 1

// PaymentRequirement represents a single payment option offered in a 402 response.
type PaymentRequirement struct {
	// Scheme is the payment scheme identifier (e.g., "exact").
	Scheme string `json:"scheme"`

	// Network is the blockchain network identifier (e.g., "base-sepolia").
	Network string `json:"network"`

	// MaxAmountRequired is the payment amount in atomic units (e.g., wei).
	MaxAmountRequired string `json:"maxAmountRequired"`

	// Asset is the token contract address (EVM) or mint address (Solana).
	Asset string `json:"asset"`

	// PayTo is the recipient address for the payment.
	PayTo string `json:"payTo"`

	// Resource is the full URL of the protected resource as observed server-side.
	Resource string `json:"resource"`

	// Description is a human-readable payment description.
	Description string `json:"description"`

	// MimeType is the content type of the protected resource. Optional.
	MimeType string `json:"mimeType,omitempty"`

	// OutputSchema is a JSON schema describing the response format. Optional.
	OutputSchema map[string]interface{} `json:"outputSchema,omitempty"`

	// MaxTimeoutSeconds is the validity period for the payment authorization.
	MaxTimeoutSeconds int `json:"maxTimeoutSeconds"`

	// Extra contains scheme-specific additional data, such as the EIP-712
	// domain {name, version} for EVM "exact" payments. Optional.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// PaymentRequiredResponse is the JSON body of every 402 response.
type PaymentRequiredResponse struct {
	// X402Version is the protocol version (currently 1).
	X402Version int `json:"x402Version"`

	// Accepts is the list of payment options the server will accept.
	// This implementation always emits exactly one entry.
	Accepts []PaymentRequirement `json:"accepts"`

	// Error is a human-readable error message.
	Error string `json:"error"`
}

// PaymentPayload is the client's proof-of-payment envelope, carried
// base64-encoded in the X-PAYMENT request header.
type PaymentPayload struct {
	// X402Version is the protocol version (currently 1).
	X402Version int `json:"x402Version"`

	// Scheme is the payment scheme identifier. Must equal the selected
	// requirement's scheme.
	Scheme string `json:"scheme"`

	// Network is the blockchain network identifier. Must equal the selected
	// requirement's network.
	Network string `json:"network"`

	// Payload is the scheme-specific payment data. The server never inspects
	// it; it is forwarded opaquely to the facilitator.
	Payload map[string]interface{} `json:"payload"`
}

// VerificationResponse is returned by the facilitator's /verify endpoint.
type VerificationResponse struct {
	// IsValid indicates whether the payment proof is valid.
	IsValid bool `json:"isValid"`

	// InvalidReason provides details when IsValid is false.
	InvalidReason string `json:"invalidReason,omitempty"`

	// Payer is the address that signed the payment.
	Payer string `json:"payer"`
}

// SettlementResponse is returned by the facilitator's /settle endpoint.
type SettlementResponse struct {
	// Success indicates whether the payment was settled on-chain.
	Success bool `json:"success"`

	// ErrorReason provides details if settlement failed (omitted on success).
	ErrorReason string `json:"errorReason,omitempty"`

	// Transaction is the blockchain transaction hash (empty on failure).
	Transaction string `json:"transaction"`

	// Network is the blockchain network where the payment was settled.
	Network string `json:"network"`

	// Payer is the address that made the payment.
	Payer string `json:"payer"`
}

// SettlementResponseHeader is the record the server emits back to the client
// in the X-PAYMENT-RESPONSE header after a successful settlement. Transaction
// and Network are never null on the wire; absent values serialize as "".
type SettlementResponseHeader struct {
	Success     bool   `json:"success"`
	Transaction string `json:"transaction"`
	Network     string `json:"network"`
	Payer       string `json:"payer"`
}

// NewSettlementResponseHeader builds the response header record from a
// successful settlement.
func NewSettlementResponseHeader(settlement SettlementResponse) SettlementResponseHeader {
	return SettlementResponseHeader{
		Success:     true,
		Transaction: settlement.Transaction,
		Network:     settlement.Network,
		Payer:       settlement.Payer,
	}
}

// Kind identifies a payment scheme+network pair a facilitator supports,
// as enumerated by its /supported endpoint.
type Kind struct {
	Scheme  string `json:"scheme"`
	Network string `json:"network"`
}
