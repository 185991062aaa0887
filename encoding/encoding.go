// Package encoding provides the Base64/JSON envelope for x402 payment headers.
// The X-PAYMENT request header carries a PaymentPayload and the
// X-PAYMENT-RESPONSE response header carries a SettlementResponseHeader, both
// as standard-alphabet base64 of UTF-8 JSON.
package encoding

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	x402 "github.com/mark3labs/x402-function-go"
)

// EncodePayment converts a PaymentPayload to a base64-encoded JSON string
// suitable for the X-PAYMENT header. The output never contains line breaks.
//
// Returns an error if JSON marshaling fails.
func EncodePayment(payment x402.PaymentPayload) (string, error) {
	paymentJSON, err := json.Marshal(payment)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payment: %w", err)
	}
	return base64.StdEncoding.EncodeToString(paymentJSON), nil
}

// DecodePayment converts a base64-encoded JSON string to a PaymentPayload.
//
// Returns an error wrapping x402.ErrMalformedHeader if base64 decoding or
// JSON unmarshaling fails, and x402.ErrUnsupportedVersion if the decoded
// payload carries a protocol version other than 1.
func DecodePayment(encoded string) (x402.PaymentPayload, error) {
	var payment x402.PaymentPayload

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return payment, fmt.Errorf("%w: invalid base64: %v", x402.ErrMalformedHeader, err)
	}

	if err := json.Unmarshal(decoded, &payment); err != nil {
		return payment, fmt.Errorf("%w: invalid JSON: %v", x402.ErrMalformedHeader, err)
	}

	if payment.X402Version != x402.ProtocolVersion {
		return payment, fmt.Errorf("%w: %d", x402.ErrUnsupportedVersion, payment.X402Version)
	}

	return payment, nil
}

// EncodeSettlementHeader converts a SettlementResponseHeader to a
// base64-encoded JSON string suitable for the X-PAYMENT-RESPONSE header.
//
// Returns an error if JSON marshaling fails.
func EncodeSettlementHeader(header x402.SettlementResponseHeader) (string, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("failed to marshal settlement header: %w", err)
	}
	return base64.StdEncoding.EncodeToString(headerJSON), nil
}

// EncodeRequirements converts a PaymentRequiredResponse to a base64-encoded
// JSON string. Useful for passing requirements out of band.
func EncodeRequirements(requirements x402.PaymentRequiredResponse) (string, error) {
	requirementsJSON, err := json.Marshal(requirements)
	if err != nil {
		return "", fmt.Errorf("failed to marshal requirements: %w", err)
	}
	return base64.StdEncoding.EncodeToString(requirementsJSON), nil
}

// DecodeRequirements converts a base64-encoded JSON string back to a
// PaymentRequiredResponse. Clients use this to read a 402 offer.
func DecodeRequirements(encoded string) (x402.PaymentRequiredResponse, error) {
	var requirements x402.PaymentRequiredResponse

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return requirements, fmt.Errorf("failed to decode base64: %w", err)
	}

	if err := json.Unmarshal(decoded, &requirements); err != nil {
		return requirements, fmt.Errorf("failed to unmarshal requirements: %w", err)
	}

	return requirements, nil
}

// DecodeSettlementHeader converts a base64-encoded JSON string back to a
// SettlementResponseHeader. Clients use this to read settlement receipts.
//
// Returns an error if base64 decoding or JSON unmarshaling fails.
func DecodeSettlementHeader(encoded string) (x402.SettlementResponseHeader, error) {
	var header x402.SettlementResponseHeader

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return header, fmt.Errorf("failed to decode base64: %w", err)
	}

	if err := json.Unmarshal(decoded, &header); err != nil {
		return header, fmt.Errorf("failed to unmarshal settlement header: %w", err)
	}

	return header, nil
}
