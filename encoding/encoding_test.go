package encoding

import (
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"

	x402 "github.com/mark3labs/x402-function-go"
)

func TestPaymentRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payment x402.PaymentPayload
	}{
		{
			name: "ascii payload",
			payment: x402.PaymentPayload{
				X402Version: 1,
				Scheme:      "exact",
				Network:     "base-sepolia",
				Payload: map[string]interface{}{
					"signature": "0xabc",
					"authorization": map[string]interface{}{
						"from":  "0xFrom",
						"to":    "0xTo",
						"value": "10000",
					},
				},
			},
		},
		{
			name: "non-ascii payload",
			payment: x402.PaymentPayload{
				X402Version: 1,
				Scheme:      "exact",
				Network:     "base-sepolia",
				Payload: map[string]interface{}{
					"memo": "支付テスト émoji 🚀",
				},
			},
		},
		{
			name: "empty payload object",
			payment: x402.PaymentPayload{
				X402Version: 1,
				Scheme:      "exact",
				Network:     "solana",
				Payload:     map[string]interface{}{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodePayment(tt.payment)
			if err != nil {
				t.Fatalf("EncodePayment() error = %v", err)
			}
			if strings.ContainsAny(encoded, "\r\n") {
				t.Error("encoded header must not contain line breaks")
			}

			decoded, err := DecodePayment(encoded)
			if err != nil {
				t.Fatalf("DecodePayment() error = %v", err)
			}
			if !reflect.DeepEqual(decoded, tt.payment) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, tt.payment)
			}
		})
	}
}

func TestDecodePaymentErrors(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		wantErr error
	}{
		{
			name:    "invalid base64",
			encoded: "!!not-base64!!",
			wantErr: x402.ErrMalformedHeader,
		},
		{
			name:    "invalid JSON",
			encoded: base64.StdEncoding.EncodeToString([]byte("{not json")),
			wantErr: x402.ErrMalformedHeader,
		},
		{
			name:    "unsupported version",
			encoded: base64.StdEncoding.EncodeToString([]byte(`{"x402Version":2,"scheme":"exact","network":"base-sepolia","payload":{}}`)),
			wantErr: x402.ErrUnsupportedVersion,
		},
		{
			name:    "missing version",
			encoded: base64.StdEncoding.EncodeToString([]byte(`{"scheme":"exact","network":"base-sepolia","payload":{}}`)),
			wantErr: x402.ErrUnsupportedVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePayment(tt.encoded)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodePayment() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettlementHeaderRoundTrip(t *testing.T) {
	header := x402.NewSettlementResponseHeader(x402.SettlementResponse{
		Success:     true,
		Transaction: "0xTX",
		Network:     "base-sepolia",
		Payer:       "0xPayer",
	})

	encoded, err := EncodeSettlementHeader(header)
	if err != nil {
		t.Fatalf("EncodeSettlementHeader() error = %v", err)
	}

	decoded, err := DecodeSettlementHeader(encoded)
	if err != nil {
		t.Fatalf("DecodeSettlementHeader() error = %v", err)
	}
	if decoded != header {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, header)
	}
}

func TestRequirementsRoundTrip(t *testing.T) {
	requirements := x402.PaymentRequiredResponse{
		X402Version: 1,
		Accepts: []x402.PaymentRequirement{{
			Scheme:            "exact",
			Network:           "base-sepolia",
			MaxAmountRequired: "10000",
			Asset:             x402.BaseSepolia.USDCAddress,
			PayTo:             "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0",
			Resource:          "http://example.test/pay",
			MaxTimeoutSeconds: 30,
		}},
		Error: "X-PAYMENT header is required",
	}

	encoded, err := EncodeRequirements(requirements)
	if err != nil {
		t.Fatalf("EncodeRequirements() error = %v", err)
	}

	decoded, err := DecodeRequirements(encoded)
	if err != nil {
		t.Fatalf("DecodeRequirements() error = %v", err)
	}
	if !reflect.DeepEqual(decoded, requirements) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, requirements)
	}
}

func TestSettlementHeaderNormalizesAbsentFields(t *testing.T) {
	encoded, err := EncodeSettlementHeader(x402.NewSettlementResponseHeader(x402.SettlementResponse{
		Success: true,
		Payer:   "0xPayer",
	}))
	if err != nil {
		t.Fatalf("EncodeSettlementHeader() error = %v", err)
	}

	decoded, err := DecodeSettlementHeader(encoded)
	if err != nil {
		t.Fatalf("DecodeSettlementHeader() error = %v", err)
	}
	if decoded.Transaction != "" || decoded.Network != "" {
		t.Errorf("absent fields should normalize to empty strings, got %+v", decoded)
	}
	if !decoded.Success {
		t.Error("header built from a settlement must report success")
	}
}
