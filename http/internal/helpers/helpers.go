// Package helpers provides the shared response-writing primitives used by the
// stdlib, Gin, and Chi variants of the payment middleware so all of them emit
// identical wire shapes.
package helpers

import (
	"encoding/json"
	"net/http"

	x402 "github.com/mark3labs/x402-function-go"
	"github.com/mark3labs/x402-function-go/encoding"
)

// PaymentHeader is the request header carrying the payment payload.
const PaymentHeader = "X-PAYMENT"

// PaymentResponseHeader is the response header carrying the settlement receipt.
const PaymentResponseHeader = "X-PAYMENT-RESPONSE"

// WritePaymentRequired writes a 402 response with a single-entry accepts list
// and the given error message.
func WritePaymentRequired(w http.ResponseWriter, requirement x402.PaymentRequirement, errMsg string) {
	response := x402.PaymentRequiredResponse{
		X402Version: x402.ProtocolVersion,
		Accepts:     []x402.PaymentRequirement{requirement},
		Error:       errMsg,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusPaymentRequired)
	// Headers are already sent with the 402 status; an encoding failure can
	// only truncate the body.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteServerError writes a 500 response with a JSON error body.
func WriteServerError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// AttachSettlementHeader sets the X-PAYMENT-RESPONSE header from a successful
// settlement and exposes it to browser clients via
// Access-Control-Expose-Headers.
func AttachSettlementHeader(h http.Header, settlement x402.SettlementResponse) error {
	encoded, err := encoding.EncodeSettlementHeader(x402.NewSettlementResponseHeader(settlement))
	if err != nil {
		return err
	}
	h.Set(PaymentResponseHeader, encoded)
	h.Add("Access-Control-Expose-Headers", PaymentResponseHeader)
	return nil
}
