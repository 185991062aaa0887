// Package facilitator defines the contract with the external facilitator
// service trusted to verify payment proofs and settle them on-chain.
package facilitator

import (
	"context"

	x402 "github.com/mark3labs/x402-function-go"
)

// Facilitator verifies and settles x402 payments. Implementations must be
// safe for concurrent use; the server creates one client at startup and
// shares it across requests.
type Facilitator interface {
	// Verify checks a payment proof against a requirement without executing
	// the transaction. A reachable facilitator that rejects the proof returns
	// a response with IsValid=false and a nil error; transport failures and
	// non-200 statuses return an error.
	Verify(ctx context.Context, payment x402.PaymentPayload, requirement x402.PaymentRequirement) (*x402.VerificationResponse, error)

	// Settle executes a previously verified payment on-chain. Callers must
	// only pass payloads that Verify accepted. A reachable facilitator that
	// fails to settle returns a response with Success=false and a nil error.
	Settle(ctx context.Context, payment x402.PaymentPayload, requirement x402.PaymentRequirement) (*x402.SettlementResponse, error)

	// Supported enumerates the scheme+network pairs the facilitator can process.
	Supported(ctx context.Context) (map[x402.Kind]struct{}, error)
}
