package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	x402 "github.com/mark3labs/x402-function-go"
)

// connectTimeout bounds connection establishment to the facilitator. No read
// timeout is imposed here; the facilitator may legitimately take up to the
// requirement's maxTimeoutSeconds to finalize, and callers bound the total
// round-trip through the request context.
const connectTimeout = 5 * time.Second

// FacilitatorHTTPError reports a non-200 status from the facilitator.
type FacilitatorHTTPError struct {
	Status int
	Body   string
}

func (e *FacilitatorHTTPError) Error() string {
	return fmt.Sprintf("facilitator returned HTTP %d: %s", e.Status, e.Body)
}

// Unwrap marks all facilitator HTTP failures as ErrFacilitatorUnavailable.
func (e *FacilitatorHTTPError) Unwrap() error {
	return x402.ErrFacilitatorUnavailable
}

// FacilitatorClient is a synchronous HTTP client for an x402 facilitator
// service. It is safe for concurrent use and is created once at startup.
type FacilitatorClient struct {
	baseURL string
	client  *http.Client
}

// NewFacilitatorClient creates a facilitator client for the given base URL.
// A single trailing slash is stripped at construction.
func NewFacilitatorClient(baseURL string) *FacilitatorClient {
	return &FacilitatorClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
	}
}

// facilitatorRequest is the envelope sent to /verify and /settle.
type facilitatorRequest struct {
	X402Version         int                     `json:"x402Version"`
	PaymentPayload      x402.PaymentPayload     `json:"paymentPayload"`
	PaymentRequirements x402.PaymentRequirement `json:"paymentRequirements"`
}

// supportedResponse is the body of GET /supported.
type supportedResponse struct {
	Kinds []x402.Kind `json:"kinds"`
}

// Verify checks a payment proof against a requirement without executing the
// transaction.
func (c *FacilitatorClient) Verify(ctx context.Context, payment x402.PaymentPayload, requirement x402.PaymentRequirement) (*x402.VerificationResponse, error) {
	var out x402.VerificationResponse
	if err := c.post(ctx, "/verify", payment, requirement, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Settle executes a verified payment on-chain.
func (c *FacilitatorClient) Settle(ctx context.Context, payment x402.PaymentPayload, requirement x402.PaymentRequirement) (*x402.SettlementResponse, error) {
	var out x402.SettlementResponse
	if err := c.post(ctx, "/settle", payment, requirement, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Supported queries the facilitator for the scheme+network pairs it can process.
func (c *FacilitatorClient) Supported(ctx context.Context) (map[x402.Kind]struct{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/supported", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", x402.ErrFacilitatorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &FacilitatorHTTPError{Status: resp.StatusCode, Body: string(body)}
	}

	var supported supportedResponse
	if err := json.NewDecoder(resp.Body).Decode(&supported); err != nil {
		return nil, fmt.Errorf("failed to decode supported response: %w", err)
	}

	kinds := make(map[x402.Kind]struct{}, len(supported.Kinds))
	for _, kind := range supported.Kinds {
		kinds[kind] = struct{}{}
	}
	return kinds, nil
}

// post sends the verify/settle envelope and decodes a 200 response into out.
func (c *FacilitatorClient) post(ctx context.Context, path string, payment x402.PaymentPayload, requirement x402.PaymentRequirement, out interface{}) error {
	data, err := json.Marshal(facilitatorRequest{
		X402Version:         x402.ProtocolVersion,
		PaymentPayload:      payment,
		PaymentRequirements: requirement,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", x402.ErrFacilitatorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &FacilitatorHTTPError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
