// Package http implements the server side of the x402 payment flow for
// net/http handlers: a middleware that advertises payment requirements,
// verifies presented payment proofs with a facilitator before the protected
// handler runs, and settles exactly once after the handler commits a success
// response.
package http

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	x402 "github.com/mark3labs/x402-function-go"
	"github.com/mark3labs/x402-function-go/encoding"
	"github.com/mark3labs/x402-function-go/facilitator"
	"github.com/mark3labs/x402-function-go/http/internal/helpers"
	"github.com/mark3labs/x402-function-go/price"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// PaymentContextKey is the context key under which the verification response
// is stored for handler access.
const PaymentContextKey = contextKey("x402_payment")

// PaymentFromContext returns the verification response for a request that
// passed the payment gate, or nil.
func PaymentFromContext(ctx context.Context) *x402.VerificationResponse {
	v, _ := ctx.Value(PaymentContextKey).(*x402.VerificationResponse)
	return v
}

// Middleware wraps protected handlers with the x402 payment state machine.
// One instance is created at startup and shared by all routes; per-request
// state lives on the request and its wrapped response writer.
type Middleware struct {
	cfg         Config
	facilitator facilitator.Facilitator
	resolver    *price.Resolver
	logger      *slog.Logger
}

// NewMiddleware creates the payment middleware from a validated config.
func NewMiddleware(cfg Config) (*Middleware, error) {
	cfg = cfg.withDefaults()
	if cfg.Enabled {
		if err := cfg.validate(); err != nil {
			return nil, err
		}
	}

	f := cfg.Facilitator
	if f == nil && cfg.FacilitatorBaseURL != "" {
		f = NewFacilitatorClient(cfg.FacilitatorBaseURL)
	}

	return &Middleware{
		cfg:         cfg,
		facilitator: f,
		resolver:    &price.Resolver{Registry: cfg.Calculators, Decimals: cfg.AssetDecimals},
		logger:      cfg.Logger,
	}, nil
}

// Require gates a handler behind the payment metadata attached to its route.
// The returned middleware:
//
//   - builds a PaymentRequirement for the current request (resolving the
//     price statically or through the referenced calculator),
//   - responds 402 when the X-PAYMENT header is missing, malformed, or fails
//     facilitator verification,
//   - runs the handler with the verification result available via
//     PaymentFromContext, and
//   - settles the payment exactly once at the moment the handler commits a
//     status below 400, attaching the X-PAYMENT-RESPONSE receipt header on
//     success and replacing the response with a 402 on settlement failure.
func (m *Middleware) Require(meta Payment) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}
			m.serve(w, r, meta, next)
		})
	}
}

func (m *Middleware) serve(w http.ResponseWriter, r *http.Request, meta Payment, next http.Handler) {
	logger := m.logger

	// A body-reading calculator would exhaust the stream before the handler
	// runs; buffer it up front and hand each reader a fresh copy.
	var cachedBody []byte
	if meta.PriceCalculatorRef != "" && r.Body != nil && r.Body != http.NoBody {
		body, err := io.ReadAll(r.Body)
		r.Body.Close()
		if err != nil {
			logger.Error("x402 failed to read request body", "url", requestURL(r), "error", err)
			helpers.WriteServerError(w, "failed to read request body")
			return
		}
		cachedBody = body
		r.Body = io.NopCloser(bytes.NewReader(cachedBody))
	}

	requirement, err := m.buildRequirement(r, meta)
	if err != nil {
		logger.Error("x402 price resolution failed", "url", requestURL(r), "error", err)
		helpers.WriteServerError(w, "payment price resolution failed")
		return
	}

	// The calculator may have consumed the buffered body; rewind it for the
	// handler.
	if cachedBody != nil {
		r.Body = io.NopCloser(bytes.NewReader(cachedBody))
	}

	headerValue := r.Header.Get(helpers.PaymentHeader)
	if strings.TrimSpace(headerValue) == "" {
		logger.Info("x402 missing payment header", "url", requirement.Resource)
		helpers.WritePaymentRequired(w, requirement, helpers.PaymentHeader+" header is required")
		return
	}

	payment, err := encoding.DecodePayment(headerValue)
	if err != nil {
		logger.Warn("x402 invalid payment header", "url", requirement.Resource, "error", err)
		helpers.WritePaymentRequired(w, requirement, "malformed "+helpers.PaymentHeader+" header")
		return
	}

	if payment.Scheme != requirement.Scheme || payment.Network != requirement.Network {
		logger.Warn("x402 payment kind not accepted",
			"url", requirement.Resource, "scheme", payment.Scheme, "network", payment.Network)
		helpers.WritePaymentRequired(w, requirement,
			fmt.Sprintf("payment scheme %q on network %q is not accepted", payment.Scheme, payment.Network))
		return
	}

	verification, err := m.facilitator.Verify(r.Context(), payment, requirement)
	if err != nil {
		logger.Error("x402 facilitator verification error", "url", requirement.Resource, "error", err)
		helpers.WriteServerError(w, "payment verification failed")
		return
	}
	if !verification.IsValid {
		logger.Info("x402 payment verification failed",
			"url", requirement.Resource, "reason", verification.InvalidReason)
		helpers.WritePaymentRequired(w, requirement, verification.InvalidReason)
		return
	}

	logger.Info("x402 payment verified", "url", requirement.Resource, "payer", verification.Payer)
	r = r.WithContext(context.WithValue(r.Context(), PaymentContextKey, verification))

	pristine := w.Header().Clone()
	sw := &settlementWriter{
		w: w,
		settle: func() bool {
			return m.settle(w, r, payment, requirement, pristine)
		},
		onSkip: func(status int) {
			logger.Info("x402 handler failed, skipping settlement",
				"url", requirement.Resource, "status", status)
		},
	}
	next.ServeHTTP(sw, r)
	sw.finalize()
}

// settle performs the single settlement attempt for a request whose handler
// committed a success status. It returns true when the handler's response may
// proceed; on false it has already written a 402 to the underlying writer.
func (m *Middleware) settle(w http.ResponseWriter, r *http.Request, payment x402.PaymentPayload, requirement x402.PaymentRequirement, pristine http.Header) bool {
	logger := m.logger

	settlement, err := m.facilitator.Settle(r.Context(), payment, requirement)
	if err != nil {
		logger.Error("x402 settlement error", "url", requirement.Resource, "error", err)
		resetHeader(w.Header(), pristine)
		helpers.WritePaymentRequired(w, requirement, "settlement error: "+err.Error())
		return false
	}
	if !settlement.Success {
		reason := settlement.ErrorReason
		if reason == "" {
			reason = "settlement failed"
		}
		logger.Error("x402 settlement failed", "url", requirement.Resource, "reason", reason)
		resetHeader(w.Header(), pristine)
		helpers.WritePaymentRequired(w, requirement, reason)
		return false
	}

	if err := helpers.AttachSettlementHeader(w.Header(), *settlement); err != nil {
		// The payment is settled on-chain; losing the receipt header must not
		// fail the response.
		logger.Error("x402 failed to attach settlement header",
			"url", requirement.Resource, "error", err)
	}
	logger.Info("x402 payment settled",
		"url", requirement.Resource, "transaction", settlement.Transaction, "payer", settlement.Payer)
	return true
}

// buildRequirement derives the payment requirement for the current request
// from the route metadata and the process config.
func (m *Middleware) buildRequirement(r *http.Request, meta Payment) (x402.PaymentRequirement, error) {
	amount, err := m.resolver.Resolve(r, meta.Price, meta.PriceCalculatorRef)
	if err != nil {
		return x402.PaymentRequirement{}, err
	}

	payTo := meta.PayTo
	if payTo == "" {
		payTo = m.cfg.DefaultPayTo
	}

	return x402.PaymentRequirement{
		Scheme:            m.cfg.Scheme,
		Network:           m.cfg.Network,
		MaxAmountRequired: amount,
		Asset:             m.cfg.Asset,
		PayTo:             payTo,
		Resource:          requestURL(r),
		Description:       meta.Description,
		MimeType:          m.cfg.MimeType,
		OutputSchema:      m.cfg.OutputSchema,
		MaxTimeoutSeconds: m.cfg.MaxTimeoutSeconds,
		Extra:             m.cfg.Extra,
	}, nil
}

// resetHeader discards headers the handler staged for its abandoned response,
// restoring the set that was present before the handler ran.
func resetHeader(h http.Header, snapshot http.Header) {
	for k := range h {
		delete(h, k)
	}
	for k, v := range snapshot {
		h[k] = append([]string(nil), v...)
	}
}

// requestURL reconstructs the full URL of the request as observed server-side.
func requestURL(r *http.Request) string {
	// Proxy-style requests carry the absolute URL on the request line already.
	if r.URL.IsAbs() {
		return r.URL.String()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.RequestURI
}

// settlementWriter wraps the ResponseWriter to intercept the moment the
// handler commits its response. Settlement runs before any byte reaches the
// client, so a failed settlement can always be surfaced as a 402.
type settlementWriter struct {
	w http.ResponseWriter
	// settle performs the single settlement attempt; it reports whether the
	// handler's response may proceed.
	settle func() bool
	// onSkip is called instead of settle when the handler commits an error
	// status.
	onSkip    func(status int)
	committed bool
	discarded bool
}

func (sw *settlementWriter) Header() http.Header {
	return sw.w.Header()
}

func (sw *settlementWriter) Write(b []byte) (int, error) {
	// Write without WriteHeader implies 200 OK, which must trigger the
	// settlement gate first.
	if !sw.committed {
		sw.WriteHeader(http.StatusOK)
	}

	// After a failed settlement the 402 is already on the wire; the
	// handler's payload is silently discarded to avoid a mixed response.
	if sw.discarded {
		return len(b), nil
	}
	return sw.w.Write(b)
}

func (sw *settlementWriter) WriteHeader(statusCode int) {
	if sw.committed {
		return
	}
	sw.committed = true

	// Handler errors pass through untouched and are never settled.
	if statusCode >= 400 {
		if sw.onSkip != nil {
			sw.onSkip(statusCode)
		}
		sw.w.WriteHeader(statusCode)
		return
	}

	if !sw.settle() {
		sw.discarded = true
		return
	}
	sw.w.WriteHeader(statusCode)
}

// finalize commits an implicit 200 for handlers that return without writing,
// so the settlement gate runs exactly once for every completed request.
func (sw *settlementWriter) finalize() {
	if !sw.committed {
		sw.WriteHeader(http.StatusOK)
	}
}

// Flush implements http.Flusher to support streaming responses.
func (sw *settlementWriter) Flush() {
	if flusher, ok := sw.w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack implements http.Hijacker to support connection hijacking.
func (sw *settlementWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := sw.w.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, errors.New("hijacking not supported")
}

// Push implements http.Pusher to support HTTP/2 server push.
func (sw *settlementWriter) Push(target string, opts *http.PushOptions) error {
	if pusher, ok := sw.w.(http.Pusher); ok {
		return pusher.Push(target, opts)
	}
	return http.ErrNotSupported
}
