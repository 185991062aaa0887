// Package chi provides Chi-compatible middleware for x402 payment gating.
// Chi middleware uses the stdlib func(http.Handler) http.Handler signature,
// so this package only adds the CORS preflight bypass on top of the http
// package's middleware.
package chi

import (
	"net/http"

	httpx402 "github.com/mark3labs/x402-function-go/http"
)

// Require wraps a route in the payment gate of the given middleware.
// OPTIONS requests bypass the gate so CORS preflights never see a 402.
//
// Example usage:
//
//	m, _ := httpx402.NewMiddleware(httpx402.Config{
//	    Enabled:            true,
//	    FacilitatorBaseURL: "https://x402.org/facilitator",
//	    DefaultPayTo:       "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0",
//	})
//	r := chi.NewRouter()
//	r.With(chix402.Require(m, httpx402.Payment{Price: "0.01"})).Post("/paid", handler)
func Require(m *httpx402.Middleware, meta httpx402.Payment) func(http.Handler) http.Handler {
	wrap := m.Require(meta)
	return func(next http.Handler) http.Handler {
		gated := wrap(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			gated.ServeHTTP(w, r)
		})
	}
}
