// Package gin provides Gin-compatible middleware for x402 payment gating.
// This package is a thin adapter that translates gin.Context to stdlib http
// patterns and delegates all payment verification and settlement logic to the
// http package.
package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpx402 "github.com/mark3labs/x402-function-go/http"
)

// ContextKey is the gin.Context key under which the verification response is
// stored for handler access.
const ContextKey = "x402_payment"

// Require wraps a route in the payment gate of the given middleware.
//
// The returned handler:
//   - runs the full verify-then-settle flow of httpx402.Middleware.Require,
//   - stores the verification response in the Gin context under ContextKey
//     (and in the request context under httpx402.PaymentContextKey),
//   - aborts the handler chain when payment fails, and
//   - routes the handler's response through the settlement gate so settlement
//     happens when the handler commits, not before it runs.
//
// Example usage:
//
//	m, _ := httpx402.NewMiddleware(httpx402.Config{
//	    Enabled:            true,
//	    FacilitatorBaseURL: "https://x402.org/facilitator",
//	    DefaultPayTo:       "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0",
//	})
//	r := gin.Default()
//	r.POST("/paid", ginx402.Require(m, httpx402.Payment{Price: "0.01"}), handler)
func Require(m *httpx402.Middleware, meta httpx402.Payment) gin.HandlerFunc {
	wrap := m.Require(meta)
	return func(c *gin.Context) {
		original := c.Writer
		handlerRan := false

		wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerRan = true
			c.Request = r
			if v := httpx402.PaymentFromContext(r.Context()); v != nil {
				c.Set(ContextKey, v)
			}

			// Route the rest of the chain through the settlement gate while
			// keeping Gin's extended writer interface intact.
			gw := &ginWriter{ResponseWriter: original, gate: w, status: http.StatusOK, size: noWritten}
			c.Writer = gw
			c.Next()
			// A status-only handler (c.Status with no body) leaves its status
			// buffered; commit it through the gate like Gin's engine does, so
			// the client gets the handler's status rather than an implicit 200.
			gw.WriteHeaderNow()
		})).ServeHTTP(original, c.Request)

		c.Writer = original
		if !handlerRan {
			// The payment gate already wrote the 402/500 response.
			c.Abort()
		}
	}
}

const noWritten = -1

// ginWriter satisfies gin.ResponseWriter while sending all output through the
// settlement gate. Status and size are tracked locally so Gin's logging and
// recovery middleware keep working.
type ginWriter struct {
	gin.ResponseWriter
	gate    http.ResponseWriter
	status  int
	size    int
	written bool
}

func (gw *ginWriter) Header() http.Header {
	return gw.gate.Header()
}

func (gw *ginWriter) WriteHeader(code int) {
	// Gin defers the actual flush to WriteHeaderNow or the first Write.
	if code > 0 && !gw.written {
		gw.status = code
	}
}

func (gw *ginWriter) WriteHeaderNow() {
	if gw.written {
		return
	}
	gw.written = true
	gw.size = 0
	gw.gate.WriteHeader(gw.status)
}

func (gw *ginWriter) Write(b []byte) (int, error) {
	gw.WriteHeaderNow()
	n, err := gw.gate.Write(b)
	gw.size += n
	return n, err
}

func (gw *ginWriter) WriteString(s string) (int, error) {
	return gw.Write([]byte(s))
}

func (gw *ginWriter) Status() int {
	return gw.status
}

func (gw *ginWriter) Size() int {
	return gw.size
}

func (gw *ginWriter) Written() bool {
	return gw.written
}

func (gw *ginWriter) Flush() {
	gw.WriteHeaderNow()
	if flusher, ok := gw.gate.(http.Flusher); ok {
		flusher.Flush()
	}
}
