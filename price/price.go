// Package price resolves the amount a protected route charges. A route either
// declares a static human-readable price or names a Calculator registered at
// wiring time; the resolved amount is converted to atomic token units before
// it is offered to clients.
package price

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"regexp"
	"strings"
	"sync"
)

var (
	// ErrNoPrice indicates a paid route with neither a static price nor a
	// usable calculator. This is a server misconfiguration.
	ErrNoPrice = errors.New("no price configured")

	// ErrInvalidPrice indicates a price string that is not a plain
	// non-negative decimal.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrCalculator wraps failures raised by a price calculator.
	ErrCalculator = errors.New("price calculator failed")
)

// DefaultAssetDecimals is the decimals used for atomic-unit conversion when a
// config does not set one (USDC = 6).
const DefaultAssetDecimals = 6

// Calculator computes a human-readable price for a request. Implementations
// must be stateless and safe for concurrent use. They may read any part of
// the request including the body; the middleware buffers the body on routes
// that reference a calculator so the handler can still read it.
type Calculator interface {
	CalculatePrice(r *http.Request) (string, error)
}

// CalculatorFunc adapts a function to the Calculator interface.
type CalculatorFunc func(r *http.Request) (string, error)

// CalculatePrice implements Calculator.
func (f CalculatorFunc) CalculatePrice(r *http.Request) (string, error) {
	return f(r)
}

// Registry maps calculator names to implementations. Route metadata
// references calculators by name; implementations are registered once at
// wiring time.
type Registry struct {
	mu          sync.RWMutex
	calculators map[string]Calculator
}

// NewRegistry creates an empty calculator registry.
func NewRegistry() *Registry {
	return &Registry{calculators: make(map[string]Calculator)}
}

// Register adds a calculator under the given name, replacing any previous
// registration.
func (reg *Registry) Register(name string, c Calculator) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.calculators[name] = c
}

// Get returns the calculator registered under name, or nil.
func (reg *Registry) Get(name string) Calculator {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.calculators[name]
}

// Resolver produces atomic-unit amounts for paid routes.
type Resolver struct {
	// Registry resolves calculator references. May be nil when every route
	// uses a static price.
	Registry *Registry

	// Decimals is the token decimals used for atomic-unit conversion.
	// Zero means DefaultAssetDecimals.
	Decimals int
}

// Resolve produces the atomic-unit amount for a request. A non-empty static
// price wins; otherwise calculatorRef is looked up and invoked. The human
// amount is converted with ToAtomicUnits.
func (res *Resolver) Resolve(r *http.Request, staticPrice, calculatorRef string) (string, error) {
	human := strings.TrimSpace(staticPrice)

	if human == "" && calculatorRef != "" {
		if res.Registry == nil {
			return "", fmt.Errorf("%w: no registry for calculator %q", ErrNoPrice, calculatorRef)
		}
		calc := res.Registry.Get(calculatorRef)
		if calc == nil {
			return "", fmt.Errorf("%w: calculator %q not registered", ErrNoPrice, calculatorRef)
		}
		out, err := calc.CalculatePrice(r)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrCalculator, calculatorRef, err)
		}
		human = strings.TrimSpace(out)
	}

	if human == "" {
		return "", ErrNoPrice
	}

	decimals := res.Decimals
	if decimals == 0 {
		decimals = DefaultAssetDecimals
	}
	return ToAtomicUnits(human, decimals)
}

// humanPriceRegex matches plain non-negative decimals: no sign, no exponent.
var humanPriceRegex = regexp.MustCompile(`^([0-9]+)(?:\.([0-9]+))?$`)

// ToAtomicUnits converts a human-readable decimal amount to atomic units:
// floor(human * 10^decimals), emitted as a canonical decimal string with no
// exponent and no leading zeros. Precision beyond the token decimals is
// truncated toward zero, so "0.0000009" with 6 decimals yields "0".
func ToAtomicUnits(human string, decimals int) (string, error) {
	m := humanPriceRegex.FindStringSubmatch(human)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrice, human)
	}
	intPart, fracPart := m[1], m[2]

	if len(fracPart) > decimals {
		fracPart = fracPart[:decimals]
	}
	fracPart += strings.Repeat("0", decimals-len(fracPart))

	atomic, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrice, human)
	}
	return atomic.String(), nil
}
