package price

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestToAtomicUnits(t *testing.T) {
	tests := []struct {
		human    string
		decimals int
		want     string
		wantErr  bool
	}{
		{"0.01", 6, "10000", false},
		{"0.03", 6, "30000", false},
		{"1", 6, "1000000", false},
		{"0", 6, "0", false},
		{"0.000001", 6, "1", false},
		{"123.456789", 6, "123456789", false},
		// Truncation toward zero beyond the token decimals.
		{"0.0000009", 6, "0", false},
		{"0.1234567", 6, "123456", false},
		{"2.5", 0, "2", false},
		{"0.5", 18, "500000000000000000", false},
		{"", 6, "", true},
		{"-1", 6, "", true},
		{"1e3", 6, "", true},
		{"1.", 6, "", true},
		{".5", 6, "", true},
		{"1,5", 6, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.human, func(t *testing.T) {
			got, err := ToAtomicUnits(tt.human, tt.decimals)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToAtomicUnits(%q, %d) error = %v, wantErr %v", tt.human, tt.decimals, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidPrice) {
					t.Errorf("error should wrap ErrInvalidPrice, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ToAtomicUnits(%q, %d) = %q, want %q", tt.human, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestResolverStaticPriceWins(t *testing.T) {
	registry := NewRegistry()
	registry.Register("never", CalculatorFunc(func(r *http.Request) (string, error) {
		t.Error("calculator must not be consulted when a static price is set")
		return "", nil
	}))

	res := &Resolver{Registry: registry}
	r := httptest.NewRequest(http.MethodGet, "/pay", nil)

	got, err := res.Resolve(r, "0.01", "never")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "10000" {
		t.Errorf("Resolve() = %q, want \"10000\"", got)
	}
}

func TestResolverCalculator(t *testing.T) {
	registry := NewRegistry()
	registry.Register("by-body", CalculatorFunc(func(r *http.Request) (string, error) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(body)), nil
	}))

	res := &Resolver{Registry: registry}
	r := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader("0.03\n"))

	got, err := res.Resolve(r, "", "by-body")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "30000" {
		t.Errorf("Resolve() = %q, want \"30000\"", got)
	}
}

func TestResolverErrors(t *testing.T) {
	registry := NewRegistry()
	registry.Register("failing", CalculatorFunc(func(r *http.Request) (string, error) {
		return "", errors.New("boom")
	}))
	registry.Register("empty", CalculatorFunc(func(r *http.Request) (string, error) {
		return "", nil
	}))

	r := httptest.NewRequest(http.MethodGet, "/pay", nil)

	tests := []struct {
		name          string
		resolver      *Resolver
		static        string
		calculatorRef string
		wantErr       error
	}{
		{"no price at all", &Resolver{Registry: registry}, "", "", ErrNoPrice},
		{"unregistered calculator", &Resolver{Registry: registry}, "", "missing", ErrNoPrice},
		{"nil registry", &Resolver{}, "", "by-body", ErrNoPrice},
		{"calculator failure", &Resolver{Registry: registry}, "", "failing", ErrCalculator},
		{"calculator returns empty", &Resolver{Registry: registry}, "", "empty", ErrNoPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.resolver.Resolve(r, tt.static, tt.calculatorRef)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistryReplace(t *testing.T) {
	registry := NewRegistry()
	registry.Register("calc", CalculatorFunc(func(r *http.Request) (string, error) { return "1", nil }))
	registry.Register("calc", CalculatorFunc(func(r *http.Request) (string, error) { return "2", nil }))

	got, err := registry.Get("calc").CalculatePrice(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("CalculatePrice() error = %v", err)
	}
	if got != "2" {
		t.Errorf("Register should replace: got %q, want \"2\"", got)
	}
}
