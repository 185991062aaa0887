package deploy

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidQuantity indicates a CPU or memory string that does not match the
// accepted grammars.
var ErrInvalidQuantity = errors.New("invalid quantity")

var (
	cpuDecimalRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,3})?$`)
	cpuMilliRegex   = regexp.MustCompile(`^[0-9]+m$`)
)

// CPUQuantity is an immutable CPU resource quantity. Accepted forms are
// decimal cores with at most three fraction digits ("1", "0.5", "0.125") and
// the milli suffix ("500m"). The quantity must be strictly positive.
//
// Equality is by the raw input string, so CPUQuantity("500m") and
// CPUQuantity("0.5") are distinct values even though both equal 500
// milli-cores.
type CPUQuantity struct {
	raw   string
	milli int64
}

// NewCPUQuantity parses a CPU quantity string.
func NewCPUQuantity(value string) (CPUQuantity, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return CPUQuantity{}, fmt.Errorf("%w: cpu quantity cannot be empty", ErrInvalidQuantity)
	}

	milli, ok := parseMilliCores(v)
	if !ok {
		return CPUQuantity{}, fmt.Errorf("%w: %q is not a cpu quantity (examples: 500m, 1, 0.5, 0.125)", ErrInvalidQuantity, v)
	}
	if milli <= 0 {
		return CPUQuantity{}, fmt.Errorf("%w: cpu quantity must be > 0", ErrInvalidQuantity)
	}
	return CPUQuantity{raw: v, milli: milli}, nil
}

func parseMilliCores(v string) (int64, bool) {
	if strings.HasSuffix(v, "m") {
		if !cpuMilliRegex.MatchString(v) {
			return 0, false
		}
		milli, err := strconv.ParseInt(strings.TrimSuffix(v, "m"), 10, 64)
		if err != nil {
			return 0, false
		}
		return milli, true
	}

	if !cpuDecimalRegex.MatchString(v) {
		return 0, false
	}
	intPart, fracPart, _ := strings.Cut(v, ".")
	// Scale to milli-cores: pad the fraction to exactly three digits.
	fracPart += strings.Repeat("0", 3-len(fracPart))
	milli, err := strconv.ParseInt(intPart+fracPart, 10, 64)
	if err != nil {
		return 0, false
	}
	return milli, true
}

// String returns the raw input string.
func (q CPUQuantity) String() string { return q.raw }

// MilliCores returns the quantity in milli-cores.
func (q CPUQuantity) MilliCores() int64 { return q.milli }

// IsZero reports whether q is the zero value (no quantity set).
func (q CPUQuantity) IsZero() bool { return q.raw == "" }

// Patch returns the receiver when value is empty or equal to the current raw
// string, otherwise the parsed replacement.
func (q CPUQuantity) Patch(value string) (CPUQuantity, error) {
	if value == "" || value == q.raw {
		return q, nil
	}
	return NewCPUQuantity(value)
}

// PatchQuantity is Patch for an already-parsed value.
func (q CPUQuantity) PatchQuantity(other CPUQuantity) CPUQuantity {
	if other.IsZero() || other == q {
		return q
	}
	return other
}

// memoryUnits maps the case-sensitive unit suffix to its byte factor.
// Decimal units are powers of 1000, binary units powers of 1024.
var memoryUnits = map[string]*big.Int{
	"":   big.NewInt(1),
	"K":  big.NewInt(1e3),
	"M":  big.NewInt(1e6),
	"G":  big.NewInt(1e9),
	"T":  big.NewInt(1e12),
	"P":  big.NewInt(1e15),
	"E":  big.NewInt(1e18),
	"Ki": big.NewInt(1 << 10),
	"Mi": big.NewInt(1 << 20),
	"Gi": big.NewInt(1 << 30),
	"Ti": big.NewInt(1 << 40),
	"Pi": big.NewInt(1 << 50),
	"Ei": big.NewInt(1 << 60),
}

// MemoryQuantity is an immutable memory resource quantity: an integer
// mantissa with an optional case-sensitive unit suffix ("128974848", "129M",
// "123Mi", "1G", "1Gi"). The byte count must be strictly positive and fit in
// a signed 64-bit integer.
//
// Equality is by the raw input string, matching CPUQuantity.
type MemoryQuantity struct {
	raw   string
	bytes int64
}

// NewMemoryQuantity parses a memory quantity string.
func NewMemoryQuantity(value string) (MemoryQuantity, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return MemoryQuantity{}, fmt.Errorf("%w: memory quantity cannot be empty", ErrInvalidQuantity)
	}

	bytes, ok := parseBytes(v)
	if !ok {
		return MemoryQuantity{}, fmt.Errorf("%w: %q is not a memory quantity (examples: 128974848, 129M, 123Mi, 1G, 1Gi)", ErrInvalidQuantity, v)
	}
	if bytes.Sign() <= 0 {
		return MemoryQuantity{}, fmt.Errorf("%w: memory quantity must be > 0", ErrInvalidQuantity)
	}
	if bytes.Cmp(big.NewInt(math.MaxInt64)) > 0 {
		return MemoryQuantity{}, fmt.Errorf("%w: memory quantity is too large", ErrInvalidQuantity)
	}
	return MemoryQuantity{raw: v, bytes: bytes.Int64()}, nil
}

func parseBytes(v string) (*big.Int, bool) {
	i := 0
	for i < len(v) && v[i] >= '0' && v[i] <= '9' {
		i++
	}
	numPart, unitPart := v[:i], v[i:]
	if numPart == "" {
		return nil, false
	}
	factor, ok := memoryUnits[unitPart]
	if !ok {
		return nil, false
	}
	num, ok := new(big.Int).SetString(numPart, 10)
	if !ok {
		return nil, false
	}
	return num.Mul(num, factor), true
}

// String returns the raw input string.
func (q MemoryQuantity) String() string { return q.raw }

// Bytes returns the quantity in bytes.
func (q MemoryQuantity) Bytes() int64 { return q.bytes }

// IsZero reports whether q is the zero value (no quantity set).
func (q MemoryQuantity) IsZero() bool { return q.raw == "" }

// Patch returns the receiver when value is empty or equal to the current raw
// string, otherwise the parsed replacement.
func (q MemoryQuantity) Patch(value string) (MemoryQuantity, error) {
	if value == "" || value == q.raw {
		return q, nil
	}
	return NewMemoryQuantity(value)
}

// PatchQuantity is Patch for an already-parsed value.
func (q MemoryQuantity) PatchQuantity(other MemoryQuantity) MemoryQuantity {
	if other.IsZero() || other == q {
		return q
	}
	return other
}
