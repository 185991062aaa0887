package deploy

import (
	"errors"
	"testing"
)

func TestNewCPUQuantity(t *testing.T) {
	tests := []struct {
		value     string
		wantMilli int64
		wantErr   bool
	}{
		{"1", 1000, false},
		{"0.5", 500, false},
		{"0.125", 125, false},
		{"500m", 500, false},
		{"1m", 1, false},
		{"0.001", 1, false},
		{"2000m", 2000, false},
		{"0.0001", 0, true}, // four fraction digits, sub-milli
		{"0", 0, true},
		{"0m", 0, true},
		{"0.000", 0, true},
		{"-1", 0, true},
		{"1.5.5", 0, true},
		{"1m500", 0, true},
		{"", 0, true},
		{"  ", 0, true},
		{"1M", 0, true},
		{"m", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			q, err := NewCPUQuantity(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCPUQuantity(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidQuantity) {
					t.Errorf("error should wrap ErrInvalidQuantity, got %v", err)
				}
				return
			}
			if q.MilliCores() != tt.wantMilli {
				t.Errorf("MilliCores() = %d, want %d", q.MilliCores(), tt.wantMilli)
			}
			if q.String() != tt.value {
				t.Errorf("String() = %q, want the raw input %q", q.String(), tt.value)
			}
		})
	}
}

// Equality is by the raw string: "500m" and "0.5" both mean 500 milli-cores
// but are distinct values.
func TestCPUQuantityEqualityIsByRawString(t *testing.T) {
	milli, err := NewCPUQuantity("500m")
	if err != nil {
		t.Fatal(err)
	}
	decimal, err := NewCPUQuantity("0.5")
	if err != nil {
		t.Fatal(err)
	}

	if milli.MilliCores() != decimal.MilliCores() {
		t.Fatalf("magnitudes differ: %d vs %d", milli.MilliCores(), decimal.MilliCores())
	}
	if milli == decimal {
		t.Error(`CPUQuantity("500m") must not equal CPUQuantity("0.5")`)
	}

	same, err := NewCPUQuantity("500m")
	if err != nil {
		t.Fatal(err)
	}
	if milli != same {
		t.Error("identical inputs must be equal")
	}
}

func TestCPUQuantityPatch(t *testing.T) {
	base, err := NewCPUQuantity("0.5")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("empty keeps receiver", func(t *testing.T) {
		got, err := base.Patch("")
		if err != nil {
			t.Fatal(err)
		}
		if got != base {
			t.Errorf("Patch(\"\") = %v, want receiver", got)
		}
	})

	t.Run("equal keeps receiver", func(t *testing.T) {
		got, err := base.Patch("0.5")
		if err != nil {
			t.Fatal(err)
		}
		if got != base {
			t.Errorf("Patch(\"0.5\") = %v, want receiver", got)
		}
	})

	t.Run("different value replaces", func(t *testing.T) {
		got, err := base.Patch("500m")
		if err != nil {
			t.Fatal(err)
		}
		want, _ := NewCPUQuantity("500m")
		if got != want {
			t.Errorf("Patch(\"500m\") = %v, want %v", got, want)
		}
	})

	t.Run("invalid value fails", func(t *testing.T) {
		if _, err := base.Patch("nope"); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("Patch(\"nope\") error = %v", err)
		}
	})
}

func TestNewMemoryQuantity(t *testing.T) {
	tests := []struct {
		value     string
		wantBytes int64
		wantErr   bool
	}{
		{"128974848", 128974848, false},
		{"1K", 1000, false},
		{"129M", 129_000_000, false},
		{"1G", 1_000_000_000, false},
		{"1Ki", 1 << 10, false},
		{"123Mi", 123 << 20, false},
		{"1Gi", 1 << 30, false},
		{"7Ei", 7 << 60, false},
		{"", 0, true},
		{"1gb", 0, true},
		{"1.5Gi", 0, true}, // no decimals allowed
		{"0", 0, true},
		{"0Gi", 0, true},
		{"-1Gi", 0, true},
		{"Gi", 0, true},
		{"1ki", 0, true}, // unit is case-sensitive
		{"9223372036854775808", 0, true}, // 2^63, one past MaxInt64
		{"10E", 0, true}, // 10^19 bytes overflows int64
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			q, err := NewMemoryQuantity(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewMemoryQuantity(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidQuantity) {
					t.Errorf("error should wrap ErrInvalidQuantity, got %v", err)
				}
				return
			}
			if q.Bytes() != tt.wantBytes {
				t.Errorf("Bytes() = %d, want %d", q.Bytes(), tt.wantBytes)
			}
		})
	}
}

func TestMemoryQuantityMaxInt64Boundary(t *testing.T) {
	q, err := NewMemoryQuantity("9223372036854775807")
	if err != nil {
		t.Fatalf("MaxInt64 bytes should parse: %v", err)
	}
	if q.Bytes() != 1<<63-1 {
		t.Errorf("Bytes() = %d", q.Bytes())
	}
}

func TestMemoryQuantityEqualityAndPatch(t *testing.T) {
	decimal, err := NewMemoryQuantity("1000")
	if err != nil {
		t.Fatal(err)
	}
	unit, err := NewMemoryQuantity("1K")
	if err != nil {
		t.Fatal(err)
	}
	if decimal.Bytes() != unit.Bytes() {
		t.Fatal("magnitudes should match")
	}
	if decimal == unit {
		t.Error(`MemoryQuantity("1000") must not equal MemoryQuantity("1K")`)
	}

	patched := decimal.PatchQuantity(unit)
	if patched != unit {
		t.Errorf("PatchQuantity = %v, want %v", patched, unit)
	}
	if decimal.PatchQuantity(MemoryQuantity{}) != decimal {
		t.Error("patching with the zero value must keep the receiver")
	}
}
