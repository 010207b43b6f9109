package sha3gpu

import (
	"errors"
	"testing"
)

func TestParseVariant(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Variant
		wantErr bool
	}{
		{name: "sha3-224", input: "sha3-224", want: SHA3_224},
		{name: "sha3-256", input: "sha3-256", want: SHA3_256},
		{name: "sha3-384", input: "sha3-384", want: SHA3_384},
		{name: "sha3-512", input: "sha3-512", want: SHA3_512},
		{name: "shake128", input: "shake128", want: SHAKE128},
		{name: "shake256", input: "shake256", want: SHAKE256},
		{name: "unknown", input: "sha3-1024", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVariant(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseVariant(%q) = %v, want error", tt.input, got)
				}
				if !errors.Is(err, ErrBadVariant) {
					t.Fatalf("ParseVariant(%q) error = %v, want ErrBadVariant", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVariant(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("ParseVariant(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestVariantRateCapacitySum(t *testing.T) {
	for _, v := range []Variant{SHA3_224, SHA3_256, SHA3_384, SHA3_512, SHAKE128, SHAKE256} {
		t.Run(v.ID(), func(t *testing.T) {
			if got := v.RateBytes() + v.CapacityBytes(); got != 200 {
				t.Fatalf("rate+capacity = %d, want 200", got)
			}
		})
	}
}

func TestFixedVariantsNotExtendable(t *testing.T) {
	for _, v := range []Variant{SHA3_224, SHA3_256, SHA3_384, SHA3_512} {
		if v.IsExtendable() {
			t.Fatalf("%s: IsExtendable() = true, want false", v.ID())
		}
	}
	for _, v := range []Variant{SHAKE128, SHAKE256} {
		if !v.IsExtendable() {
			t.Fatalf("%s: IsExtendable() = false, want true", v.ID())
		}
	}
}
