package sha3gpu

import (
	"errors"
	"strings"
	"testing"
)

func TestLengthMismatchError(t *testing.T) {
	err := &LengthMismatchError{Index: 3, Got: 7, Expected: 16}

	msg := err.Error()
	for _, want := range []string{"3", "7", "16"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}

	// errors.Is matches any LengthMismatchError regardless of index.
	if !errors.Is(err, &LengthMismatchError{}) {
		t.Error("errors.Is should match another LengthMismatchError")
	}
	if errors.Is(err, ErrEmptyBatch) {
		t.Error("errors.Is should not match an unrelated sentinel")
	}

	var lm *LengthMismatchError
	if !errors.As(err, &lm) || lm.Index != 3 {
		t.Errorf("errors.As: got %+v, want Index 3", lm)
	}
}
