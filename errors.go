package sha3gpu

import (
	"errors"
	"fmt"
)

// Precondition errors, checked synchronously before any GPU work is
// submitted. None of these ever leave a batch partially computed.
var (
	ErrBadVariant      = errors.New("sha3gpu: unknown variant")
	ErrEmptyBatch      = errors.New("sha3gpu: batch contains no inputs")
	ErrTooLarge        = errors.New("sha3gpu: input exceeds the maximum supported length")
	ErrBadOutputLength = errors.New("sha3gpu: requested output length is invalid for this variant")
)

// Device errors, surfaced by NewContext while the adapter, device and
// pipelines are set up, or by a batch call once its GPU work is under way.
// A device error never leaves partial results behind and is never
// automatically retried.
var (
	ErrNoAdapter     = errors.New("sha3gpu: no suitable GPU adapter was found")
	ErrDeviceLost    = errors.New("sha3gpu: GPU device was lost during execution")
	ErrShaderCompile = errors.New("sha3gpu: Keccak compute shader failed to compile")
	ErrReadback      = errors.New("sha3gpu: failed to read back results from the GPU")
)

// LengthMismatchError reports that an input in a batch did not match the
// length of the batch's first input. Every HashBatch call requires all
// inputs to share one length, since the compute shader dispatches one
// fixed-size input region per invocation.
type LengthMismatchError struct {
	Index    int
	Got      int
	Expected int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("sha3gpu: input %d has length %d, batch expects %d", e.Index, e.Got, e.Expected)
}

// Is reports whether target is a LengthMismatchError, so callers can use
// errors.Is without caring about the specific index.
func (e *LengthMismatchError) Is(target error) bool {
	_, ok := target.(*LengthMismatchError)
	return ok
}
