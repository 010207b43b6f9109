package sha3gpu

import (
	"errors"
	"fmt"

	"github.com/Eikix/sha3-wgpu/internal/gpu"
)

// Hasher computes SHA-3-family digests over batches of equal-length inputs
// on the GPU. A Hasher is bound to a single (Context, Variant) pair;
// distinct Hashers on one Context may run batches concurrently, while
// batches from one Hasher are serialized by the caller — HashBatch does not
// implicitly queue.
type Hasher struct {
	ctx     *Context
	variant Variant
}

// NewHasher binds a Hasher to ctx and variant. Fails with ErrBadVariant if
// variant is the zero Variant.
func NewHasher(ctx *Context, variant Variant) (*Hasher, error) {
	if variant.id == "" {
		return nil, fmt.Errorf("%w: zero Variant", ErrBadVariant)
	}
	return &Hasher{ctx: ctx, variant: variant}, nil
}

// Variant returns the variant this Hasher computes.
func (h *Hasher) Variant() Variant { return h.variant }

// OutputBytes returns the digest length produced for a fixed variant. For
// an extendable-output variant it returns the conventional default; use
// HashBatchWithParams to request a different length.
func (h *Hasher) OutputBytes() int { return h.variant.defaultOutputBytes }

// HashSingle hashes one input and returns its digest at the variant's
// default output length.
func (h *Hasher) HashSingle(input []byte) ([]byte, error) {
	out, err := h.HashBatch([][]byte{input})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// HashBatch hashes every input in inputs, each producing a digest of the
// variant's default output length. All inputs must share the same length;
// see HashBatchWithParams to request a non-default output length.
func (h *Hasher) HashBatch(inputs [][]byte) ([][]byte, error) {
	return h.HashBatchWithParams(inputs, h.variant.defaultOutputBytes)
}

// HashBatchWithParams hashes every input in inputs to outLen bytes.
//
// Preconditions, checked synchronously before any GPU work is submitted:
//   - inputs is non-empty (ErrEmptyBatch).
//   - every input shares the length of inputs[0] (LengthMismatchError).
//   - the shared input length, once padded to a rate boundary, does not
//     exceed MaxInputBytes (ErrTooLarge).
//   - outLen is at least 1, for a fixed variant equals its
//     DefaultOutputBytes, and for a SHAKE variant does not exceed
//     MaxOutputBytes (ErrBadOutputLength).
func (h *Hasher) HashBatchWithParams(inputs [][]byte, outLen int) ([][]byte, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyBatch
	}
	if outLen < 1 {
		return nil, fmt.Errorf("%w: output length must be at least 1", ErrBadOutputLength)
	}
	if !h.variant.extendable && outLen != h.variant.defaultOutputBytes {
		return nil, fmt.Errorf("%w: %s requires output length %d, got %d",
			ErrBadOutputLength, h.variant.id, h.variant.defaultOutputBytes, outLen)
	}
	if h.variant.extendable && outLen > MaxOutputBytes {
		return nil, fmt.Errorf("%w: output length %d exceeds %d", ErrBadOutputLength, outLen, MaxOutputBytes)
	}

	inputLen := len(inputs[0])
	for i, in := range inputs {
		if len(in) != inputLen {
			return nil, &LengthMismatchError{Index: i, Got: len(in), Expected: inputLen}
		}
	}

	paddedLen := padded10x1Length(inputLen, h.variant.rateBytes)
	if paddedLen > MaxInputBytes {
		return nil, fmt.Errorf("%w: padded input length %d exceeds %d", ErrTooLarge, paddedLen, MaxInputBytes)
	}

	pipeline, err := h.ctx.device.Pipeline(h.variant.domainByte)
	if err != nil {
		if errors.Is(err, gpu.ErrShaderCompile) {
			return nil, fmt.Errorf("%w: %w", ErrShaderCompile, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrDeviceLost, err)
	}

	numHashes := uint32(len(inputs))
	inputWordsPerHash := (inputLen + 3) / 4
	packedInputs := make([]byte, roundUp16(int(numHashes)*inputWordsPerHash*4))
	for i, in := range inputs {
		copy(packedInputs[i*inputWordsPerHash*4:], in)
	}

	outWordsPerHash := (outLen + 3) / 4
	outputBufferBytes := uint64(roundUp16(int(numHashes) * outWordsPerHash * 4))

	params := gpu.BatchParams{
		NumHashes:        numHashes,
		InputLengthBytes: uint32(inputLen),
		RateBytes:        uint32(h.variant.rateBytes),
		OutputBytes:      uint32(outLen),
	}

	raw, err := pipeline.Dispatch(params, packedInputs, outputBufferBytes)
	if err != nil {
		if errors.Is(err, gpu.ErrReadback) {
			return nil, fmt.Errorf("%w: %w", ErrReadback, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrDeviceLost, err)
	}

	digests := make([][]byte, numHashes)
	for i := range digests {
		start := i * outWordsPerHash * 4
		digests[i] = raw[start : start+outLen]
	}
	return digests, nil
}

// padded10x1Length returns the smallest multiple of rateBytes strictly
// greater than inputLen, matching the shader's pad10*1 rule.
func padded10x1Length(inputLen, rateBytes int) int {
	return (inputLen/rateBytes + 1) * rateBytes
}

// roundUp16 rounds n up to the next 16-byte boundary, with a 16-byte
// floor so a batch of empty inputs still gets a bindable buffer.
func roundUp16(n int) int {
	if n == 0 {
		return 16
	}
	return (n + 15) &^ 15
}
