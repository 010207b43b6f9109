package sha3gpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"

	"github.com/Eikix/sha3-wgpu/internal/gpu"
)

// MaxInputBytes is the ceiling on a single input's length once padded by
// pad10*1 to a rate boundary, enforced both host-side (ErrTooLarge) and by
// the shader's own bounds check. The longest accepted input is therefore
// somewhat shorter than MaxInputBytes and depends on the variant's rate.
const MaxInputBytes = 2048

// MaxOutputBytes is the ceiling on the requested output length for the
// extendable-output SHAKE variants.
const MaxOutputBytes = 2048

// Context owns the GPU adapter and device used by every Hasher created
// from it, plus the compiled Keccak pipelines. Contexts are constructed
// once per process and reused; they are safe for concurrent use by
// multiple Hashers and multiple in-flight batches.
type Context struct {
	device *gpu.Device
}

// ContextOption configures NewContext.
type ContextOption func(*contextOptions)

type contextOptions struct {
	deviceOpts gpu.DeviceOptions
	provider   gpucontext.DeviceProvider
	logger     *slog.Logger
}

// WithPreferIntegratedGPU selects an integrated GPU over a discrete one
// when both are available. The default prefers discrete.
func WithPreferIntegratedGPU() ContextOption {
	return func(o *contextOptions) { o.deviceOpts.PreferDiscrete = false }
}

// WithAdapterIndex pins adapter selection to a specific index in
// enumeration order, bypassing the discrete/integrated preference. Used by
// tests that need a deterministic adapter.
func WithAdapterIndex(i int) ContextOption {
	return func(o *contextOptions) { o.deviceOpts.AdapterIndex = i }
}

// WithDeviceProvider shares the GPU device of an external
// gpucontext.DeviceProvider instead of opening a standalone device, so a
// host application that already owns a gogpu device can drive the hasher
// on it. The provider must also expose the raw hal handles via
// HalDevice() any and HalQueue() any. Closing the Context leaves the
// shared device alone — the provider owns it.
func WithDeviceProvider(p gpucontext.DeviceProvider) ContextOption {
	return func(o *contextOptions) { o.provider = p }
}

// WithLogger routes this package's and the underlying GPU plumbing's log
// output through l instead of discarding it. Equivalent to calling
// SetLogger before NewContext.
func WithLogger(l *slog.Logger) ContextOption {
	return func(o *contextOptions) { o.logger = l }
}

// NewContext opens a GPU adapter and device and compiles the Keccak
// compute pipelines — one per domain-separation byte, shared by every
// Hasher created from this Context.
//
// Fails with ErrNoAdapter if no suitable adapter is found, ErrDeviceLost
// if opening the device fails, or ErrShaderCompile if the Keccak shader
// fails to validate.
func NewContext(opts ...ContextOption) (*Context, error) {
	var o contextOptions
	o.deviceOpts = gpu.DefaultDeviceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		SetLogger(o.logger)
	}

	var (
		dev *gpu.Device
		err error
	)
	if o.provider != nil {
		dev, err = gpu.OpenFromProvider(o.provider)
	} else {
		dev, err = gpu.Open(o.deviceOpts)
	}
	if err != nil {
		if errors.Is(err, gpu.ErrNoAdapter) {
			return nil, fmt.Errorf("%w: %w", ErrNoAdapter, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrDeviceLost, err)
	}

	// Both pipelines are built up front so shader problems surface here
	// rather than on the first batch.
	for _, domainByte := range []byte{0x06, 0x1F} {
		if _, err := dev.Pipeline(domainByte); err != nil {
			dev.Close()
			if errors.Is(err, gpu.ErrShaderCompile) {
				return nil, fmt.Errorf("%w: %w", ErrShaderCompile, err)
			}
			return nil, fmt.Errorf("%w: %w", ErrDeviceLost, err)
		}
	}

	return &Context{device: dev}, nil
}

// Close releases the compiled Keccak pipelines and, unless the device was
// shared via WithDeviceProvider, the underlying device and instance. A
// Context must not be used after Close.
func (c *Context) Close() {
	if c == nil {
		return
	}
	c.device.Close()
}
