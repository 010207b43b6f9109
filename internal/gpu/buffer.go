package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Buffer allocation errors.
var (
	ErrNilDevice         = errors.New("gpu: device is nil")
	ErrInvalidBufferSize = errors.New("gpu: invalid buffer size")
)

// copyBufferAlignment is the 4-byte alignment required for buffer copy
// operations; every allocation is rounded up to it.
const copyBufferAlignment uint64 = 4

// alignUp rounds size up to the next multiple of align. align must be a
// power of two.
func alignUp(size, align uint64) uint64 {
	return (size + align - 1) &^ (align - 1)
}

// createBuffer allocates a device buffer of at least size bytes, rounded
// up to the copy alignment so CopyBufferToBuffer never sees a ragged tail.
func createBuffer(device hal.Device, label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: size is 0", ErrInvalidBufferSize)
	}
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  alignUp(size, copyBufferAlignment),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create buffer %q: %w", label, err)
	}
	return buf, nil
}

// createStorageBuffer allocates a storage buffer the shader reads from or
// writes to. readOnly selects the usage pair for the packed input buffer
// (uploaded once per batch) versus the output buffer (copied out after
// the dispatch).
func createStorageBuffer(device hal.Device, label string, size uint64, readOnly bool) (hal.Buffer, error) {
	usage := gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc
	if readOnly {
		usage = gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	}
	return createBuffer(device, label, size, usage)
}

// createUniformBuffer allocates the small per-dispatch parameter buffer.
func createUniformBuffer(device hal.Device, label string, size uint64) (hal.Buffer, error) {
	return createBuffer(device, label, size, gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
}

// stagingBufferSize rounds a readback allocation up to a whole number of
// host pages so the host-visible mapping never straddles a page boundary.
func stagingBufferSize(size uint64) uint64 {
	return alignUp(size, hostPageSize())
}

// createReadbackBuffer allocates a host-visible staging buffer sized for
// readback of size bytes. The returned buffer is page-rounded; callers
// read only the first size bytes.
func createReadbackBuffer(device hal.Device, label string, size uint64) (hal.Buffer, error) {
	return createBuffer(device, label, stagingBufferSize(size),
		gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst)
}
