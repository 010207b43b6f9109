package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	_ "github.com/gogpu/wgpu/hal/vulkan" // registers the Vulkan hal backend
)

// Device errors surfaced during adapter/device acquisition.
var (
	ErrNoAdapter  = errors.New("gpu: no suitable adapter was found")
	ErrDeviceLost = errors.New("gpu: device was lost")
)

// DeviceOptions controls adapter selection for Open.
type DeviceOptions struct {
	// PreferDiscrete requests a discrete GPU over an integrated one when
	// both are enumerated. Defaults to true.
	PreferDiscrete bool

	// AdapterIndex, when >= 0, pins adapter selection to a specific index
	// in the enumeration order instead of the preference heuristic. Used
	// by tests that need deterministic adapter selection.
	AdapterIndex int
}

// DefaultDeviceOptions returns the options used when none are supplied.
func DefaultDeviceOptions() DeviceOptions {
	return DeviceOptions{PreferDiscrete: true, AdapterIndex: -1}
}

// Device bundles the hal handles needed to drive the Keccak pipeline.
// A Device either owns a standalone Vulkan instance/device pair, or
// borrows the device of an external gpucontext provider, in which case
// Close leaves the shared handles alone.
type Device struct {
	Instance hal.Instance
	Device   hal.Device
	Queue    hal.Queue

	externalDevice bool

	pipelinesMu sync.Mutex
	pipelines   map[byte]*KeccakPipeline
}

// Open enumerates adapters on the Vulkan hal backend, selects one per
// opts, and opens a device and queue with no optional features and
// default limits — the compute shader needs nothing beyond the baseline.
func Open(opts DeviceOptions) (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoAdapter)
	}

	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", ErrNoAdapter, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no adapters enumerated", ErrNoAdapter)
	}

	selected := selectAdapter(adapters, opts)
	if selected == nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: adapter selection failed", ErrNoAdapter)
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %w", ErrDeviceLost, err)
	}

	slogger().Debug("gpu: device opened", "backend", "vulkan", "adapter", selected.Info.Name)

	return &Device{
		Instance:  instance,
		Device:    openDev.Device,
		Queue:     openDev.Queue,
		pipelines: make(map[byte]*KeccakPipeline),
	}, nil
}

// OpenFromProvider borrows the hal device and queue of an external
// gpucontext.DeviceProvider instead of opening a standalone Vulkan
// device, so a host application that already owns a GPU device can share
// it with the hasher. The provider must additionally expose the raw hal
// handles via HalDevice() any and HalQueue() any.
func OpenFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: provider does not expose HAL types", ErrNoAdapter)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: provider HalDevice is not hal.Device", ErrNoAdapter)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: provider HalQueue is not hal.Queue", ErrNoAdapter)
	}

	slogger().Debug("gpu: device adopted from external provider")

	return &Device{
		Device:         device,
		Queue:          queue,
		externalDevice: true,
		pipelines:      make(map[byte]*KeccakPipeline),
	}, nil
}

// Pipeline returns the compiled Keccak pipeline specialized for domainByte,
// compiling and caching it on first use. The pipeline object, its bind
// group layout, and its shader module are shared and immutable once built:
// every Hasher bound to a variant with this domain byte reuses it.
func (d *Device) Pipeline(domainByte byte) (*KeccakPipeline, error) {
	d.pipelinesMu.Lock()
	defer d.pipelinesMu.Unlock()

	if p, ok := d.pipelines[domainByte]; ok {
		return p, nil
	}
	p, err := newKeccakPipeline(d.Device, d.Queue, domainByte)
	if err != nil {
		return nil, err
	}
	d.pipelines[domainByte] = p
	return p, nil
}

// selectAdapter applies the adapter-preference policy in DeviceOptions
// over the enumerated list.
func selectAdapter(adapters []hal.ExposedAdapter, opts DeviceOptions) *hal.ExposedAdapter {
	if opts.AdapterIndex >= 0 && opts.AdapterIndex < len(adapters) {
		return &adapters[opts.AdapterIndex]
	}
	if !opts.PreferDiscrete {
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
				return &adapters[i]
			}
		}
		return &adapters[0]
	}
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			return &adapters[i]
		}
	}
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// Close releases the compiled pipelines and, when the device was opened
// standalone, destroys the device and instance. A device borrowed from an
// external provider is left alone — the provider owns it.
func (d *Device) Close() {
	if d == nil {
		return
	}
	d.pipelinesMu.Lock()
	for _, p := range d.pipelines {
		p.Close()
	}
	d.pipelines = nil
	d.pipelinesMu.Unlock()

	if !d.externalDevice {
		if d.Device != nil {
			d.Device.Destroy()
		}
		if d.Instance != nil {
			d.Instance.Destroy()
		}
	}
	d.Device = nil
	d.Instance = nil
	d.Queue = nil
	slogger().Debug("gpu: device closed")
}
