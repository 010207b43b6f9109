// compute.go drives the single-stage Keccak batch dispatch: one compiled
// pipeline per domain-separation byte, shared and reused across every batch
// that uses it, following the shader-compile/pipeline-create/dispatch/
// readback sequence used throughout gogpu's compute backends.

package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Keccak dispatch errors.
var (
	ErrShaderCompile = errors.New("gpu: shader failed to compile")
	ErrReadback      = errors.New("gpu: reading back output buffer failed")
)

const keccakFenceTimeout = 10 * time.Second

// BatchParams mirrors the BatchParams uniform struct in keccak.wgsl: four
// consecutive u32 fields uploaded as a single uniform buffer.
type BatchParams struct {
	NumHashes        uint32
	InputLengthBytes uint32
	RateBytes        uint32
	OutputBytes      uint32
}

func (p BatchParams) toBytes() []byte {
	buf := make([]byte, 16)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], p.NumHashes)
	le.PutUint32(buf[4:8], p.InputLengthBytes)
	le.PutUint32(buf[8:12], p.RateBytes)
	le.PutUint32(buf[12:16], p.OutputBytes)
	return buf
}

// KeccakPipeline is a compiled compute pipeline specialized for one
// domain-separation byte. It has no per-batch state and is safe to reuse
// (and share across concurrent dispatches) once built.
type KeccakPipeline struct {
	device hal.Device
	queue  hal.Queue

	domainByte byte
	module     hal.ShaderModule
	bgLayout   hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

func keccakBindGroupLayoutEntries() []gputypes.BindGroupLayoutEntry {
	return []gputypes.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		},
		{
			Binding:    1,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		},
		{
			Binding:    2,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
		},
	}
}

// newKeccakPipeline compiles keccak.wgsl specialized for domainByte and
// builds the bind group layout, pipeline layout, and compute pipeline.
func newKeccakPipeline(device hal.Device, queue hal.Queue, domainByte byte) (*KeccakPipeline, error) {
	src, err := renderKeccakSource(domainByte)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShaderCompile, err)
	}

	spirv, err := compileToSPIRV(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShaderCompile, err)
	}

	label := fmt.Sprintf("keccak_domain_0x%02x", domainByte)

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create shader module: %w", ErrShaderCompile, err)
	}

	bgLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label + "_bgl",
		Entries: keccakBindGroupLayoutEntries(),
	})
	if err != nil {
		device.DestroyShaderModule(module)
		return nil, fmt.Errorf("%w: create bind group layout: %w", ErrShaderCompile, err)
	}

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_pl",
		BindGroupLayouts: []hal.BindGroupLayout{bgLayout},
	})
	if err != nil {
		device.DestroyBindGroupLayout(bgLayout)
		device.DestroyShaderModule(module)
		return nil, fmt.Errorf("%w: create pipeline layout: %w", ErrShaderCompile, err)
	}

	pipeline, err := device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  label,
		Layout: pipeLayout,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		device.DestroyPipelineLayout(pipeLayout)
		device.DestroyBindGroupLayout(bgLayout)
		device.DestroyShaderModule(module)
		return nil, fmt.Errorf("%w: create compute pipeline: %w", ErrShaderCompile, err)
	}

	slogger().Debug("gpu: keccak pipeline compiled", "domain_byte", fmt.Sprintf("0x%02x", domainByte))

	return &KeccakPipeline{
		device:     device,
		queue:      queue,
		domainByte: domainByte,
		module:     module,
		bgLayout:   bgLayout,
		pipeLayout: pipeLayout,
		pipeline:   pipeline,
	}, nil
}

// Close releases the pipeline's GPU resources.
func (p *KeccakPipeline) Close() {
	if p == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyComputePipeline(p.pipeline)
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.bgLayout != nil {
		p.device.DestroyBindGroupLayout(p.bgLayout)
	}
	if p.module != nil {
		p.device.DestroyShaderModule(p.module)
	}
}

const keccakWorkgroupSize = 64

// workgroupCount returns ceil(numHashes / keccakWorkgroupSize), the
// dispatch grid width for a batch. Over-dispatched invocations in the
// last workgroup bounds-check against num_hashes and exit.
func workgroupCount(numHashes uint32) uint32 {
	return (numHashes + keccakWorkgroupSize - 1) / keccakWorkgroupSize
}

// Dispatch runs one batch through the pipeline: it allocates per-batch
// buffers, uploads the packed inputs and params, records and submits the
// compute pass, and reads the packed output buffer back to the host. Per
// the resource policy, only the pipeline/layouts/module are shared — every
// buffer here is created fresh and released before return.
func (p *KeccakPipeline) Dispatch(params BatchParams, packedInputs []byte, outputBufferBytes uint64) ([]byte, error) {
	inputBuf, err := createStorageBuffer(p.device, "keccak_inputs", uint64(len(packedInputs)), true)
	if err != nil {
		return nil, fmt.Errorf("gpu: create input buffer: %w", err)
	}
	defer p.device.DestroyBuffer(inputBuf)
	p.queue.WriteBuffer(inputBuf, 0, packedInputs)

	uniformBuf, err := createUniformBuffer(p.device, "keccak_params", 16)
	if err != nil {
		return nil, fmt.Errorf("gpu: create params buffer: %w", err)
	}
	defer p.device.DestroyBuffer(uniformBuf)
	p.queue.WriteBuffer(uniformBuf, 0, params.toBytes())

	outputBuf, err := createStorageBuffer(p.device, "keccak_outputs", outputBufferBytes, false)
	if err != nil {
		return nil, fmt.Errorf("gpu: create output buffer: %w", err)
	}
	defer p.device.DestroyBuffer(outputBuf)

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "keccak_bg",
		Layout: p.bgLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle()}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: inputBuf.NativeHandle()}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: outputBuf.NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create bind group: %w", err)
	}
	defer p.device.DestroyBindGroup(bindGroup)

	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "keccak_batch"})
	if err != nil {
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("keccak_batch"); err != nil {
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}

	workgroups := workgroupCount(params.NumHashes)
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "keccak"})
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Dispatch(workgroups, 1, 1)
	pass.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	fence, err := p.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("gpu: create fence: %w", err)
	}
	defer p.device.DestroyFence(fence)

	if err := p.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("%w: submit: %w", ErrDeviceLost, err)
	}
	ok, err := p.device.Wait(fence, 1, keccakFenceTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: wait for GPU: %w", ErrDeviceLost, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: timeout after %v waiting for batch", ErrDeviceLost, keccakFenceTimeout)
	}

	result, err := p.readback(outputBuf, outputBufferBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadback, err)
	}
	return result, nil
}

// readback copies a GPU-only buffer into a MapRead staging buffer and
// reads it back to host memory.
func (p *KeccakPipeline) readback(src hal.Buffer, size uint64) ([]byte, error) {
	staging, err := createReadbackBuffer(p.device, "keccak_readback_staging", size)
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer p.device.DestroyBuffer(staging)

	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "keccak_readback"})
	if err != nil {
		return nil, fmt.Errorf("create readback encoder: %w", err)
	}
	if err := encoder.BeginEncoding("keccak_readback"); err != nil {
		return nil, fmt.Errorf("begin readback encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(src, staging, []hal.BufferCopy{{SrcOffset: 0, DstOffset: 0, Size: size}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end readback encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	fence, err := p.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("create readback fence: %w", err)
	}
	defer p.device.DestroyFence(fence)

	if err := p.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("submit readback: %w", err)
	}
	ok, err := p.device.Wait(fence, 1, keccakFenceTimeout)
	if err != nil {
		return nil, fmt.Errorf("wait for readback: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("readback timeout after %v", keccakFenceTimeout)
	}

	out := make([]byte, size)
	if err := p.queue.ReadBuffer(staging, 0, out); err != nil {
		return nil, fmt.Errorf("read staging buffer: %w", err)
	}
	return out, nil
}
