package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Pipeline errors.
var (
	// ErrNilDevice is returned when constructing a Pipeline without a device.
	ErrNilDevice = errors.New("gpu: nil HAL device")

	// ErrFrameSize is returned when frame bytes do not match the YUV420
	// planar size for the upload dimensions. This is a caller bug, not a
	// runtime condition to branch on.
	ErrFrameSize = errors.New("gpu: frame length does not match dimensions")

	// ErrDimensionMismatch is returned when an upload supplies dimensions
	// different from those the id's entry was created with. Textures are
	// never resized; a resolution change requires a new video id.
	ErrDimensionMismatch = errors.New("gpu: upload dimensions changed for cached id")
)

// rectUniformSize is the byte size of the per-video rectangle uniform.
// Layout: destination rect (vec4<f32>) = 16 bytes.
const rectUniformSize = 16

// viewportUniformSize is the byte size of the shared viewport uniform.
// Layout: target size (vec2<f32>) + padding (vec2<f32>) = 16 bytes.
const viewportUniformSize = 16

// AliveFlag is the read side of a producer's liveness signal. The sweep
// uses it as the sole eligibility test for destroying an entry. The root
// package's Liveness satisfies it.
type AliveFlag interface {
	Alive() bool
}

// Pipeline is the shared GPU state for every concurrently playing video:
// one render pipeline, one bind group layout, one sampler, and the cache of
// per-video resource bundles. It is owned by the consumer (render) schedule
// and is not safe for concurrent use.
//
// The pipeline matches one color target format and multisample count,
// fixed at construction; these must equal the render pass configuration
// Draw is called inside.
type Pipeline struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler

	// viewport is the shared target-size uniform referenced by every
	// entry's bind group; rewritten at the start of each prepare pass.
	viewport hal.Buffer

	entries map[uint64]*videoEntry
}

// New creates the shared video plane pipeline for the given color target
// format and multisample count. Allocation or shader compilation failure is
// fatal (device loss); there is no degraded mode.
func New(device hal.Device, queue hal.Queue, format gputypes.TextureFormat, sampleCount uint32) (*Pipeline, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if sampleCount == 0 {
		sampleCount = 1
	}

	p := &Pipeline{
		device:  device,
		queue:   queue,
		entries: make(map[uint64]*videoEntry),
	}
	if err := p.createPipeline(format, sampleCount); err != nil {
		p.Destroy()
		return nil, err
	}

	slogger().Info("video plane pipeline created",
		"format", format, "samples", sampleCount)
	return p, nil
}

// createPipeline compiles the YUV shader and creates the bind group layout,
// pipeline layout, sampler, render pipeline, and the shared viewport
// uniform buffer.
//
// Bind group layout:
//   - Binding 0: luma texture (texture_2d, fragment)
//   - Binding 1: chroma texture (texture_2d, fragment)
//   - Binding 2: sampler (fragment)
//   - Binding 3: destination rect uniform (vertex)
//   - Binding 4: shared viewport uniform (vertex)
func (p *Pipeline) createPipeline(format gputypes.TextureFormat, sampleCount uint32) error {
	shader, err := createShaderModule(p.device, "video_plane_shader", yuvShaderSource)
	if err != nil {
		return fmt.Errorf("compile video plane shader: %w", err)
	}
	p.shader = shader

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "video_plane_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
			{
				Binding:    3,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    4,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "video_plane_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	// Linear filtering: chroma is sampled at half resolution and relies on
	// the sampler for upscaling.
	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "video_plane_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	p.sampler = sampler

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "video_plane_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	p.pipeline = pipeline

	viewport, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "video_plane_viewport",
		Size:  viewportUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create viewport uniform: %w", err)
	}
	p.viewport = viewport

	return nil
}

// SetViewport writes the render target size into the shared viewport
// uniform. Called once per pass before any Prepare.
func (p *Pipeline) SetViewport(width, height uint32) {
	p.queue.WriteBuffer(p.viewport, 0, makeViewportUniform(width, height))
}

// Prepare writes the destination rectangle for id (silent no-op when the
// id has no entry yet), then sweeps dead entries. Runs once per render pass
// per active video, before Draw — rect and liveness change independently of
// frame content, so Prepare does not depend on whether Upload ran.
func (p *Pipeline) Prepare(id uint64, rect [4]float32) {
	p.WriteRect(id, rect)
	p.Sweep()
}

// Destroy releases every cache entry and all shared pipeline resources, in
// reverse creation order. Safe to call on a partially constructed Pipeline.
func (p *Pipeline) Destroy() {
	if p.device == nil {
		return
	}
	p.DestroyAll()
	if p.viewport != nil {
		p.device.DestroyBuffer(p.viewport)
		p.viewport = nil
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// makeRectUniform creates the 16-byte rect uniform payload.
// Layout: x0, y0, x1, y1 as little-endian float32.
func makeRectUniform(rect [4]float32) []byte {
	buf := make([]byte, rectUniformSize)
	for i, v := range rect {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	return buf
}

// makeViewportUniform creates the 16-byte viewport uniform payload.
// Layout: width, height as little-endian float32; bytes 8..15 zero.
func makeViewportUniform(w, h uint32) []byte {
	buf := make([]byte, viewportUniformSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(float32(w)))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(float32(h)))
	return buf
}
