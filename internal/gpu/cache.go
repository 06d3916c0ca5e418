package gpu

import (
	"fmt"
	"sort"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// videoEntry is the per-video GPU resource bundle: a full-resolution
// single-channel luma texture, a half-resolution two-channel chroma
// texture, the 16-byte destination rect uniform, and the bind group tying
// them to the shared sampler and viewport. The liveness flag is borrowed
// from the producing video; the sweep reads it and nothing else.
//
// Entry topology is immutable after creation: textures are never resized.
type videoEntry struct {
	lumaTex    hal.Texture
	lumaView   hal.TextureView
	chromaTex  hal.Texture
	chromaView hal.TextureView
	uniforms   hal.Buffer
	bindGroup  hal.BindGroup
	alive      AliveFlag

	width  uint32
	height uint32
}

// ensure returns the entry for id, creating the full resource bundle on
// first sight. Subsequent calls must supply the dimensions the entry was
// created with; ErrDimensionMismatch otherwise.
func (p *Pipeline) ensure(id uint64, alive AliveFlag, width, height uint32) (*videoEntry, error) {
	if e, ok := p.entries[id]; ok {
		if e.width != width || e.height != height {
			return nil, fmt.Errorf("%w: id %d is %dx%d, upload is %dx%d",
				ErrDimensionMismatch, id, e.width, e.height, width, height)
		}
		return e, nil
	}

	e := &videoEntry{alive: alive, width: width, height: height}
	if err := p.createEntryResources(e, id); err != nil {
		p.destroyEntry(e)
		return nil, err
	}
	p.entries[id] = e

	slogger().Debug("video plane entry created", "id", id, "width", width, "height", height)
	return e, nil
}

// createEntryResources allocates the entry's textures, views, uniform
// buffer, and bind group. Any failure is device loss; the caller releases
// whatever was created.
func (p *Pipeline) createEntryResources(e *videoEntry, id uint64) error {
	lumaTex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("video_%d_luma", id),
		Size:          hal.Extent3D{Width: e.width, Height: e.height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatR8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create luma texture: %w", err)
	}
	e.lumaTex = lumaTex

	lumaView, err := p.device.CreateTextureView(lumaTex, &hal.TextureViewDescriptor{
		Label:         fmt.Sprintf("video_%d_luma_view", id),
		Format:        gputypes.TextureFormatR8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create luma view: %w", err)
	}
	e.lumaView = lumaView

	chromaTex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("video_%d_chroma", id),
		Size:          hal.Extent3D{Width: e.width / 2, Height: e.height / 2, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRG8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create chroma texture: %w", err)
	}
	e.chromaTex = chromaTex

	chromaView, err := p.device.CreateTextureView(chromaTex, &hal.TextureViewDescriptor{
		Label:         fmt.Sprintf("video_%d_chroma_view", id),
		Format:        gputypes.TextureFormatRG8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create chroma view: %w", err)
	}
	e.chromaView = chromaView

	uniforms, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("video_%d_rect", id),
		Size:  rectUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create rect uniform: %w", err)
	}
	e.uniforms = uniforms

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  fmt.Sprintf("video_%d_bind", id),
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{
				TextureView: e.lumaView.NativeHandle(),
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: e.chromaView.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: p.sampler.NativeHandle(),
			}},
			{Binding: 3, Resource: gputypes.BufferBinding{
				Buffer: e.uniforms.NativeHandle(), Offset: 0, Size: rectUniformSize,
			}},
			{Binding: 4, Resource: gputypes.BufferBinding{
				Buffer: p.viewport.NativeHandle(), Offset: 0, Size: viewportUniformSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	e.bindGroup = bindGroup

	return nil
}

// WriteRect overwrites the destination rectangle uniform for id with the
// four coordinates (x0, y0, x1, y1) in render-target pixels. A missing id
// is an ordering race (rect written before first upload) and is silently
// ignored; no entry is created.
func (p *Pipeline) WriteRect(id uint64, rect [4]float32) {
	e, ok := p.entries[id]
	if !ok {
		return
	}
	p.queue.WriteBuffer(e.uniforms, 0, makeRectUniform(rect))
}

// Has reports whether an entry exists for id.
func (p *Pipeline) Has(id uint64) bool {
	_, ok := p.entries[id]
	return ok
}

// Len returns the number of cached entries.
func (p *Pipeline) Len() int { return len(p.entries) }

// Sweep destroys every entry whose producer is no longer alive and removes
// it from the cache. Runs between passes (inside Prepare), never
// concurrently with Draw, so no draw referencing a destroyed entry can be
// in flight. Cheap when nothing died.
func (p *Pipeline) Sweep() {
	var dead []uint64
	for id, e := range p.entries {
		if !e.alive.Alive() {
			dead = append(dead, id)
		}
	}
	if len(dead) == 0 {
		return
	}
	sort.Slice(dead, func(i, j int) bool { return dead[i] < dead[j] })
	for _, id := range dead {
		p.destroyEntry(p.entries[id])
		delete(p.entries, id)
	}
	slogger().Debug("video plane entries swept", "count", len(dead))
}

// DestroyAll releases every entry. Used at full pipeline teardown.
func (p *Pipeline) DestroyAll() {
	for id, e := range p.entries {
		p.destroyEntry(e)
		delete(p.entries, id)
	}
}

// destroyEntry releases one entry's GPU resources in reverse creation
// order. Tolerates partially created entries.
func (p *Pipeline) destroyEntry(e *videoEntry) {
	if e.bindGroup != nil {
		p.device.DestroyBindGroup(e.bindGroup)
		e.bindGroup = nil
	}
	if e.uniforms != nil {
		p.device.DestroyBuffer(e.uniforms)
		e.uniforms = nil
	}
	if e.chromaView != nil {
		p.device.DestroyTextureView(e.chromaView)
		e.chromaView = nil
	}
	if e.chromaTex != nil {
		p.device.DestroyTexture(e.chromaTex)
		e.chromaTex = nil
	}
	if e.lumaView != nil {
		p.device.DestroyTextureView(e.lumaView)
		e.lumaView = nil
	}
	if e.lumaTex != nil {
		p.device.DestroyTexture(e.lumaTex)
		e.lumaTex = nil
	}
}
