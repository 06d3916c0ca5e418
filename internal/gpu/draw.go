package gpu

import "github.com/gogpu/wgpu/hal"

// Draw records the plane draw for id into an active render pass: shared
// pipeline, the entry's bind group, one 4-vertex triangle strip. No vertex
// buffer — the corners come from the vertex index and the rect uniform.
//
// An id without an entry (drawn before its first upload, or swept this
// pass) is skipped silently; nothing is rendered for that frame.
func (p *Pipeline) Draw(rp hal.RenderPassEncoder, id uint64) {
	e, ok := p.entries[id]
	if !ok {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, e.bindGroup, nil)
	rp.Draw(4, 1, 0, 0)
}
