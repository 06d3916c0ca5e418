package video

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/video/internal/gpu"
)

// Primitive is one video's draw information for a single render pass: the
// identity and shared state the pipeline caches against, plus the per-pass
// decisions the redraw path already made (whether frame bytes changed and
// where the plane lands).
type Primitive struct {
	// ID is the cache key; stable for the video's lifetime.
	ID uint64

	// Alive is the shared liveness flag captured by the cache entry on
	// first upload.
	Alive *Liveness

	// Frame is the shared frame buffer read during upload.
	Frame *FrameBuffer

	// Width and Height are the video's native dimensions; fixed across
	// every upload for the same ID.
	Width, Height uint32

	// UploadFrame is the caller's generation-comparison verdict: true
	// when the frame bytes changed since the last pass.
	UploadFrame bool

	// Rect is the destination rectangle in render-target pixels.
	Rect Rect
}

// RenderOp is the two-phase render operation exposed to the host: Prepare
// runs before the pass is open (uploads if needed, refreshes layout, sweeps
// dead entries), Render records the draw inside the pass. One RenderOp
// multiplexes all videos through a single shared GPU pipeline.
//
// The host must not run Prepare concurrently with Render for the same op;
// a single-threaded render schedule satisfies this naturally.
type RenderOp struct {
	pipeline *gpu.Pipeline
}

// NewRenderOp creates an empty render operation. The GPU pipeline is built
// lazily on the first Prepare, when a device is available.
func NewRenderOp() *RenderOp {
	return &RenderOp{}
}

// Prepare performs the pre-pass work for one video: lazily constructs the
// shared pipeline, uploads the current frame when prim.UploadFrame is set
// (the frame lock is held only for the copy into GPU-visible memory), always
// rewrites the destination rectangle, and sweeps entries whose producers
// died. Returns the prepared primitive to hand to Render.
//
// Errors are fatal: shader compilation or resource allocation failing means
// the device is unusable, and a frame-size or dimension mismatch is a
// caller bug.
func (op *RenderOp) Prepare(g Graphics, prim Primitive) (Primitive, error) {
	if err := g.valid(); err != nil {
		return prim, err
	}
	if op.pipeline == nil {
		p, err := gpu.New(g.Device, g.Queue, g.Format, g.SampleCount)
		if err != nil {
			return prim, err
		}
		op.pipeline = p
	}

	op.pipeline.SetViewport(g.Width, g.Height)

	if prim.UploadFrame {
		var uploadErr error
		prim.Frame.Read(func(frame []byte) {
			uploadErr = op.pipeline.Upload(prim.ID, prim.Alive, prim.Width, prim.Height, frame)
		})
		if uploadErr != nil {
			return prim, uploadErr
		}
	}

	op.pipeline.Prepare(prim.ID, [4]float32{prim.Rect.X0, prim.Rect.Y0, prim.Rect.X1, prim.Rect.Y1})
	return prim, nil
}

// Render records the plane draw into an active render pass. A primitive
// whose entry is missing (never uploaded, or swept this pass) draws
// nothing. Safe to call before the first Prepare; it is a no-op then.
func (op *RenderOp) Render(rp hal.RenderPassEncoder, prepared Primitive) {
	if op.pipeline == nil {
		return
	}
	op.pipeline.Draw(rp, prepared.ID)
}

// Close releases the shared pipeline and every cached entry. The op can be
// reused afterward; the next Prepare rebuilds the pipeline.
func (op *RenderOp) Close() {
	if op.pipeline != nil {
		op.pipeline.Destroy()
		op.pipeline = nil
	}
}
