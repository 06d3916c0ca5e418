package video

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/video/internal/gpu"
)

// uploadCountingQueue wraps a hal.Queue and counts texture writes, so
// tests can tell an upload apart from a layout-only prepare.
type uploadCountingQueue struct {
	hal.Queue
	textureWrites int
}

func (q *uploadCountingQueue) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	q.textureWrites++
	return q.Queue.WriteTexture(dst, data, layout, size)
}

// drawCountingPass records the draws an op issues into a pass.
type drawCountingPass struct {
	hal.RenderPassEncoder
	draws int
}

func (p *drawCountingPass) SetPipeline(hal.RenderPipeline) {}

func (p *drawCountingPass) SetBindGroup(uint32, hal.BindGroup, []uint32) {}

func (p *drawCountingPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.draws++
}

func newTestGraphics(t *testing.T) (Graphics, *uploadCountingQueue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})

	q := &uploadCountingQueue{Queue: openDev.Queue}
	return Graphics{
		Device:      openDev.Device,
		Queue:       q,
		Format:      gputypes.TextureFormatBGRA8Unorm,
		SampleCount: 1,
		Width:       640,
		Height:      480,
	}, q
}

func TestPrepareRejectsInvalidGraphics(t *testing.T) {
	op := NewRenderOp()
	defer op.Close()

	_, err := op.Prepare(Graphics{}, Primitive{})
	if !errors.Is(err, ErrNilDevice) {
		t.Fatalf("Prepare error = %v, want ErrNilDevice", err)
	}
}

func TestRenderBeforePrepareIsNoop(t *testing.T) {
	op := NewRenderOp()
	defer op.Close()

	pass := &drawCountingPass{}
	op.Render(pass, Primitive{ID: 1})
	if pass.draws != 0 {
		t.Error("Render issued a draw before any Prepare")
	}
}

func TestPrepareUploadsOnlyWhenRequested(t *testing.T) {
	g, q := newTestGraphics(t)
	v := newTestVideo(t, 64, 48)
	pl := NewPlayer(v)
	op := NewRenderOp()
	defer op.Close()

	if err := v.PushFrame(make([]byte, FrameSize(64, 48))); err != nil {
		t.Fatalf("PushFrame failed: %v", err)
	}

	bounds := RectXYWH(0, 0, 640, 480)
	if _, err := op.Prepare(g, pl.Primitive(bounds)); err != nil {
		t.Fatalf("first Prepare failed: %v", err)
	}
	if q.textureWrites != 2 {
		t.Errorf("first prepare made %d texture writes, want 2", q.textureWrites)
	}

	// No new frame, no texture traffic.
	q.textureWrites = 0
	if _, err := op.Prepare(g, pl.Primitive(bounds)); err != nil {
		t.Fatalf("second Prepare failed: %v", err)
	}
	if q.textureWrites != 0 {
		t.Errorf("prepare without a new frame made %d texture writes, want 0", q.textureWrites)
	}
}

func TestPrepareRejectsMismatchedFrame(t *testing.T) {
	g, _ := newTestGraphics(t)
	v := newTestVideo(t, 64, 48)
	op := NewRenderOp()
	defer op.Close()

	// Dimensions claiming more bytes than the frame buffer holds.
	prim := Primitive{
		ID:          v.ID(),
		Alive:       v.Alive(),
		Frame:       v.Frame(),
		Width:       128,
		Height:      96,
		UploadFrame: true,
	}
	_, err := op.Prepare(g, prim)
	if !errors.Is(err, gpu.ErrFrameSize) {
		t.Fatalf("Prepare error = %v, want gpu.ErrFrameSize", err)
	}
}

func TestRenderOpLifecycle(t *testing.T) {
	g, _ := newTestGraphics(t)
	v := newTestVideo(t, 64, 48)
	pl := NewPlayer(v)
	op := NewRenderOp()
	defer op.Close()

	bounds := RectXYWH(0, 0, 640, 480)

	// Frames arrive, redraws upload once each and draw every pass.
	for i := 0; i < 3; i++ {
		if err := v.PushFrame(make([]byte, FrameSize(64, 48))); err != nil {
			t.Fatalf("PushFrame failed: %v", err)
		}
		prepared, err := op.Prepare(g, pl.Primitive(bounds))
		if err != nil {
			t.Fatalf("Prepare failed: %v", err)
		}
		pass := &drawCountingPass{}
		op.Render(pass, prepared)
		if pass.draws != 1 {
			t.Fatalf("pass %d recorded %d draws, want 1", i, pass.draws)
		}
	}

	// Close the video; the next prepare sweeps its entry and the draw
	// becomes a no-op.
	v.Close()
	prepared, err := op.Prepare(g, pl.Primitive(bounds))
	if err != nil {
		t.Fatalf("Prepare after close failed: %v", err)
	}
	pass := &drawCountingPass{}
	op.Render(pass, prepared)
	if pass.draws != 0 {
		t.Error("closed video still drew")
	}
}

func TestRenderOpCloseAndReuse(t *testing.T) {
	g, _ := newTestGraphics(t)
	v := newTestVideo(t, 64, 48)
	pl := NewPlayer(v)
	op := NewRenderOp()

	if err := v.PushFrame(make([]byte, FrameSize(64, 48))); err != nil {
		t.Fatalf("PushFrame failed: %v", err)
	}
	bounds := RectXYWH(0, 0, 640, 480)
	if _, err := op.Prepare(g, pl.Primitive(bounds)); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	op.Close()
	op.Close()

	// A closed op rebuilds its pipeline on the next Prepare.
	if err := v.PushFrame(make([]byte, FrameSize(64, 48))); err != nil {
		t.Fatalf("PushFrame failed: %v", err)
	}
	prepared, err := op.Prepare(g, pl.Primitive(bounds))
	if err != nil {
		t.Fatalf("Prepare after Close failed: %v", err)
	}
	pass := &drawCountingPass{}
	op.Render(pass, prepared)
	if pass.draws != 1 {
		t.Errorf("recorded %d draws after reuse, want 1", pass.draws)
	}
	op.Close()
}
