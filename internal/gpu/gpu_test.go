package gpu

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
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
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// countingDevice wraps a hal.Device and records resource creation and
// destruction, so tests can prove uploads reuse cached entries instead of
// leaking GPU resources.
type countingDevice struct {
	hal.Device

	textureDescs      []*hal.TextureDescriptor
	buffersCreated    int
	bindGroupsCreated int

	texturesDestroyed   int
	buffersDestroyed    int
	bindGroupsDestroyed int
}

func (d *countingDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	d.textureDescs = append(d.textureDescs, desc)
	return d.Device.CreateTexture(desc)
}

func (d *countingDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	d.buffersCreated++
	return d.Device.CreateBuffer(desc)
}

func (d *countingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	d.bindGroupsCreated++
	return d.Device.CreateBindGroup(desc)
}

func (d *countingDevice) DestroyTexture(tex hal.Texture) {
	d.texturesDestroyed++
	d.Device.DestroyTexture(tex)
}

func (d *countingDevice) DestroyBuffer(buf hal.Buffer) {
	d.buffersDestroyed++
	d.Device.DestroyBuffer(buf)
}

func (d *countingDevice) DestroyBindGroup(bg hal.BindGroup) {
	d.bindGroupsDestroyed++
	d.Device.DestroyBindGroup(bg)
}

// resetCounts clears creation records accumulated so far (e.g., the shared
// pipeline resources created by New) so assertions cover only the
// operations under test.
func (d *countingDevice) resetCounts() {
	d.textureDescs = nil
	d.buffersCreated = 0
	d.bindGroupsCreated = 0
	d.texturesDestroyed = 0
	d.buffersDestroyed = 0
	d.bindGroupsDestroyed = 0
}

// bufferWrite is one recorded queue.WriteBuffer call.
type bufferWrite struct {
	buf    hal.Buffer
	offset uint64
	data   []byte
}

// textureWrite is one recorded queue.WriteTexture call.
type textureWrite struct {
	tex     hal.Texture
	dataLen int
	size    hal.Extent3D
}

// recordingQueue wraps a hal.Queue and records writes, so tests can verify
// upload counts and exact uniform payloads without a real GPU.
type recordingQueue struct {
	hal.Queue

	textureWrites []textureWrite
	bufferWrites  []bufferWrite
}

func (q *recordingQueue) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	q.textureWrites = append(q.textureWrites, textureWrite{tex: dst.Texture, dataLen: len(data), size: *size})
	return q.Queue.WriteTexture(dst, data, layout, size)
}

func (q *recordingQueue) WriteBuffer(buf hal.Buffer, offset uint64, data []byte) error {
	q.bufferWrites = append(q.bufferWrites, bufferWrite{buf: buf, offset: offset, data: append([]byte(nil), data...)})
	return q.Queue.WriteBuffer(buf, offset, data)
}

// lastWriteTo returns the most recent payload written to buf, or nil.
func (q *recordingQueue) lastWriteTo(buf hal.Buffer) []byte {
	for i := len(q.bufferWrites) - 1; i >= 0; i-- {
		if q.bufferWrites[i].buf == buf {
			return q.bufferWrites[i].data
		}
	}
	return nil
}

// testFlag is a settable AliveFlag.
type testFlag struct {
	dead bool
}

func (f *testFlag) Alive() bool { return !f.dead }

// newTestPipeline builds a Pipeline on counting wrappers over the noop
// backend. Creation counts are reset after construction, so tests observe
// only per-entry resource traffic.
func newTestPipeline(t *testing.T) (*Pipeline, *countingDevice, *recordingQueue) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)

	cd := &countingDevice{Device: device}
	rq := &recordingQueue{Queue: queue}

	p, err := New(cd, rq, gputypes.TextureFormatBGRA8Unorm, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(p.Destroy)

	cd.resetCounts()
	return p, cd, rq
}

// testFrame builds a deterministic YUV420 planar frame for the given
// dimensions.
func testFrame(width, height uint32) []byte {
	n := int(width*height + (width/2)*(height/2)*2)
	frame := make([]byte, n)
	for i := range frame {
		frame[i] = byte(i % 251)
	}
	return frame
}
