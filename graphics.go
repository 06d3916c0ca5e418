package video

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Graphics boundary errors.
var (
	// ErrNilDevice is returned when a Graphics carries no HAL device.
	ErrNilDevice = errors.New("video: nil HAL device")

	// ErrNoHALAccess is returned when a device provider does not expose
	// the underlying wgpu HAL types.
	ErrNoHALAccess = errors.New("video: provider does not expose HAL types")
)

// Graphics carries everything the plane pipeline consumes from the host
// render system for one pass: the shared device and queue, the color target
// format and multisample configuration the shared pipeline must match, and
// the render target size in pixels (used to map pixel rectangles to clip
// space).
//
// The host OWNS the device; video never creates one.
type Graphics struct {
	Device hal.Device
	Queue  hal.Queue

	// Format is the color target format of the pass Render will draw into.
	Format gputypes.TextureFormat

	// SampleCount is the pass's multisample count (1 for no MSAA).
	SampleCount uint32

	// Width and Height are the render target size in pixels.
	Width  uint32
	Height uint32
}

// halProvider is the accessor pair gogpu device providers implement to hand
// out raw HAL handles. The methods are any-typed to keep gpucontext free of
// a wgpu dependency.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// GraphicsFromProvider builds a Graphics from a shared gogpu device
// provider (e.g., gogpu.App.GPUContextProvider()). The provider must also
// implement HalDevice()/HalQueue() returning hal.Device and hal.Queue; the
// surface format is taken from the provider.
func GraphicsFromProvider(provider gpucontext.DeviceProvider, width, height, sampleCount uint32) (Graphics, error) {
	hp, ok := provider.(halProvider)
	if !ok {
		return Graphics{}, ErrNoHALAccess
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return Graphics{}, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALAccess)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return Graphics{}, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALAccess)
	}
	if sampleCount == 0 {
		sampleCount = 1
	}
	return Graphics{
		Device:      device,
		Queue:       queue,
		Format:      provider.SurfaceFormat(),
		SampleCount: sampleCount,
		Width:       width,
		Height:      height,
	}, nil
}

// valid reports whether the Graphics carries usable handles.
func (g Graphics) valid() error {
	if g.Device == nil || g.Queue == nil {
		return ErrNilDevice
	}
	return nil
}
