package video

import (
	"errors"
	"fmt"
	"sync"
)

// Frame buffer errors.
var (
	// ErrFrameSize is returned when a frame's byte length does not match
	// the YUV420 planar size for the buffer's dimensions.
	ErrFrameSize = errors.New("video: frame length does not match dimensions")

	// ErrInvalidDimensions is returned when width or height is zero or odd.
	// Chroma planes are subsampled 2x2, so both dimensions must be even.
	ErrInvalidDimensions = errors.New("video: invalid frame dimensions")
)

// FrameSize returns the byte length of one YUV420 planar frame:
// a full-resolution luma plane followed by a half-resolution interleaved
// two-channel chroma plane.
func FrameSize(width, height uint32) int {
	return int(width*height + (width/2)*(height/2)*2)
}

// FrameBuffer holds one decoded frame shared between a producer (decoder)
// and a consumer (render path). The byte buffer and the generation counter
// are guarded by a single mutex: a generation bump is never visible before
// the corresponding byte write completes, so the consumer can never observe
// a torn frame.
//
// The producer calls Write whenever a new frame is decoded. The consumer
// compares Generation against the last value it acted on; a mismatch is the
// sole signal that a GPU re-upload is required.
type FrameBuffer struct {
	mu     sync.Mutex
	buf    []byte
	gen    uint64
	width  uint32
	height uint32
}

// NewFrameBuffer creates a frame buffer for the given dimensions.
// The buffer starts at generation zero holding a black frame
// (zero luma, zero chroma).
func NewFrameBuffer(width, height uint32) (*FrameBuffer, error) {
	if width == 0 || height == 0 || width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &FrameBuffer{
		buf:    make([]byte, FrameSize(width, height)),
		width:  width,
		height: height,
	}, nil
}

// Width returns the frame width in pixels.
func (fb *FrameBuffer) Width() uint32 { return fb.width }

// Height returns the frame height in pixels.
func (fb *FrameBuffer) Height() uint32 { return fb.height }

// Write copies a full YUV420 planar frame into the buffer and bumps the
// generation. The copy and the bump happen under one critical section.
//
// Returns ErrFrameSize if len(frame) does not equal FrameSize for the
// buffer's dimensions; the buffer is left untouched in that case.
func (fb *FrameBuffer) Write(frame []byte) error {
	if len(frame) != len(fb.buf) {
		return fmt.Errorf("%w: got %d, want %d", ErrFrameSize, len(frame), len(fb.buf))
	}
	fb.mu.Lock()
	copy(fb.buf, frame)
	fb.gen++
	fb.mu.Unlock()
	return nil
}

// Generation returns the current change generation. The counter increments
// by one on every Write and never otherwise, so equal values mean the bytes
// have not changed since the caller last looked.
func (fb *FrameBuffer) Generation() uint64 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.gen
}

// Read runs fn with the frame bytes while holding the buffer lock.
// fn must not retain the slice past its return and must not block on GPU
// submission; the lock should cover only the copy into GPU-visible memory.
func (fb *FrameBuffer) Read(fn func(frame []byte)) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fn(fb.buf)
}
