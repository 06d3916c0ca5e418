package video

import (
	"html"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Liveness is a one-way shared flag signaling whether the producing Video
// still exists. It is set true at creation and cleared exactly once when the
// owner closes; it never transitions back to true. The plane cache holds a
// pointer to it and uses the flag as the sole eligibility test for sweeping
// GPU resources.
type Liveness struct {
	alive atomic.Bool
}

// NewLiveness returns a flag in the alive state.
func NewLiveness() *Liveness {
	l := &Liveness{}
	l.alive.Store(true)
	return l
}

// Alive reports whether the owner still exists.
func (l *Liveness) Alive() bool { return l.alive.Load() }

// Kill clears the flag. Safe to call more than once.
func (l *Liveness) Kill() { l.alive.Store(false) }

// nextVideoID allocates process-unique video ids. Ids are never reused
// while the process runs, so a new Video can never collide with a cache
// entry that has not been swept yet.
var nextVideoID atomic.Uint64

// Video is the producer-side handle for one playing video. A decoder
// goroutine feeds it frames via PushFrame; the host's render path reads its
// frame buffer and liveness through a Player. The id is stable for the
// handle's entire lifetime.
//
// Video methods are safe for concurrent use: the frame buffer carries its
// own lock, liveness is atomic, and the remaining mutable state (subtitle,
// frame timing) is guarded by a mutex.
type Video struct {
	id    uint64
	frame *FrameBuffer
	alive *Liveness

	mu          sync.Mutex
	subtitle    string
	lastFrameAt time.Time
	avOffset    time.Duration
}

// NewVideo creates a video handle with a fresh process-unique id and a
// black initial frame. Dimensions are fixed for the handle's lifetime; a
// resolution change requires a new Video.
func NewVideo(width, height uint32) (*Video, error) {
	fb, err := NewFrameBuffer(width, height)
	if err != nil {
		return nil, err
	}
	return &Video{
		id:    nextVideoID.Add(1),
		frame: fb,
		alive: NewLiveness(),
	}, nil
}

// ID returns the video's process-unique identifier.
func (v *Video) ID() uint64 { return v.id }

// Width returns the frame width in pixels.
func (v *Video) Width() uint32 { return v.frame.Width() }

// Height returns the frame height in pixels.
func (v *Video) Height() uint32 { return v.frame.Height() }

// Frame returns the shared frame buffer.
func (v *Video) Frame() *FrameBuffer { return v.frame }

// Alive returns the shared liveness flag.
func (v *Video) Alive() *Liveness { return v.alive }

// PushFrame publishes a newly decoded YUV420 planar frame. The byte copy
// and the generation bump happen atomically with respect to the consumer,
// and the arrival time is stamped for A/V offset tracking.
//
// Called from the decoder's schedule, concurrently with rendering.
func (v *Video) PushFrame(frame []byte) error {
	if err := v.frame.Write(frame); err != nil {
		return err
	}
	v.mu.Lock()
	v.lastFrameAt = time.Now()
	v.mu.Unlock()
	return nil
}

// SetSubtitle publishes the current subtitle text. HTML entities are
// unescaped and the text is normalized to NFC; no other processing is done
// and nothing is rendered.
func (v *Video) SetSubtitle(text string) {
	text = norm.NFC.String(html.UnescapeString(text))
	v.mu.Lock()
	v.subtitle = text
	v.mu.Unlock()
}

// Subtitle returns the most recently published subtitle text, or the empty
// string if none.
func (v *Video) Subtitle() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.subtitle
}

// LastFrameAt returns the wall-clock arrival time of the most recent frame,
// or the zero time if no frame has arrived.
func (v *Video) LastFrameAt() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastFrameAt
}

// AVOffset returns the last recorded offset between frame arrival and the
// redraw that consumed it. When to act on the offset is the playback
// layer's decision.
func (v *Video) AVOffset() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.avOffset
}

// setAVOffset records the arrival-to-redraw offset. Called by the player
// when a new frame is detected.
func (v *Video) setAVOffset(d time.Duration) {
	v.mu.Lock()
	v.avOffset = d
	v.mu.Unlock()
}

// Close marks the video dead. The GPU resources cached for its id are
// released by the next prepare pass; frames pushed after Close are ignored
// by the render path once the sweep runs. Close is idempotent.
func (v *Video) Close() {
	v.alive.Kill()
}
