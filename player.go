package video

import "time"

// Player drives one video through the host's redraw schedule. It owns the
// consumer side of generation-based change detection: each redraw it
// compares the frame buffer's generation against the last one it acted on,
// and only a mismatch triggers a GPU upload. It also derives the
// destination rectangle from the widget bounds and the configured scaling.
//
// Player is not safe for concurrent use; it belongs to the render schedule.
type Player struct {
	video   *Video
	scaling Scaling
	lastGen uint64
}

// NewPlayer wraps a video for rendering with default (aspect-fit, centered)
// scaling.
func NewPlayer(v *Video) *Player {
	return &Player{
		video:   v,
		scaling: DefaultScaling(),
	}
}

// Video returns the wrapped video handle.
func (pl *Player) Video() *Video { return pl.video }

// Scaling returns the current placement mode.
func (pl *Player) Scaling() Scaling { return pl.scaling }

// SetScaling changes how the plane is fitted into its bounds.
func (pl *Player) SetScaling(s Scaling) { pl.scaling = s }

// Subtitle returns the video's current subtitle text. Exposed for the host
// to render; this library never draws it.
func (pl *Player) Subtitle() string { return pl.video.Subtitle() }

// Primitive builds the draw information for one redraw. It performs the
// generation comparison — a bump since the last call sets UploadFrame, and
// equal generations never re-upload — records the arrival-to-redraw offset
// when a new frame is detected, and places the plane inside bounds.
//
// Call exactly once per render pass, then hand the result to
// RenderOp.Prepare and RenderOp.Render.
func (pl *Player) Primitive(bounds Rect) Primitive {
	v := pl.video

	gen := v.Frame().Generation()
	upload := gen != pl.lastGen
	pl.lastGen = gen

	if upload {
		if t := v.LastFrameAt(); !t.IsZero() {
			v.setAVOffset(time.Since(t))
		}
	}

	return Primitive{
		ID:          v.ID(),
		Alive:       v.Alive(),
		Frame:       v.Frame(),
		Width:       v.Width(),
		Height:      v.Height(),
		UploadFrame: upload,
		Rect:        pl.scaling.PlaceIn(bounds, v.Width(), v.Height()),
	}
}
