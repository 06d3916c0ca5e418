package video

// Rect is an axis-aligned rectangle in pixel units matching the render
// target's coordinate space, stored as its two corners (X0,Y0)-(X1,Y1).
// This is exactly the layout of the per-video rectangle uniform.
type Rect struct {
	X0, Y0, X1, Y1 float32
}

// RectXYWH builds a Rect from an origin and a size.
func RectXYWH(x, y, w, h float32) Rect {
	return Rect{X0: x, Y0: y, X1: x + w, Y1: y + h}
}

// Width returns the rectangle's width.
func (r Rect) Width() float32 { return r.X1 - r.X0 }

// Height returns the rectangle's height.
func (r Rect) Height() float32 { return r.Y1 - r.Y0 }

// ScaleMode selects how a video plane is fitted into its widget bounds.
type ScaleMode int

const (
	// ScaleAspectFit scales the video to the largest size that fits
	// entirely inside the bounds, preserving aspect ratio.
	ScaleAspectFit ScaleMode = iota

	// ScaleAspectFill scales the video to the smallest size that covers
	// the bounds completely, preserving aspect ratio.
	ScaleAspectFill

	// ScaleStretch fills the bounds exactly, ignoring aspect ratio.
	ScaleStretch

	// ScaleFactor multiplies the native video size by Scaling.Factor,
	// ignoring the bounds size.
	ScaleFactor
)

// Scaling describes video plane placement. AlignX and AlignY position the
// scaled plane inside the bounds as fractions of the leftover space
// (0 = start edge, 0.5 = centered, 1 = end edge); they apply to the aspect
// modes only.
type Scaling struct {
	Mode   ScaleMode
	Factor float32
	AlignX float32
	AlignY float32
}

// DefaultScaling is aspect-fit, centered.
func DefaultScaling() Scaling {
	return Scaling{Mode: ScaleAspectFit, Factor: 1, AlignX: 0.5, AlignY: 0.5}
}

// PlaceIn computes the destination rectangle for a video of the given
// native size inside bounds. The result is in the same pixel coordinate
// space as bounds.
func (s Scaling) PlaceIn(bounds Rect, videoW, videoH uint32) Rect {
	vw := float32(videoW)
	vh := float32(videoH)
	if vw <= 0 || vh <= 0 {
		return Rect{X0: bounds.X0, Y0: bounds.Y0, X1: bounds.X0, Y1: bounds.Y0}
	}

	switch s.Mode {
	case ScaleAspectFit, ScaleAspectFill:
		scaleW := bounds.Width() / vw
		scaleH := bounds.Height() / vh
		scale := scaleW
		if s.Mode == ScaleAspectFit {
			if scaleH < scale {
				scale = scaleH
			}
		} else {
			if scaleH > scale {
				scale = scaleH
			}
		}
		w := vw * scale
		h := vh * scale
		x := bounds.X0 + (bounds.Width()-w)*s.AlignX
		y := bounds.Y0 + (bounds.Height()-h)*s.AlignY
		return RectXYWH(x, y, w, h)

	case ScaleFactor:
		return RectXYWH(bounds.X0, bounds.Y0, vw*s.Factor, vh*s.Factor)

	default: // ScaleStretch
		return bounds
	}
}
