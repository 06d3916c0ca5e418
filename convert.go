package video

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// FrameFromImage converts an image into one YUV420 planar frame of the
// given dimensions, scaling with bilinear filtering when the source size
// differs. The result has the exact layout PushFrame expects: a
// width×height luma plane followed by interleaved half-resolution CbCr.
//
// This is a convenience for feeding synthetic or still-image frames (test
// patterns, poster frames); real decoders produce planar YUV directly.
func FrameFromImage(src image.Image, width, height uint32) ([]byte, error) {
	if width == 0 || height == 0 || width%2 != 0 || height%2 != 0 {
		return nil, ErrInvalidDimensions
	}
	w := int(width)
	h := int(height)

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(rgba, rgba.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	frame := make([]byte, FrameSize(width, height))
	luma := frame[:w*h]
	chroma := frame[w*h:]

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := rgba.PixOffset(x, y)
			yy, _, _ := color.RGBToYCbCr(rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2])
			luma[y*w+x] = yy
		}
	}

	// Chroma is averaged over each 2x2 block, stored interleaved Cb, Cr.
	cw := w / 2
	for cy := 0; cy < h/2; cy++ {
		for cx := 0; cx < cw; cx++ {
			var cbSum, crSum int
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					i := rgba.PixOffset(cx*2+dx, cy*2+dy)
					_, cb, cr := color.RGBToYCbCr(rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2])
					cbSum += int(cb)
					crSum += int(cr)
				}
			}
			chroma[(cy*cw+cx)*2] = uint8(cbSum / 4)
			chroma[(cy*cw+cx)*2+1] = uint8(crSum / 4)
		}
	}

	return frame, nil
}
