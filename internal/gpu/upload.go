package gpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// Upload pushes one YUV420 planar frame into the textures cached for id,
// creating the entry (and capturing alive) on first call. The first
// width*height bytes fill the luma texture; the remainder fills the chroma
// texture, two channels per texel.
//
// The caller decides when to upload by generation comparison; Upload itself
// is idempotent on identical bytes. frame must be exactly
// width*height + (width/2)*(height/2)*2 bytes — anything else is a caller
// bug and is rejected with ErrFrameSize before any entry is created.
func (p *Pipeline) Upload(id uint64, alive AliveFlag, width, height uint32, frame []byte) error {
	lumaLen := int(width * height)
	chromaLen := int((width / 2) * (height / 2) * 2)
	if len(frame) != lumaLen+chromaLen {
		return fmt.Errorf("%w: got %d, want %d for %dx%d",
			ErrFrameSize, len(frame), lumaLen+chromaLen, width, height)
	}

	e, err := p.ensure(id, alive, width, height)
	if err != nil {
		return err
	}

	p.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  e.lumaTex,
			MipLevel: 0,
		},
		frame[:lumaLen],
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  width,
			RowsPerImage: height,
		},
		&hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	)

	p.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  e.chromaTex,
			MipLevel: 0,
		},
		frame[lumaLen:],
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  width, // two bytes per chroma texel
			RowsPerImage: height / 2,
		},
		&hal.Extent3D{Width: width / 2, Height: height / 2, DepthOrArrayLayers: 1},
	)

	return nil
}
