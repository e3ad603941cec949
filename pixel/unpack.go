package pixel

import (
	"encoding/binary"
	"image"
)

// NewRaster returns an opaque black raster of the canvas size.
func NewRaster() *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	for i := 3; i < len(m.Pix); i += 4 {
		m.Pix[i] = 0xff
	}
	return m
}

// Unpack expands a packed frame into a new raster using palette p.
//
// Unpacking stops as soon as either the frame or the raster runs out, so a
// short frame leaves the remaining pixels black and a long one is truncated.
// Indices outside the palette are painted black.
func Unpack(frame []byte, p Palette) *image.RGBA {
	m := NewRaster()
	dst := m.Pix

	for src := 0; src+bytesPerGroup <= len(frame) && len(dst) >= pixelsPerGroup*4; src += bytesPerGroup {
		word := binary.LittleEndian.Uint32(frame[src:])

		for shift := 32 - BitsPerPixel; shift >= 0; shift -= BitsPerPixel {
			c := p.Color(int(word >> uint(shift) & (MaxColors - 1)))
			dst[0] = c.R()
			dst[1] = c.G()
			dst[2] = c.B()
			dst[3] = 0xff
			dst = dst[4:]
		}
	}

	return m
}

// Indices returns the colour index of every pixel in frame, in raster order.
// It follows the same ordering and truncation rules as Unpack.
func Indices(frame []byte) []uint8 {
	out := make([]uint8, 0, NumPixels)

	for src := 0; src+bytesPerGroup <= len(frame) && len(out)+pixelsPerGroup <= NumPixels; src += bytesPerGroup {
		word := binary.LittleEndian.Uint32(frame[src:])
		for shift := 32 - BitsPerPixel; shift >= 0; shift -= BitsPerPixel {
			out = append(out, uint8(word>>uint(shift)&(MaxColors-1)))
		}
	}

	return out
}

// Pack is the inverse of Indices. Each index is masked to 4 bits and a final
// partial group is padded with index 0.
func Pack(indices []uint8) []byte {
	groups := (len(indices) + pixelsPerGroup - 1) / pixelsPerGroup
	frame := make([]byte, groups*bytesPerGroup)

	for g := 0; g < groups; g++ {
		var word uint32
		for i := 0; i < pixelsPerGroup; i++ {
			var v uint8
			if n := g*pixelsPerGroup + i; n < len(indices) {
				v = indices[n] & (MaxColors - 1)
			}
			word |= uint32(v) << uint(32-BitsPerPixel*(i+1))
		}
		binary.LittleEndian.PutUint32(frame[g*bytesPerGroup:], word)
	}

	return frame
}
