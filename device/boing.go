package device

import (
	"github.com/luma/boingscope/pixel"
)

const (
	// Steps is the length of the colour cycle
	Steps = 8

	rampStart = 4
	rampEnd   = 12
)

// BoingPalette returns the initial palette of the checkerboard scene.
func BoingPalette() pixel.Palette {
	return pixel.Palette{
		0xaaaaaa, // gray
		0x666666, // dark gray
		0xaa00aa, // purple
		0x660066, // dark purple
		0xffffff, // white
		0xf7f7f7,
		0xefefef,
		0xe7e7e7,
		0xff0000, // red
		0xf70000,
		0xef0000,
		0xe70000,
		0xff00ff, // magenta
		0xff00ff,
		0xff00ff,
		0xff00ff,
	}
}

// RotatePalette rotates the red and white ramp, entries 4 to 11, by angle
// places. Angles wrap modulo Steps. Palettes that are not exactly 16 entries
// are returned unchanged.
func RotatePalette(p pixel.Palette, angle int) pixel.Palette {
	out := make(pixel.Palette, len(p))
	copy(out, p)

	if len(p) != pixel.MaxColors {
		return out
	}

	start := rampStart + (angle%Steps+Steps)%Steps
	n := copy(out[rampStart:], p[start:rampEnd])
	copy(out[rampStart+n:rampEnd], p[rampStart:start])

	return out
}

// BoingIndices paints the checkerboard: a grid of dark gray lines on gray
// with a block of cycleable red and white squares in the middle.
func BoingIndices(w, h int) []uint8 {
	indices := make([]uint8, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			angle := (x >> 2) & 3
			grid := ((y >> 4) & 1) ^ ((x >> 4) & 1)

			var v int
			switch {
			case x >= 48 && x < 96 && y >= 32 && y < 80:
				v = rampStart + grid*4 + angle
			case x&15 == 0 || y&15 == 0:
				v = 1
			}

			indices[y*w+x] = uint8(v)
		}
	}

	return indices
}

// Boing is the checkerboard scene with colour cycling.
type Boing struct {
	frame   []byte
	palette pixel.Palette
}

func NewBoing() *Boing {
	return &Boing{
		frame:   pixel.Pack(BoingIndices(pixel.CanvasWidth, pixel.CanvasHeight)),
		palette: BoingPalette(),
	}
}

func (b *Boing) Frame() []byte {
	return b.frame
}

func (b *Boing) Palette(step int) pixel.Palette {
	return RotatePalette(b.palette, step)
}

var _ Scene = (*Boing)(nil)
