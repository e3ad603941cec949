package device

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/ericpauley/go-quantize/quantize"

	"github.com/luma/boingscope/pixel"
)

// Picture is a static scene made from an arbitrary image, reduced to the 16
// colours the framebuffer can hold.
type Picture struct {
	frame   []byte
	palette pixel.Palette
}

// NewPicture quantizes m and crops it to the canvas, anchored top left.
func NewPicture(m image.Image) *Picture {
	b := image.Rect(0, 0, pixel.CanvasWidth, pixel.CanvasHeight)

	q := quantize.MedianCutQuantizer{}
	cp := q.Quantize(make(color.Palette, 0, pixel.MaxColors), m)

	pm := image.NewPaletted(b, cp)
	draw.Draw(pm, b, m, m.Bounds().Min, draw.Src)

	palette := make(pixel.Palette, len(cp))
	for i, c := range cp {
		palette[i] = pixel.FromColor(c)
	}

	return &Picture{
		frame:   pixel.Pack(pm.Pix),
		palette: palette,
	}
}

// LoadPicture decodes a GIF, JPEG or PNG file into a Picture.
func LoadPicture(path string) (*Picture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("Failed to decode %s: %w", path, err)
	}

	return NewPicture(m), nil
}

func (p *Picture) Frame() []byte {
	return p.frame
}

func (p *Picture) Palette(step int) pixel.Palette {
	return p.palette
}

var _ Scene = (*Picture)(nil)
