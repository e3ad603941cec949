package pixel

import (
	"fmt"
	"image/color"
)

// Entry is a 24-bit colour stored as 0xRRGGBB.
type Entry uint32

// RGB builds an Entry from its components.
func RGB(r, g, b uint8) Entry {
	return Entry(r)<<16 | Entry(g)<<8 | Entry(b)
}

// FromColor converts any colour into an Entry, dropping alpha.
func FromColor(c color.Color) Entry {
	r, g, b, _ := c.RGBA()
	return RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

func (e Entry) R() uint8 { return uint8(e >> 16) }
func (e Entry) G() uint8 { return uint8(e >> 8) }
func (e Entry) B() uint8 { return uint8(e) }

// RGBA returns the entry as an opaque colour.
func (e Entry) RGBA() color.RGBA {
	return color.RGBA{e.R(), e.G(), e.B(), 0xff}
}

func (e Entry) String() string {
	return fmt.Sprintf("#%06x", uint32(e)&0xffffff)
}

// Palette is an ordered colour table. Only the first MaxColors entries can
// ever be referenced by a 4-bit pixel stream, longer palettes are accepted
// but the extra entries are never used.
type Palette []Entry

// DefaultPalette is used until the device has sent a palette. Every entry is
// black.
func DefaultPalette() Palette {
	return make(Palette, MaxColors)
}

// NewPalette builds a palette from consecutive big-endian RGB triples. A
// trailing partial triple is dropped.
func NewPalette(data []byte) Palette {
	p := make(Palette, len(data)/3)
	for i := range p {
		m := i * 3
		p[i] = RGB(data[m], data[m+1], data[m+2])
	}
	return p
}

// Color returns the colour for index i, or black if i is outside the
// palette.
func (p Palette) Color(i int) Entry {
	if i < 0 || i >= len(p) {
		return 0
	}
	return p[i]
}

// Bytes serialises the palette as big-endian RGB triples, the inverse of
// NewPalette.
func (p Palette) Bytes() []byte {
	data := make([]byte, 0, len(p)*3)
	for _, e := range p {
		data = append(data, e.R(), e.G(), e.B())
	}
	return data
}

// ColorPalette converts p into a color.Palette.
func (p Palette) ColorPalette() color.Palette {
	cp := make(color.Palette, len(p))
	for i, e := range p {
		cp[i] = e.RGBA()
	}
	return cp
}
