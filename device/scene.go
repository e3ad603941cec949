// Package device emulates the microcontroller at the other end of the
// serial link: it renders a scene into the packed framebuffer format and
// streams frames and palettes to a viewer.
package device

import (
	"github.com/luma/boingscope/pixel"
)

// Scene is something the device can display.
type Scene interface {
	// Frame returns the packed framebuffer.
	Frame() []byte

	// Palette returns the palette to send on the given animation step.
	Palette(step int) pixel.Palette
}
