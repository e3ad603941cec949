/*
Package pixel implements the packed 4-bit indexed pixel format streamed by the
device and its conversion into an RGBA raster.

A frame is CanvasWidth by CanvasHeight pixels, each pixel a 4-bit index into a
palette of 24-bit RGB colours. The pixels are packed eight to a 32-bit
little-endian word. Within a word the first pixel lives in the most
significant nibble and the eighth pixel in the least significant nibble, so
the first pixel of a group comes from the top nibble of the last byte of the
group:

	bytes   12 34 56 78
	word    0x78563412
	pixels  7 8 5 6 3 4 1 2

This ordering is how the device lays out its framebuffer in memory and must be
preserved exactly.
*/
package pixel

const (
	CanvasWidth  = 160
	CanvasHeight = 128
	NumPixels    = CanvasWidth * CanvasHeight

	// BitsPerPixel is the width of one colour index
	BitsPerPixel = 4

	// FrameBytes is the size of a complete packed frame
	FrameBytes = NumPixels * BitsPerPixel / 8

	// MaxColors is the number of palette entries a 4-bit index can address
	MaxColors = 1 << BitsPerPixel

	pixelsPerGroup = 32 / BitsPerPixel
	bytesPerGroup  = 4
)
