package protocol

// This package implements parsing and writing of the line protocol the
// device uses to stream its display to a viewer.
//
// The protocol aims to be
//
// - trivial for a microcontroller to produce
// - resynchronisable when the viewer joins mid-stream
// - human readable on a serial console
//
// It borrows its block markers from PEM.
//
// - `Frame`   - A complete packed 4-bit framebuffer.
// - `Palette` - A complete colour table of RGB triples.
// - `Diagnostic` - Any other text the device prints.
//
// === General Syntax
//
// - lines are `\r\n` delimited
// - the viewer discards everything up to the first `\r\n` it sees, the
//   stream may be joined half way through a line
// - markers are case sensitive and must match the whole line
//
// === Wakeup
//
// When the viewer connects it writes a single `\n` byte. This prompts the
// device to send a full frame.
//
// === Blocks
//
//   ```
//     -----BEGIN FRAME-----\r\n
//     <base64>\r\n
//     <base64>\r\n
//     ...
//     -----END FRAME-----\r\n
//   ```
//
// The payload lines are concatenated, without separators, and decoded as
// standard padded base64. The device encodes 60 bytes per line so only the
// last line ever carries padding.
//
// A frame payload is the device framebuffer, see package pixel for the pixel
// layout. A palette payload is a sequence of big-endian RGB triples:
//
//   ```
//     -----BEGIN PALETTE-----\r\n
//     <base64 of R G B R G B ...>\r\n
//     -----END PALETTE-----\r\n
//   ```
//
// Palettes are usually sent far more often than frames. Cycling the palette
// animates the picture without resending the pixels, so the viewer repaints
// the last frame every time a palette arrives.
//
// === Diagnostics
//
// Lines outside a block are free text. The device reports its free memory as
//
//   ```
//     mem_free <bytes>\r\n
//   ```
//
// which the viewer only logs when the value changes.
//
// === Errors
//
// A block whose payload fails to decode is dropped and the viewer waits for
// the next BEGIN marker. Errors never end the connection.
