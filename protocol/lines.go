package protocol

import (
	"bytes"
)

var (
	Terminal = []byte("\r\n")
)

// LineAssembler turns chunks read from the transport, which may start or
// end anywhere, into complete `\r\n` delimited lines.
//
// Everything before the first delimiter is discarded since the stream may
// have been joined half way through a line. Once the first delimiter is seen
// the assembler stays in sync for the rest of the connection.
//
// There is no limit on line length. A stream that never sends a delimiter
// will grow the buffer without bound.
type LineAssembler struct {
	buf    []byte
	synced bool
}

// Synced returns true once the first delimiter has been seen.
func (a *LineAssembler) Synced() bool {
	return a.synced
}

// Buffered returns the number of bytes held waiting for a delimiter.
func (a *LineAssembler) Buffered() int {
	return len(a.buf)
}

// Feed appends chunk to the buffer and returns every line it completes, in
// order and without their delimiters.
func (a *LineAssembler) Feed(chunk []byte) []string {
	a.buf = append(a.buf, chunk...)

	if !a.synced {
		i := bytes.Index(a.buf, Terminal)
		if i < 0 {
			// Keep a trailing '\r' in case the '\n' arrives in the next chunk
			if n := len(a.buf); n > 0 && a.buf[n-1] == '\r' {
				a.buf = append(a.buf[:0], '\r')
			} else {
				a.buf = a.buf[:0]
			}
			return nil
		}

		a.buf = a.buf[i+len(Terminal):]
		a.synced = true
	}

	var lines []string
	for {
		i := bytes.Index(a.buf, Terminal)
		if i < 0 {
			break
		}

		lines = append(lines, string(a.buf[:i]))
		a.buf = a.buf[i+len(Terminal):]
	}

	// Move the partial line to the front so the buffer does not creep
	// forward through its backing array
	if len(a.buf) == 0 {
		a.buf = nil
	} else if len(lines) > 0 {
		a.buf = append([]byte(nil), a.buf...)
	}

	return lines
}
