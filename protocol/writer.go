package protocol

import (
	"bytes"
	"encoding/base64"
	"io"
)

// PayloadStride is the number of raw bytes encoded on each payload line.
// 60 bytes encode to exactly 80 base64 characters without padding.
const PayloadStride = 60

// WriteWakeup writes the single byte a viewer sends when it connects.
func WriteWakeup(w io.Writer) error {
	_, err := w.Write([]byte{Wakeup})
	return err
}

// WriteString writes s as a single line.
func WriteString(w io.Writer, s string) error {
	b := append([]byte(s), Terminal...)
	_, err := w.Write(b)
	return err
}

// WriteLines writes each of ss as a line, in one call to w.Write.
func WriteLines(w io.Writer, ss ...[]byte) error {
	if len(ss) == 0 {
		return nil
	}

	b := bytes.Join(ss, Terminal)
	b = append(b, Terminal...)

	_, err := w.Write(b)
	return err
}

// WriteBlock writes data as a base64 block of type blockType. The block is
// preceded by an empty line so the BEGIN marker always starts a fresh line,
// even if the previous output was left unterminated.
func WriteBlock(w io.Writer, blockType BlockType, data []byte) error {
	lines := make([][]byte, 0, len(data)/PayloadStride+4)
	lines = append(lines, nil, []byte(blockType.Begin()))

	for i := 0; i < len(data); i += PayloadStride {
		end := i + PayloadStride
		if end > len(data) {
			end = len(data)
		}

		line := make([]byte, base64.StdEncoding.EncodedLen(end-i))
		base64.StdEncoding.Encode(line, data[i:end])
		lines = append(lines, line)
	}

	lines = append(lines, []byte(blockType.End()))

	return WriteLines(w, lines...)
}
