package protocol

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBadPayload = errors.New("Block payload is not valid base64")
)

// DecodePayload joins the buffered base64 lines of a block, without
// separators, and decodes them.
func DecodePayload(lines []string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(strings.Join(lines, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	return data, nil
}
