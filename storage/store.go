package storage

import "context"

// Store holds the status document describing the current device session.
// Keys are gjson/sjson paths.
type Store interface {
	Set(ctx context.Context, key []byte, value interface{}) error
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Incr adds one to the integer at key, treating a missing key as 0, and
	// returns the new value.
	Incr(ctx context.Context, key []byte) (int64, error)

	Restore(values []byte) error
	Backup() ([]byte, error)

	Close() error
}

// Status document keys
var (
	KeyConnected       = []byte("connected")
	KeySession         = []byte("session")
	KeyMemFree         = []byte("memFree")
	KeyLastDiagnostic  = []byte("lastDiagnostic")
	KeyFramesDecoded   = []byte("framesDecoded")
	KeyPalettesDecoded = []byte("palettesDecoded")
	KeyPaletteSize     = []byte("paletteSize")
	KeyDecodeErrors    = []byte("decodeErrors")
	KeyLastError       = []byte("lastError")
)
