package protocol

type Marker string

const (
	BeginFrame   Marker = "-----BEGIN FRAME-----"
	EndFrame     Marker = "-----END FRAME-----"
	BeginPalette Marker = "-----BEGIN PALETTE-----"
	EndPalette   Marker = "-----END PALETTE-----"
)

// BlockType names the payload carried between a pair of markers.
type BlockType string

const (
	BlockFrame   BlockType = "FRAME"
	BlockPalette BlockType = "PALETTE"
)

// Begin returns the marker that opens a block of type b.
func (b BlockType) Begin() Marker {
	return Marker("-----BEGIN " + string(b) + "-----")
}

// End returns the marker that closes a block of type b.
func (b BlockType) End() Marker {
	return Marker("-----END " + string(b) + "-----")
}

type State int

const (
	Idle State = iota
	BufferingFrame
	BufferingPalette
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case BufferingFrame:
		return "buffering frame"
	case BufferingPalette:
		return "buffering palette"
	default:
		return "unknown"
	}
}

const (
	// PrefixMemFree starts the free memory diagnostic line
	PrefixMemFree = "mem_free "

	// Wakeup is written by the viewer when it connects
	Wakeup byte = '\n'
)
