package transport

import (
	"time"

	"go.uber.org/zap"

	"github.com/luma/boingscope/device"
)

// Options select the transport used to reach a device. Device takes
// precedence over Addr.
type Options struct {
	// Device is a serial port, e.g. /dev/ttyACM0
	Device string

	// Baud rate for Device. USB CDC devices ignore it.
	Baud int

	// Addr is the host:port of a TCP serial bridge, such as ser2net or
	// `boingscope emulate`
	Addr string

	DialTimeout time.Duration

	Log *zap.Logger
}

type ServerOptions struct {
	// Host to listen on
	Host string

	// Port to listen on
	Port int

	// Reuseport controls setting SO_REUSEPORT
	Reuseport bool

	// Scene the emulated device displays
	Scene device.Scene

	// Interval between palette steps
	Interval time.Duration

	Log *zap.Logger
}
