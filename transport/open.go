package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

const (
	DefaultBaud        = 115200
	DefaultDialTimeout = 5 * time.Second
)

var (
	ErrNoTransport = errors.New("No serial device or TCP address configured")
)

// Open connects to the device described by options.
func Open(ctx context.Context, options Options) (io.ReadWriteCloser, error) {
	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	switch {
	case options.Device != "":
		baud := options.Baud
		if baud <= 0 {
			baud = DefaultBaud
		}

		log.Info("Opening serial device", zap.String("device", options.Device), zap.Int("baud", baud))
		return OpenSerial(options.Device, baud)

	case options.Addr != "":
		timeout := options.DialTimeout
		if timeout <= 0 {
			timeout = DefaultDialTimeout
		}

		log.Info("Dialing device", zap.String("addr", options.Addr))
		return Dial(ctx, options.Addr, timeout)

	default:
		return nil, ErrNoTransport
	}
}

// OpenSerial opens a serial port in 8N1 mode.
func OpenSerial(device string, baud int) (io.ReadWriteCloser, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("Failed to open %s: %w", device, err)
	}

	return port, nil
}

// ListPorts returns the serial ports present on this machine.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}

// Dial connects to a TCP serial bridge.
func Dial(ctx context.Context, addr string, timeout time.Duration) (io.ReadWriteCloser, error) {
	dialer := net.Dialer{Timeout: timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("Failed to dial %s: %w", addr, err)
	}

	return conn, nil
}
