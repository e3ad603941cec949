package client

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luma/boingscope/internal/metrics"
	"github.com/luma/boingscope/protocol"
	"github.com/luma/boingscope/storage"
)

const (
	// ReadBufferSize is the largest chunk handed to the decoder at once
	ReadBufferSize = 4096
)

type Options struct {
	Sink    protocol.RasterSink
	Status  storage.Store
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

// Conn is a viewer connection to a device. It owns the decoder for the
// lifetime of the connection.
type Conn struct {
	id string

	rw      io.ReadWriteCloser
	decoder *protocol.Decoder

	closeOnce sync.Once
	closeErr  error

	status  storage.Store
	metrics *metrics.Metrics
	log     *zap.Logger
}

// New wraps an open transport. The connection takes ownership of rw and
// closes it when Run returns.
func New(rw io.ReadWriteCloser, options Options) *Conn {
	id := uuid.New().String()

	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("session", id))

	return &Conn{
		id: id,
		rw: rw,
		decoder: protocol.NewDecoder(protocol.Options{
			Sink:    options.Sink,
			Status:  options.Status,
			Metrics: options.Metrics,
			Log:     log.Named("decoder"),
		}),
		status:  options.Status,
		metrics: options.Metrics,
		log:     log,
	}
}

// ID identifies the connection in logs and the status document.
func (c *Conn) ID() string {
	return c.id
}

// Decoder returns the connection's decoder. It must not be used while Run
// is executing.
func (c *Conn) Decoder() *protocol.Decoder {
	return c.decoder
}

// Run wakes the device and feeds everything it sends to the decoder until
// the transport reaches EOF, fails, or ctx is cancelled. Losing the
// transport is the normal way for a connection to end so only a failure to
// wake the device is returned as an error.
func (c *Conn) Run(ctx context.Context) error {
	log := c.log.Named("readLoop")

	disconnected := c.metrics.Connected()
	defer disconnected()

	c.record(storage.KeySession, c.id)
	c.record(storage.KeyConnected, true)
	defer c.record(storage.KeyConnected, false)

	// Closing the transport is the only way to unblock a pending read
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			log.Info("Context cancelled, closing transport")
			c.Close()
		case <-stop:
		}
	}()

	defer func() {
		if err := c.Close(); err != nil {
			log.Warn("Transport did not close cleanly", zap.Error(err))
		}
		log.Info("Read loop exited")
	}()

	if err := protocol.WriteWakeup(c.rw); err != nil {
		return err
	}

	log.Info("Sent wakeup, reading")

	buf := make([]byte, ReadBufferSize)
	for {
		n, err := c.rw.Read(buf)
		if n > 0 {
			// Decoder.Write never fails
			_, _ = c.decoder.Write(buf[:n])
		}

		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				log.Info("Device closed the connection")
			case ctx.Err() != nil, errors.Is(err, os.ErrClosed):
				log.Info("Transport closed")
			default:
				log.Warn("Failed to read from device", zap.Error(err))
			}
			return nil
		}
	}
}

// Close closes the transport. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.rw.Close()
	})

	return c.closeErr
}

func (c *Conn) record(key []byte, value interface{}) {
	if c.status == nil {
		return
	}

	if err := c.status.Set(context.Background(), key, value); err != nil {
		c.log.Debug("Failed to record status", zap.ByteString("key", key), zap.Error(err))
	}
}
