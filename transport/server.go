package transport

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"

	reuseport "github.com/kavu/go_reuseport"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/boingscope/device"
)

var (
	ErrNotListening = errors.New("Server is not listening")
)

// Server exposes an emulated device over TCP, standing in for a serial
// bridge. It serves one viewer at a time, later viewers wait in the accept
// queue until the current one disconnects.
type Server struct {
	addr      string
	reuseport bool

	options ServerOptions

	mu       sync.Mutex
	listener net.Listener
	active   net.Conn
	closed   bool

	log *zap.Logger
}

func NewServer(options ServerOptions) *Server {
	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	if options.Scene == nil {
		options.Scene = device.NewBoing()
	}

	return &Server{
		addr:      net.JoinHostPort(options.Host, strconv.Itoa(options.Port)),
		reuseport: options.Reuseport,
		options:   options,
		log:       log,
	}
}

// Listen binds the listening socket. Use Addr to find the port when
// listening on port 0.
func (s *Server) Listen() error {
	var (
		listener net.Listener
		err      error
	)

	if s.reuseport {
		listener, err = reuseport.Listen("tcp", s.addr)
	} else {
		listener, err = net.Listen("tcp", s.addr)
	}

	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.log.Info("Emulated device listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Addr returns the address the server is listening on, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}

// Serve accepts viewers until ctx is cancelled or Close is called.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()

	if listener == nil {
		return ErrNotListening
	}

	go func() {
		<-ctx.Done()

		if err := s.Close(); err != nil {
			s.log.Warn("Server did not close cleanly", zap.Error(err))
		}
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				// Closed while we were waiting for a viewer, that's fine
				s.log.Info("Stopped accepting viewers")
				return nil
			}

			return err
		}

		if !s.setActive(conn) {
			conn.Close()
			return nil
		}

		s.serveConn(ctx, conn)
		s.setActive(nil)
	}
}

func (s *Server) serveConn(parentCtx context.Context, conn net.Conn) {
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	log := s.log.Named("conn").With(zap.String("remote", conn.RemoteAddr().String()))
	log.Info("Viewer connected")

	var readWaiter sync.WaitGroup
	wake := make(chan struct{}, 1)

	readWaiter.Add(1)
	go func() {
		defer readWaiter.Done()
		defer cancel()

		// Any byte from the viewer wakes the device
		buf := make([]byte, 64)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				select {
				case wake <- struct{}{}:
				default:
				}
			}

			if err != nil {
				log.Info("Viewer read loop exiting", zap.Error(err))
				return
			}
		}
	}()

	producer := device.NewProducer(conn, device.ProducerOptions{
		Scene:    s.options.Scene,
		Interval: s.options.Interval,
		Log:      log.Named("producer"),
	})

	if err := producer.Run(ctx, wake); err != nil {
		log.Warn("Failed to write to viewer", zap.Error(err))
	}

	if err := conn.Close(); err != nil {
		log.Debug("Viewer connection did not close cleanly", zap.Error(err))
	}

	readWaiter.Wait()
	log.Info("Viewer disconnected")
}

func (s *Server) setActive(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed && conn != nil {
		return false
	}

	s.active = conn
	return true
}

// Close stops the listener and disconnects the current viewer.
func (s *Server) Close() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.log.Info("Stopping emulated device")

	if s.listener != nil {
		err = multierr.Append(err, s.listener.Close())
	}

	if s.active != nil {
		err = multierr.Append(err, s.active.Close())
	}

	return err
}
