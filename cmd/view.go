package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/boingscope/client"
	"github.com/luma/boingscope/internal/env"
	"github.com/luma/boingscope/internal/metrics"
	"github.com/luma/boingscope/storage"
	"github.com/luma/boingscope/transport"
	"github.com/luma/boingscope/viewer"
)

var (
	// The serial device to read from
	serialDevice string

	// Baud rate of the serial device
	baud int

	// A TCP serial bridge to read from instead of a serial device
	addr string

	// The address to serve the viewer on
	httpAddr string

	// Reopen the transport after the device disconnects
	reconnect bool

	// How long to wait between reconnection attempts
	reconnectDelay time.Duration
)

func init() {
	flags := ViewCmd.PersistentFlags()

	flags.StringVarP(&serialDevice, "device", "d", "", "The serial device the microcontroller is attached to")
	flags.IntVarP(&baud, "baud", "b", transport.DefaultBaud, "The serial baud rate")
	flags.StringVarP(&addr, "addr", "a", "", "Read from a TCP serial bridge at host:port instead of a serial device")
	flags.StringVar(&httpAddr, "http-addr", "127.0.0.1:7362", "The address to serve the viewer on")
	flags.BoolVarP(&reconnect, "reconnect", "r", false, "Reconnect when the device goes away")
	flags.DurationVar(&reconnectDelay, "reconnect-delay", 2*time.Second, "How long to wait between reconnection attempts")
}

var ViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Decode a device's display and serve it over HTTP",
	Long: `Decode a device's display and serve it over HTTP

Usage
	boingscope view --device /dev/ttyACM0
	boingscope view --addr 127.0.0.1:7363

The latest frame is served at /frame.png, the session status at /status and
metrics at /metrics.
`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer signalStop()

		conf, err := env.LoadConfig(ctx)
		if err != nil {
			return err
		}

		log, err := env.MakeLogger(conf.LogLevel)
		if err != nil {
			return err
		}
		defer log.Sync()

		flags := cmd.Flags()
		if !flags.Changed("device") {
			serialDevice = conf.Device
		}
		if !flags.Changed("baud") {
			baud = conf.Baud
		}
		if !flags.Changed("addr") {
			addr = conf.Addr
		}
		if !flags.Changed("http-addr") {
			httpAddr = conf.HTTPAddr
		}

		status := storage.NewInmemoryStore()
		defer status.Close()

		registry := prometheus.NewRegistry()
		m := metrics.New(registry, metrics.DefaultNamespace)

		v := viewer.New()

		router := viewer.NewRouter(viewer.RouterOptions{
			Viewer:   v,
			Status:   status,
			Gatherer: registry,
			Debug:    conf.DebugHTTP,
			Log:      log.Named("http"),
		})

		s := &http.Server{
			Addr:    httpAddr,
			Handler: router,
		}

		// Initializing the server in a goroutine so that
		// it won't block reading from the device
		go func() {
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Http server errored", zap.Error(err))
			}
		}()

		log.Info("Viewer listening", zap.String("httpAddr", httpAddr))

		options := transport.Options{
			Device: serialDevice,
			Baud:   baud,
			Addr:   addr,
			Log:    log.Named("transport"),
		}

		runErr := runSessions(ctx, options, client.Options{
			Sink:    v,
			Status:  status,
			Metrics: m,
			Log:     log.Named("client"),
		}, log)

		// Restore default behavior on the interrupt signal and notify user of shutdown.
		signalStop()
		log.Info("Shutting down gracefully, press Ctrl+C again to force")

		// The context is used to inform the server it has 5 seconds to finish
		// the request it is currently handling
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.SetKeepAlivesEnabled(false)

		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Error("Http server forced to shutdown", zap.Error(err))
		}

		log.Info("Exiting")
		return runErr
	},
}

// runSessions connects to the device and reads from it until the connection
// ends. With --reconnect it keeps opening fresh connections until ctx is
// cancelled. Each connection gets its own decoder, nothing carries over.
func runSessions(ctx context.Context, options transport.Options, clientOptions client.Options, log *zap.Logger) error {
	for {
		rw, err := transport.Open(ctx, options)
		if err != nil {
			if errors.Is(err, transport.ErrNoTransport) || !reconnect {
				return err
			}

			log.Warn("Failed to open device, retrying", zap.Error(err), zap.Duration("delay", reconnectDelay))
		} else {
			conn := client.New(rw, clientOptions)
			log.Info("Connected", zap.String("session", conn.ID()))

			if err := conn.Run(ctx); err != nil {
				log.Warn("Session failed", zap.String("session", conn.ID()), zap.Error(err))
			}
		}

		if !reconnect || ctx.Err() != nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}
