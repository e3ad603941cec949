package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/boingscope/device"
	"github.com/luma/boingscope/internal/env"
	"github.com/luma/boingscope/transport"
)

var (
	// The host the emulated device listens on
	emulateHost string

	// The port the emulated device listens on
	emulatePort int

	// An image to show instead of the checkerboard
	picture string

	// Time between palette steps
	interval time.Duration
)

func init() {
	flags := EmulateCmd.PersistentFlags()

	flags.StringVar(&emulateHost, "host", "127.0.0.1", "The host to listen on")
	flags.IntVarP(&emulatePort, "port", "p", 7363, "The port to listen for a viewer on")
	flags.StringVarP(&picture, "image", "i", "", "Show this GIF, JPEG or PNG instead of the checkerboard")
	flags.DurationVar(&interval, "interval", device.DefaultInterval, "Time between palette steps, 0 disables cycling")
}

var EmulateCmd = &cobra.Command{
	Use:   "emulate",
	Short: "Pretend to be a device, serving its display over TCP",
	Long: `Pretend to be a device, serving its display over TCP

Usage
	boingscope emulate --port 7363
	boingscope view --addr 127.0.0.1:7363

The emulated device streams a colour cycling checkerboard, or a still image
reduced to 16 colours.
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

		var scene device.Scene = device.NewBoing()
		if picture != "" {
			if scene, err = device.LoadPicture(picture); err != nil {
				return err
			}
			log.Info("Loaded image", zap.String("image", picture))
		}

		server := transport.NewServer(transport.ServerOptions{
			Host:      emulateHost,
			Port:      emulatePort,
			Reuseport: true,
			Scene:     scene,
			Interval:  interval,
			Log:       log.Named("emulator"),
		})

		if err := server.Listen(); err != nil {
			return err
		}

		if err := server.Serve(ctx); err != nil {
			return err
		}

		log.Info("Exiting")
		return nil
	},
}
