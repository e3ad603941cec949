package device

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/luma/boingscope/pixel"
	"github.com/luma/boingscope/protocol"
)

const DefaultInterval = 100 * time.Millisecond

type ProducerOptions struct {
	Scene Scene

	// Interval between palette steps. Zero or less disables cycling.
	Interval time.Duration

	// MemFree reports the free memory figure printed as a diagnostic.
	// Defaults to the Go runtime's idle heap.
	MemFree func() uint64

	Log *zap.Logger
}

// Producer plays the device side of a connection: it waits to be woken,
// then sends a frame and palette and keeps cycling the palette.
type Producer struct {
	w        io.Writer
	scene    Scene
	interval time.Duration
	memFree  func() uint64
	log      *zap.Logger

	step int
}

func NewProducer(w io.Writer, options ProducerOptions) *Producer {
	scene := options.Scene
	if scene == nil {
		scene = NewBoing()
	}

	memFree := options.MemFree
	if memFree == nil {
		memFree = heapIdle
	}

	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &Producer{
		w:        w,
		scene:    scene,
		interval: options.Interval,
		memFree:  memFree,
		log:      log,
	}
}

// Run waits for the first wakeup, then streams until ctx is cancelled, wake
// is closed or a write fails. Every later wakeup resends the full frame.
func (p *Producer) Run(ctx context.Context, wake <-chan struct{}) error {
	select {
	case <-ctx.Done():
		return nil
	case _, ok := <-wake:
		if !ok {
			return nil
		}
	}

	p.log.Info("Woken, sending first frame")

	if err := p.SendBanner(); err != nil {
		return err
	}

	if err := p.SendAll(); err != nil {
		return err
	}

	var tick <-chan time.Time
	if p.interval > 0 {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case _, ok := <-wake:
			if !ok {
				return nil
			}

			p.log.Debug("Woken, resending frame")
			if err := p.SendAll(); err != nil {
				return err
			}

		case <-tick:
			p.step = (p.step + 1) % Steps
			if err := p.SendPalette(); err != nil {
				return err
			}
			if err := p.SendMemFree(); err != nil {
				return err
			}
		}
	}
}

// SendBanner prints the display geometry the way the device does on boot.
func (p *Producer) SendBanner() error {
	return protocol.WriteLines(p.w,
		[]byte(fmt.Sprintf("display size %d %d", pixel.CanvasWidth, pixel.CanvasHeight)),
		[]byte(fmt.Sprintf("bits per pixel %d", pixel.BitsPerPixel)),
	)
}

// SendAll sends the frame, the current palette and a memory report.
func (p *Producer) SendAll() error {
	if err := p.SendFrame(); err != nil {
		return err
	}

	if err := p.SendPalette(); err != nil {
		return err
	}

	return p.SendMemFree()
}

func (p *Producer) SendFrame() error {
	return protocol.WriteBlock(p.w, protocol.BlockFrame, p.scene.Frame())
}

func (p *Producer) SendPalette() error {
	return protocol.WriteBlock(p.w, protocol.BlockPalette, p.scene.Palette(p.step).Bytes())
}

func (p *Producer) SendMemFree() error {
	return protocol.WriteString(p.w, fmt.Sprintf("%s%d", protocol.PrefixMemFree, p.memFree()))
}

func heapIdle() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapIdle
}
