package protocol

import (
	"context"
	"image"
	"strings"

	"go.uber.org/zap"

	"github.com/luma/boingscope/internal/metrics"
	"github.com/luma/boingscope/pixel"
	"github.com/luma/boingscope/storage"
)

// RasterSink receives every raster the decoder paints. The sink owns the
// raster once Paint is called.
type RasterSink interface {
	Paint(m *image.RGBA)
}

// RasterSinkFunc adapts a func to a RasterSink.
type RasterSinkFunc func(m *image.RGBA)

func (f RasterSinkFunc) Paint(m *image.RGBA) {
	f(m)
}

type Options struct {
	// Sink receives painted rasters. Optional.
	Sink RasterSink

	// Status records diagnostics and counters. Optional.
	Status storage.Store

	// Metrics is optional.
	Metrics *metrics.Metrics

	Log *zap.Logger
}

// Decoder is the viewer side of the protocol. It turns the raw byte stream
// of one connection into rasters.
//
// A Decoder holds the state of a single connection and must be discarded
// when the connection ends. It is not safe for concurrent use, the read loop
// that owns it should be the only caller.
type Decoder struct {
	lines LineAssembler
	state State

	// payload holds the base64 lines of the block being buffered
	payload []string

	// frame is the last frame received, nil until the first one arrives
	frame   []byte
	palette pixel.Palette

	lastMemFree string

	sink    RasterSink
	status  storage.Store
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewDecoder(options Options) *Decoder {
	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &Decoder{
		state:   Idle,
		palette: pixel.DefaultPalette(),
		sink:    options.Sink,
		status:  options.Status,
		metrics: options.Metrics,
		log:     log,
	}
}

// Write feeds a chunk read from the transport to the decoder. Every line the
// chunk completes is handled before Write returns. Protocol errors are
// logged and recovered from, so Write never fails.
func (d *Decoder) Write(chunk []byte) (int, error) {
	d.metrics.AddBytes(len(chunk))

	wasSynced := d.lines.Synced()
	lines := d.lines.Feed(chunk)

	if !wasSynced && d.lines.Synced() {
		d.log.Debug("Line sync acquired")
	}

	d.metrics.AddLines(len(lines))

	for _, line := range lines {
		d.HandleLine(line)
	}

	return len(chunk), nil
}

// HandleLine advances the state machine by one complete line.
func (d *Decoder) HandleLine(line string) {
	switch d.state {
	case BufferingFrame:
		if line == string(EndFrame) {
			d.finishFrame()
			return
		}
		d.payload = append(d.payload, line)

	case BufferingPalette:
		if line == string(EndPalette) {
			d.finishPalette()
			return
		}
		d.payload = append(d.payload, line)

	default:
		d.handleIdle(line)
	}
}

func (d *Decoder) handleIdle(line string) {
	switch {
	case line == string(BeginFrame):
		d.begin(BufferingFrame)

	case line == string(BeginPalette):
		d.begin(BufferingPalette)

	case strings.HasPrefix(line, PrefixMemFree):
		if line == d.lastMemFree {
			return
		}
		d.lastMemFree = line
		d.diagnostic(line)
		d.record(storage.KeyMemFree, strings.TrimPrefix(line, PrefixMemFree))

	case line == "":
		// ignored

	default:
		d.diagnostic(line)
		d.record(storage.KeyLastDiagnostic, line)
	}
}

func (d *Decoder) begin(state State) {
	d.state = state
	d.payload = d.payload[:0]
}

func (d *Decoder) finishFrame() {
	defer d.reset()

	frame, err := DecodePayload(d.payload)
	if err != nil {
		d.fail(BlockFrame, "bad frame", err)
		return
	}

	d.frame = frame
	d.metrics.Block(string(BlockFrame), metrics.ResultOk)
	d.incr(storage.KeyFramesDecoded)

	if len(frame) < pixel.FrameBytes {
		d.log.Debug("Short frame", zap.Int("bytes", len(frame)), zap.Int("want", pixel.FrameBytes))
	}

	d.paint()
}

func (d *Decoder) finishPalette() {
	defer d.reset()

	data, err := DecodePayload(d.payload)
	if err != nil {
		d.fail(BlockPalette, "bad palette", err)
		return
	}

	d.palette = pixel.NewPalette(data)
	d.metrics.Block(string(BlockPalette), metrics.ResultOk)
	d.incr(storage.KeyPalettesDecoded)
	d.record(storage.KeyPaletteSize, len(d.palette))

	if d.frame == nil {
		d.log.Info("Palette received before any frame", zap.Int("colors", len(d.palette)))
		return
	}

	d.paint()
}

func (d *Decoder) paint() {
	m := pixel.Unpack(d.frame, d.palette)
	d.metrics.Paint()

	if d.sink != nil {
		d.sink.Paint(m)
	}
}

func (d *Decoder) reset() {
	d.state = Idle
	d.payload = d.payload[:0]
}

func (d *Decoder) fail(blockType BlockType, msg string, err error) {
	d.log.Warn(msg, zap.Int("lines", len(d.payload)), zap.Error(err))
	d.metrics.Block(string(blockType), metrics.ResultError)
	d.incr(storage.KeyDecodeErrors)
	d.record(storage.KeyLastError, msg+": "+err.Error())
}

func (d *Decoder) diagnostic(line string) {
	d.log.Info("Device", zap.String("line", line))
	d.metrics.Diagnostic()
}

func (d *Decoder) record(key []byte, value interface{}) {
	if d.status == nil {
		return
	}

	if err := d.status.Set(context.Background(), key, value); err != nil {
		d.log.Debug("Failed to record status", zap.ByteString("key", key), zap.Error(err))
	}
}

func (d *Decoder) incr(key []byte) {
	if d.status == nil {
		return
	}

	if _, err := d.status.Incr(context.Background(), key); err != nil {
		d.log.Debug("Failed to record status", zap.ByteString("key", key), zap.Error(err))
	}
}

// State returns the current state of the state machine.
func (d *Decoder) State() State {
	return d.state
}

// Synced returns true once the line assembler has found a line boundary.
func (d *Decoder) Synced() bool {
	return d.lines.Synced()
}

// Palette returns the current palette.
func (d *Decoder) Palette() pixel.Palette {
	return d.palette
}

// Frame returns the last frame received, or nil.
func (d *Decoder) Frame() []byte {
	return d.frame
}
