package protocol_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/luma/boingscope/internal/metrics"
	"github.com/luma/boingscope/pixel"
	"github.com/luma/boingscope/protocol"
	"github.com/luma/boingscope/storage"
)

type recordingSink struct {
	rasters []*image.RGBA
}

func (r *recordingSink) Paint(m *image.RGBA) {
	r.rasters = append(r.rasters, m)
}

// feed sends lines to the decoder as a single synced chunk.
func feed(d *protocol.Decoder, lines ...string) {
	_, err := d.Write([]byte("\r\n" + strings.Join(lines, "\r\n") + "\r\n"))
	Expect(err).To(Succeed())
}

func b64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func deviceLines(logs *observer.ObservedLogs) []string {
	var lines []string
	for _, entry := range logs.FilterMessage("Device").All() {
		lines = append(lines, entry.ContextMap()["line"].(string))
	}
	return lines
}

func isSolid(m *image.RGBA, c []byte) bool {
	for i := 0; i < len(m.Pix); i += 4 {
		if !bytes.Equal(m.Pix[i:i+4], c) {
			return false
		}
	}
	return true
}

var _ = Describe("Decoder", func() {
	var (
		sink    *recordingSink
		logs    *observer.ObservedLogs
		status  *storage.InmemoryStore
		m       *metrics.Metrics
		decoder *protocol.Decoder
	)

	BeforeEach(func() {
		var core zapcore.Core
		core, logs = observer.New(zap.DebugLevel)

		sink = &recordingSink{}
		status = storage.NewInmemoryStore()
		m = metrics.New(prometheus.NewRegistry(), "")

		decoder = protocol.NewDecoder(protocol.Options{
			Sink:    sink,
			Status:  status,
			Metrics: m,
			Log:     zap.New(core),
		})
	})

	AfterEach(func() {
		status.Close()
	})

	It("starts idle with an all black palette", func() {
		Expect(decoder.State()).To(Equal(protocol.Idle))
		Expect(decoder.Palette()).To(Equal(pixel.DefaultPalette()))
		Expect(decoder.Frame()).To(BeNil())
		Expect(decoder.Synced()).To(BeFalse())
	})

	It("builds a palette without painting when no frame has arrived", func() {
		feed(decoder,
			"noise",
			string(protocol.BeginPalette),
			b64([]byte{0, 0, 0, 0xff, 0xff, 0xff}),
			string(protocol.EndPalette),
		)

		Expect(decoder.Palette()).To(Equal(pixel.Palette{0x000000, 0xffffff}))
		Expect(decoder.State()).To(Equal(protocol.Idle))
		Expect(sink.rasters).To(BeEmpty())
		Expect(deviceLines(logs)).To(Equal([]string{"noise"}))
		Expect(logs.FilterMessage("Palette received before any frame").Len()).To(Equal(1))
	})

	It("paints a frame against the current palette", func() {
		feed(decoder,
			string(protocol.BeginPalette),
			b64([]byte{0, 0, 0, 0xff, 0xff, 0xff}),
			string(protocol.EndPalette),
			string(protocol.BeginFrame),
			b64(make([]byte, pixel.FrameBytes)),
			string(protocol.EndFrame),
		)

		Expect(sink.rasters).To(HaveLen(1))
		raster := sink.rasters[0]
		Expect(raster.Bounds()).To(Equal(image.Rect(0, 0, pixel.CanvasWidth, pixel.CanvasHeight)))
		Expect(isSolid(raster, []byte{0, 0, 0, 0xff})).To(BeTrue())
		Expect(decoder.Frame()).To(HaveLen(pixel.FrameBytes))
	})

	It("joins payload lines without separators", func() {
		frame := make([]byte, pixel.FrameBytes)
		for i := range frame {
			frame[i] = 0x11
		}

		lines := []string{string(protocol.BeginPalette), b64([]byte{0, 0, 0, 0xff, 0, 0}), string(protocol.EndPalette)}
		lines = append(lines, string(protocol.BeginFrame))
		for i := 0; i < len(frame); i += protocol.PayloadStride {
			end := i + protocol.PayloadStride
			if end > len(frame) {
				end = len(frame)
			}
			lines = append(lines, b64(frame[i:end]))
		}
		lines = append(lines, string(protocol.EndFrame))

		feed(decoder, lines...)

		Expect(sink.rasters).To(HaveLen(1))
		Expect(isSolid(sink.rasters[0], []byte{0xff, 0, 0, 0xff})).To(BeTrue())
	})

	It("uses the default black palette when a frame arrives first", func() {
		frame := bytes.Repeat([]byte{0xff}, pixel.FrameBytes)
		feed(decoder, string(protocol.BeginFrame), b64(frame), string(protocol.EndFrame))

		Expect(sink.rasters).To(HaveLen(1))
		Expect(isSolid(sink.rasters[0], []byte{0, 0, 0, 0xff})).To(BeTrue())
	})

	It("repaints the last frame when only the palette changes", func() {
		frame := bytes.Repeat([]byte{0x11}, pixel.FrameBytes)
		feed(decoder,
			string(protocol.BeginPalette), b64([]byte{0, 0, 0, 0xff, 0, 0}), string(protocol.EndPalette),
			string(protocol.BeginFrame), b64(frame), string(protocol.EndFrame),
			string(protocol.BeginPalette), b64([]byte{0, 0, 0, 0, 0xff, 0}), string(protocol.EndPalette),
		)

		Expect(sink.rasters).To(HaveLen(2))
		Expect(isSolid(sink.rasters[0], []byte{0xff, 0, 0, 0xff})).To(BeTrue())
		Expect(isSolid(sink.rasters[1], []byte{0, 0xff, 0, 0xff})).To(BeTrue())
	})

	It("paints what it can of a short frame", func() {
		feed(decoder,
			string(protocol.BeginPalette), b64([]byte{0, 0, 0, 0xff, 0xff, 0xff}), string(protocol.EndPalette),
			string(protocol.BeginFrame), b64([]byte{0x11, 0x11, 0x11, 0x11, 0x11}), string(protocol.EndFrame),
		)

		Expect(sink.rasters).To(HaveLen(1))
		pix := sink.rasters[0].Pix
		Expect(pix[:8*4]).To(Equal(bytes.Repeat([]byte{0xff, 0xff, 0xff, 0xff}, 8)))
		Expect(pix[8*4 : 9*4]).To(Equal([]byte{0, 0, 0, 0xff}))
	})

	Describe("decode failures", func() {
		It("drops a bad frame and recovers", func() {
			feed(decoder,
				string(protocol.BeginFrame), "not base64!", string(protocol.EndFrame),
				"after",
			)

			Expect(decoder.State()).To(Equal(protocol.Idle))
			Expect(decoder.Frame()).To(BeNil())
			Expect(sink.rasters).To(BeEmpty())
			Expect(logs.FilterMessage("bad frame").Len()).To(Equal(1))
			Expect(deviceLines(logs)).To(Equal([]string{"after"}))

			Expect(testutil.ToFloat64(m.Blocks().WithLabelValues("FRAME", metrics.ResultError))).To(Equal(1.0))
			Expect(status.Get(context.Background(), storage.KeyDecodeErrors)).To(Equal([]byte(`1`)))

			feed(decoder, string(protocol.BeginFrame), b64(make([]byte, 8)), string(protocol.EndFrame))
			Expect(sink.rasters).To(HaveLen(1))
		})

		It("drops a bad palette and keeps the old one", func() {
			feed(decoder,
				string(protocol.BeginPalette), b64([]byte{1, 2, 3}), string(protocol.EndPalette),
				string(protocol.BeginPalette), "AAA", string(protocol.EndPalette),
			)

			Expect(decoder.State()).To(Equal(protocol.Idle))
			Expect(decoder.Palette()).To(Equal(pixel.Palette{0x010203}))
			Expect(logs.FilterMessage("bad palette").Len()).To(Equal(1))
		})

		It("treats a marker inside a block as payload", func() {
			feed(decoder,
				string(protocol.BeginFrame), string(protocol.BeginPalette), string(protocol.EndFrame),
			)

			Expect(logs.FilterMessage("bad frame").Len()).To(Equal(1))
			Expect(decoder.State()).To(Equal(protocol.Idle))
		})
	})

	Describe("diagnostics", func() {
		It("only logs mem_free when it changes", func() {
			feed(decoder,
				"mem_free 19504",
				"mem_free 19504",
				"mem_free 18000",
				"mem_free 18000",
				"mem_free 19504",
			)

			Expect(deviceLines(logs)).To(Equal([]string{"mem_free 19504", "mem_free 18000", "mem_free 19504"}))
			Expect(status.Get(context.Background(), storage.KeyMemFree)).To(Equal([]byte(`"19504"`)))
		})

		It("ignores empty lines", func() {
			feed(decoder, "", "", "display size 160 128", "")

			Expect(deviceLines(logs)).To(Equal([]string{"display size 160 128"}))
			Expect(status.Get(context.Background(), storage.KeyLastDiagnostic)).To(Equal([]byte(`"display size 160 128"`)))
		})

		It("does not log payload lines", func() {
			feed(decoder, string(protocol.BeginPalette), "AAAA", string(protocol.EndPalette))

			Expect(deviceLines(logs)).To(BeEmpty())
		})
	})

	It("tracks the state while buffering", func() {
		feed(decoder, string(protocol.BeginFrame))
		Expect(decoder.State()).To(Equal(protocol.BufferingFrame))

		feed(decoder, "AAAA", string(protocol.EndFrame), string(protocol.BeginPalette))
		Expect(decoder.State()).To(Equal(protocol.BufferingPalette))
	})

	It("discards a truncated first line", func() {
		_, err := decoder.Write([]byte("----END FRAME-----\r\n" + string(protocol.BeginPalette) + "\r\nAAAA////\r\n"))
		Expect(err).To(Succeed())
		_, err = decoder.Write([]byte(string(protocol.EndPalette) + "\r\n"))
		Expect(err).To(Succeed())

		Expect(decoder.Synced()).To(BeTrue())
		Expect(decoder.Palette()).To(Equal(pixel.Palette{0x000000, 0xffffff}))
		Expect(logs.FilterMessage("bad frame").Len()).To(BeZero())
	})

	It("counts painted rasters", func() {
		feed(decoder, string(protocol.BeginFrame), "AAAAAA==", string(protocol.EndFrame))
		Expect(testutil.ToFloat64(m.Paints())).To(Equal(1.0))
		Expect(testutil.ToFloat64(m.Blocks().WithLabelValues("FRAME", metrics.ResultOk))).To(Equal(1.0))
		Expect(status.Get(context.Background(), storage.KeyFramesDecoded)).To(Equal([]byte(`1`)))
	})
})
