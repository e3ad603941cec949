// Package metrics holds the Prometheus collectors for the decoder and its
// transport. Every method is safe to call on a nil *Metrics, which disables
// collection.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	DefaultNamespace = "boingscope"

	ResultOk    = "ok"
	ResultError = "error"
)

type Metrics struct {
	bytesRead   prometheus.Counter
	lines       prometheus.Counter
	blocks      *prometheus.CounterVec
	paints      prometheus.Counter
	diagnostics prometheus.Counter
	connections prometheus.Counter
	connected   prometheus.Gauge
}

// New registers the collectors with registry. A nil registry registers with
// prometheus.DefaultRegisterer.
func New(registry prometheus.Registerer, namespace string) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	factory := promauto.With(registry)

	return &Metrics{
		bytesRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_bytes_total",
			Help:      "Total number of bytes read from the device",
		}),

		lines: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_total",
			Help:      "Total number of complete lines assembled",
		}),

		blocks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_total",
			Help:      "Total number of frame and palette blocks by result",
		}, []string{"type", "result"}),

		paints: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paints_total",
			Help:      "Total number of rasters handed to the sink",
		}),

		diagnostics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Total number of diagnostic lines logged",
		}),

		connections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of device connections opened",
		}),

		connected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected",
			Help:      "1 while a device connection is open",
		}),
	}
}

func (m *Metrics) AddBytes(n int) {
	if m == nil {
		return
	}
	m.bytesRead.Add(float64(n))
}

func (m *Metrics) AddLines(n int) {
	if m == nil {
		return
	}
	m.lines.Add(float64(n))
}

// Block records a completed block of blockType with result ResultOk or
// ResultError.
func (m *Metrics) Block(blockType, result string) {
	if m == nil {
		return
	}
	m.blocks.WithLabelValues(blockType, result).Inc()
}

func (m *Metrics) Paint() {
	if m == nil {
		return
	}
	m.paints.Inc()
}

func (m *Metrics) Diagnostic() {
	if m == nil {
		return
	}
	m.diagnostics.Inc()
}

// Connected records a connection opening. The returned func records it
// closing.
func (m *Metrics) Connected() func() {
	if m == nil {
		return func() {}
	}
	m.connections.Inc()
	m.connected.Set(1)

	return func() {
		m.connected.Set(0)
	}
}

// Blocks exposes the block counter, mostly for tests.
func (m *Metrics) Blocks() *prometheus.CounterVec {
	return m.blocks
}

// Paints exposes the paint counter, mostly for tests.
func (m *Metrics) Paints() prometheus.Counter {
	return m.paints
}
