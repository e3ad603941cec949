// Package viewer is the presentation side of boingscope. It keeps the most
// recent raster painted by the decoder and serves it, along with the session
// status and metrics, over HTTP.
package viewer

import (
	"bytes"
	"image"
	"image/png"
	"sync"
	"time"
)

// Viewer is a protocol.RasterSink that remembers the latest raster.
type Viewer struct {
	mu        sync.RWMutex
	latest    *image.RGBA
	paintedAt time.Time
	paints    uint64
}

func New() *Viewer {
	return &Viewer{}
}

// Paint replaces the latest raster. The viewer takes ownership of m.
func (v *Viewer) Paint(m *image.RGBA) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.latest = m
	v.paintedAt = time.Now()
	v.paints++
}

// Latest returns the latest raster and when it was painted, or nil if
// nothing has been painted yet. The raster must not be modified.
func (v *Viewer) Latest() (*image.RGBA, time.Time) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.latest, v.paintedAt
}

// Paints returns how many rasters have been painted.
func (v *Viewer) Paints() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.paints
}

// PNG encodes the latest raster. ok is false if nothing has been painted.
func (v *Viewer) PNG() (data []byte, ok bool, err error) {
	m, _ := v.Latest()
	if m == nil {
		return nil, false, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		return nil, true, err
	}

	return buf.Bytes(), true, nil
}
