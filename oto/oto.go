// Package oto provides audible output for graph context using oto
// library. Oto plays only on the system default device, so output route
// can't be changed.
package oto

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/dudk/wavescope/graph"
)

// DefaultBufferSize is the device buffer duration.
const DefaultBufferSize = 40 * time.Millisecond

// Driver is a graph.Driver that plays mono signal on default device.
// Only one driver can be started per process.
type Driver struct {
	BufferSize time.Duration

	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	reader *reader
}

// Start creates oto context and starts playback.
func (d *Driver) Start(p graph.Puller, sampleRate int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx != nil {
		return errors.New("driver is already started")
	}
	bufferSize := d.BufferSize
	if bufferSize == 0 {
		bufferSize = DefaultBufferSize
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return err
	}
	<-ready
	d.ctx = ctx
	d.reader = newReader(p)
	d.player = ctx.NewPlayer(d.reader)
	d.player.Play()
	return nil
}

// Route always fails.
func (d *Driver) Route(context.Context, string) error {
	return graph.ErrRouteUnsupported
}

// Close stops the playback. Context is not pulled after Close returns.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player == nil {
		return nil
	}
	d.reader.close()
	err := errors.Join(d.player.Close(), d.ctx.Suspend())
	d.player = nil
	return err
}

// reader pulls the graph when player needs more bytes.
type reader struct {
	mu      sync.Mutex
	puller  graph.Puller
	samples []float32
	closed  bool
}

func newReader(p graph.Puller) *reader {
	return &reader{
		puller:  p,
		samples: make([]float32, graph.Quantum*8),
	}
}

// Read renders float32 little endian samples. Silence is returned after
// reader is closed.
func (r *reader) Read(b []byte) (int, error) {
	n := len(b) / 4
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		for i := range b[:n*4] {
			b[i] = 0
		}
		return n * 4, nil
	}
	if n > len(r.samples) {
		r.samples = make([]float32, n)
	}
	samples := r.samples[:n]
	r.puller.Pull(samples)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return n * 4, nil
}

func (r *reader) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}
