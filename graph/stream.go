package graph

import (
	"context"
	"sync"
)

type (
	// InputStream is a live signal from the input device.
	InputStream interface {
		// Read reads up to len(dst) samples into dst and returns number
		// of read samples. It must not block.
		Read(dst []float64) int
		// Close releases the device.
		Close() error
	}

	// InputOpener acquires input devices. Empty device id means the
	// default device.
	InputOpener interface {
		OpenInput(ctx context.Context, deviceID string) (InputStream, error)
	}
)

// StreamSource is a source node of live input stream. Missing samples are
// rendered as silence.
type StreamSource struct {
	node
	stream InputStream
}

// NewStreamSource creates a new source of input stream. Source owns the
// stream and closes it when disposed.
func (ac *Context) NewStreamSource(stream InputStream) (*StreamSource, error) {
	if err := ac.checkOpen(); err != nil {
		return nil, err
	}
	s := &StreamSource{
		node:   ac.newNode("stream"),
		stream: stream,
	}
	ac.register(s, false)
	return s, nil
}

func (s *StreamSource) pull(quantum int64, frames int) []float64 {
	out := s.out[:frames]
	if s.rendered(quantum) {
		return out
	}
	n := s.stream.Read(out)
	for i := n; i < frames; i++ {
		out[i] = 0
	}
	return out
}

func (s *StreamSource) release() error {
	return s.releaseOnce(s.stream.Close)
}

// Ring is a fixed size queue of samples. It's used to pass the signal
// between device callback and the render path. When ring is full, the
// oldest samples are overwritten.
type Ring struct {
	mu     sync.Mutex
	buf    []float64
	head   int
	size   int
	closed bool
}

// NewRing returns a ring of provided capacity.
func NewRing(capacity int) *Ring {
	return &Ring{buf: make([]float64, capacity)}
}

// Write appends samples to the ring.
func (r *Ring) Write(samples []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for _, v := range samples {
		r.put(float64(v))
	}
}

// WriteFloat64 appends samples to the ring.
func (r *Ring) WriteFloat64(samples []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for _, v := range samples {
		r.put(v)
	}
}

func (r *Ring) put(v float64) {
	tail := (r.head + r.size) % len(r.buf)
	r.buf[tail] = v
	if r.size == len(r.buf) {
		r.head = (r.head + 1) % len(r.buf)
		return
	}
	r.size++
}

// Read implements InputStream.
func (r *Ring) Read(dst []float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for n < len(dst) && r.size > 0 {
		dst[n] = r.buf[r.head]
		r.head = (r.head + 1) % len(r.buf)
		r.size--
		n++
	}
	return n
}

// Len returns number of buffered samples.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Close discards buffered samples. Writes after close are ignored.
func (r *Ring) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.size = 0
	return nil
}
