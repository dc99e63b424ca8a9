package graph

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dudk/wavescope/signal"
)

const (
	// MinWindowSize is the smallest analyser window.
	MinWindowSize = 32
	// MaxWindowSize is the largest analyser window.
	MaxWindowSize = 32768
)

// Analyser is a sampling tap. It keeps the latest window of its input
// signal and passes the input through unchanged. Analyser is always
// rendered, even if nothing consumes its output.
type Analyser struct {
	node
	window int
	pulls  int64

	mu     sync.Mutex
	closed bool
	ring   []float64
	pos    int
}

// NewAnalyser creates a new analyser with provided window size. Window
// must be a power of two in range [MinWindowSize, MaxWindowSize].
func (ac *Context) NewAnalyser(window int) (*Analyser, error) {
	if err := ac.checkOpen(); err != nil {
		return nil, err
	}
	if window < MinWindowSize || window > MaxWindowSize || window&(window-1) != 0 {
		return nil, fmt.Errorf("analyser window %d: %w", window, ErrInvalidValue)
	}
	a := &Analyser{
		node:   ac.newNode("analyser"),
		window: window,
		ring:   make([]float64, window),
	}
	ac.register(a, true)
	return a, nil
}

// WindowSize returns the analysis window size.
func (a *Analyser) WindowSize() int {
	return a.window
}

// Size returns the length of buffer pulled with TimeDomainBytes.
func (a *Analyser) Size() int {
	return a.window / 2
}

// Pulls returns number of TimeDomainBytes calls made on the analyser.
func (a *Analyser) Pulls() int64 {
	return atomic.LoadInt64(&a.pulls)
}

// TimeDomainBytes copies the current window into dst as unsigned bytes
// centered at 128. If dst is shorter than the window, the oldest part of
// window is copied. It returns number of copied samples.
func (a *Analyser) TimeDomainBytes(dst signal.Bytes) (int, error) {
	atomic.AddInt64(&a.pulls, 1)
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return 0, ErrTapClosed
	}
	n := len(dst)
	if n > a.window {
		n = a.window
	}
	for i := 0; i < n; i++ {
		dst[i] = signal.Byte(a.ring[(a.pos+i)%a.window])
	}
	return n, nil
}

func (a *Analyser) pull(quantum int64, frames int) []float64 {
	out := a.out[:frames]
	if a.rendered(quantum) {
		return out
	}
	copy(out, a.mix(quantum, frames))
	a.mu.Lock()
	for _, v := range out {
		a.ring[a.pos] = v
		a.pos = (a.pos + 1) % a.window
	}
	a.mu.Unlock()
	return out
}

func (a *Analyser) release() error {
	return a.releaseOnce(func() error {
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()
		return nil
	})
}
