package graph

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dudk/wavescope/signal"
)

// Null is a driver that never pulls. Owner of context renders the signal
// explicitly with Context.Pull.
type Null struct{}

// Start does nothing.
func (Null) Start(Puller, int) error {
	return nil
}

// Route always fails.
func (Null) Route(context.Context, string) error {
	return ErrRouteUnsupported
}

// Close does nothing.
func (Null) Close() error {
	return nil
}

// Clock is a driver that pulls the signal in real time and discards it.
// It's used when no audible device is available.
type Clock struct {
	// Interval between pulls. Default is 10ms.
	Interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Start starts the pulling goroutine.
func (c *Clock) Start(p Puller, sampleRate int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return errors.New("clock is already started")
	}
	interval := c.Interval
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	frames := signal.SamplesOf(sampleRate, interval)
	if frames <= 0 {
		frames = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		out := make([]float32, frames)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Pull(out)
			}
		}
	}(c.done)
	return nil
}

// Route always fails.
func (c *Clock) Route(context.Context, string) error {
	return ErrRouteUnsupported
}

// Close stops the pulling goroutine and waits for it to exit.
func (c *Clock) Close() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
