package frame

import (
	"context"
	"time"
)

// DefaultRate is the number of frames per second.
const DefaultRate = 60

// Loop ticks the queue with constant rate. It's used when there is no
// display to drive the frames.
type Loop struct {
	*Queue
	rate int
}

// LoopOption sets functional parameters of the loop.
type LoopOption func(*Loop)

// WithRate sets number of frames per second.
func WithRate(fps int) LoopOption {
	return func(l *Loop) {
		if fps > 0 {
			l.rate = fps
		}
	}
}

// NewLoop returns a loop over the new queue.
func NewLoop(options ...LoopOption) *Loop {
	l := &Loop{
		Queue: NewQueue(),
		rate:  DefaultRate,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// Interval returns the duration between frames.
func (l *Loop) Interval() time.Duration {
	return time.Second / time.Duration(l.rate)
}

// Run ticks the queue until context is done. Queue is closed when Run
// returns.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.Interval())
	defer ticker.Stop()
	defer l.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			l.Tick(now)
		}
	}
}
