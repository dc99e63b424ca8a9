// Package frame provides cooperative display-frame scheduling. All
// callbacks are executed on a single logical thread, one after another,
// when the owner ticks the queue. Other goroutines hand work to that
// thread with Post and Do.
package frame

import (
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned when work is posted to the closed queue.
var ErrClosed = errors.New("frame queue is closed")

type (
	// ID identifies requested frame callback.
	ID uint64

	// Callback is called on the next display frame.
	Callback func(now time.Time)

	// Scheduler requests display frame callbacks.
	Scheduler interface {
		// RequestFrame schedules the callback for the next frame.
		RequestFrame(Callback) ID
		// CancelFrame cancels the scheduled callback. Cancelling fired
		// or unknown callback does nothing.
		CancelFrame(ID)
	}
)

type (
	// Queue is a Scheduler ticked by its owner. It's safe to post work
	// from any goroutine, but frames must be requested and cancelled on
	// the ticking thread.
	Queue struct {
		next    ID
		pending map[ID]Callback
		order   []ID

		mu     sync.Mutex
		posted []task
		closed bool
	}

	task struct {
		fn   func() error
		errc chan error
	}
)

// NewQueue returns a new empty queue.
func NewQueue() *Queue {
	return &Queue{
		pending: make(map[ID]Callback),
	}
}

// RequestFrame schedules the callback for the next tick. Callbacks
// requested during the tick are executed on the following tick.
func (q *Queue) RequestFrame(fn Callback) ID {
	q.next++
	q.pending[q.next] = fn
	q.order = append(q.order, q.next)
	return q.next
}

// CancelFrame removes the scheduled callback.
func (q *Queue) CancelFrame(id ID) {
	delete(q.pending, id)
}

// Pending returns number of scheduled frame callbacks.
func (q *Queue) Pending() int {
	return len(q.pending)
}

// Post schedules fn to be executed on the ticking thread before the next
// frame callbacks. Posted functions are executed in order.
func (q *Queue) Post(fn func()) {
	q.Do(func() error {
		fn()
		return nil
	})
}

// Do schedules fn to be executed on the ticking thread. Returned channel
// receives the result of fn and is closed. If queue is closed, channel
// receives ErrClosed.
func (q *Queue) Do(fn func() error) chan error {
	errc := make(chan error, 1)
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		errc <- ErrClosed
		close(errc)
		return errc
	}
	q.posted = append(q.posted, task{fn: fn, errc: errc})
	return errc
}

// Tick executes all posted functions and then all frame callbacks
// scheduled before the tick.
func (q *Queue) Tick(now time.Time) {
	q.mu.Lock()
	posted := q.posted
	q.posted = nil
	q.mu.Unlock()
	for _, t := range posted {
		t.errc <- t.fn()
		close(t.errc)
	}

	order := q.order
	q.order = nil
	for _, id := range order {
		// callback could be cancelled by previous one
		fn, ok := q.pending[id]
		if !ok {
			continue
		}
		delete(q.pending, id)
		fn(now)
	}
}

// Close dismisses all posted functions and scheduled frames. Posted
// functions receive ErrClosed.
func (q *Queue) Close() {
	q.mu.Lock()
	posted := q.posted
	q.posted = nil
	q.closed = true
	q.mu.Unlock()
	for _, t := range posted {
		t.errc <- ErrClosed
		close(t.errc)
	}
	q.pending = make(map[ID]Callback)
	q.order = nil
}

// Wait for the result of posted function.
func Wait(errc chan error) error {
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}
