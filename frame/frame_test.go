package frame_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/dudk/wavescope/frame"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQueue(t *testing.T) {
	q := frame.NewQueue()
	var calls []string
	q.RequestFrame(func(time.Time) { calls = append(calls, "first") })
	id := q.RequestFrame(func(time.Time) { calls = append(calls, "cancelled") })
	q.RequestFrame(func(time.Time) {
		calls = append(calls, "third")
		// requested during tick is executed on the next one
		q.RequestFrame(func(time.Time) { calls = append(calls, "next") })
	})
	q.Post(func() { calls = append(calls, "posted") })
	q.CancelFrame(id)
	assert.Equal(t, 2, q.Pending())

	q.Tick(time.Now())
	assert.Equal(t, []string{"posted", "first", "third"}, calls)
	assert.Equal(t, 1, q.Pending())

	q.Tick(time.Now())
	assert.Equal(t, []string{"posted", "first", "third", "next"}, calls)
	assert.Equal(t, 0, q.Pending())
}

func TestCancelFromCallback(t *testing.T) {
	q := frame.NewQueue()
	var second frame.ID
	fired := false
	q.RequestFrame(func(time.Time) { q.CancelFrame(second) })
	second = q.RequestFrame(func(time.Time) { fired = true })
	q.Tick(time.Now())
	assert.False(t, fired)
}

func TestDo(t *testing.T) {
	q := frame.NewQueue()
	errTest := errors.New("test")
	okc := q.Do(func() error { return nil })
	errc := q.Do(func() error { return errTest })
	q.Tick(time.Now())
	assert.NoError(t, frame.Wait(okc))
	assert.Equal(t, errTest, frame.Wait(errc))

	pending := q.Do(func() error { return nil })
	q.Close()
	assert.Equal(t, frame.ErrClosed, frame.Wait(pending))
	assert.Equal(t, frame.ErrClosed, frame.Wait(q.Do(func() error { return nil })))
}

func TestTask(t *testing.T) {
	q := frame.NewQueue()
	var fired int
	task := frame.NewTask(q, func(time.Time) { fired++ })
	assert.False(t, task.Active())

	task.Start()
	task.Start()
	assert.True(t, task.Active())
	assert.Equal(t, 1, q.Pending())
	for i := 0; i < 3; i++ {
		q.Tick(time.Now())
	}
	assert.Equal(t, 3, fired)
	assert.Equal(t, 3, task.Fired())

	task.Cancel()
	assert.False(t, task.Active())
	assert.Equal(t, 0, q.Pending())
	q.Tick(time.Now())
	assert.Equal(t, 3, fired)

	// restart after cancel
	task.Start()
	q.Tick(time.Now())
	assert.Equal(t, 4, fired)
	task.Cancel()
}

func TestTaskCancelItself(t *testing.T) {
	q := frame.NewQueue()
	var task *frame.Task
	var fired int
	task = frame.NewTask(q, func(time.Time) {
		fired++
		task.Cancel()
	})
	task.Start()
	q.Tick(time.Now())
	q.Tick(time.Now())
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, q.Pending())
}

func TestLoop(t *testing.T) {
	l := frame.NewLoop(frame.WithRate(1000))
	assert.Equal(t, time.Millisecond, l.Interval())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- l.Run(ctx)
	}()

	ticks := 0
	task := frame.NewTask(l, func(time.Time) { ticks++ })
	// task is started on the loop thread
	assert.NoError(t, frame.Wait(l.Do(func() error {
		task.Start()
		return nil
	})))
	assert.Eventually(t, func() bool {
		var n int
		frame.Wait(l.Do(func() error {
			n = ticks
			return nil
		}))
		return n > 3
	}, time.Second, time.Millisecond)

	cancel()
	assert.Equal(t, context.Canceled, <-done)
}
