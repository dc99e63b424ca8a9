package frame

import "time"

// Task is a callback repeated every frame until cancelled.
type Task struct {
	scheduler Scheduler
	fn        Callback
	id        ID
	active    bool
	fired     int
}

// NewTask returns an inactive task.
func NewTask(s Scheduler, fn Callback) *Task {
	return &Task{
		scheduler: s,
		fn:        fn,
	}
}

// Start schedules the first execution. Starting active task does
// nothing.
func (t *Task) Start() {
	if t.active {
		return
	}
	t.active = true
	t.id = t.scheduler.RequestFrame(t.tick)
}

// Cancel cancels the scheduled execution. Task is not executed after
// Cancel returns. If called from the task callback, the callback
// completes but is not rescheduled.
func (t *Task) Cancel() {
	if !t.active {
		return
	}
	t.active = false
	t.scheduler.CancelFrame(t.id)
}

// Active returns true if task is scheduled.
func (t *Task) Active() bool {
	return t.active
}

// Fired returns number of task executions.
func (t *Task) Fired() int {
	return t.fired
}

func (t *Task) tick(now time.Time) {
	if !t.active {
		return
	}
	t.fired++
	t.fn(now)
	if t.active {
		t.id = t.scheduler.RequestFrame(t.tick)
	}
}
