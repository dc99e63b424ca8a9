package wavescope

import (
	"fmt"
	"time"

	"github.com/dudk/wavescope/frame"
	"github.com/dudk/wavescope/metric"
	"github.com/dudk/wavescope/signal"
)

type (
	// Tap provides the latest time-domain samples of a running graph.
	Tap interface {
		// Size returns the length of pulled buffer.
		Size() int
		// TimeDomainBytes pulls current samples into dst.
		TimeDomainBytes(dst signal.Bytes) (int, error)
	}

	// Display shows the pulled buffer. Nil buffer means there is no
	// signal.
	Display interface {
		Show(buf signal.Bytes, title string)
	}
)

// Sampler pulls the tap every display frame and hands the buffer to the
// display. It owns its buffer, so two samplers never share samples.
type Sampler struct {
	task    *frame.Task
	tap     Tap
	display Display
	title   string
	buf     signal.Bytes
	log     Logger
	meter   metric.ResetFunc
	measure metric.MeasureFunc
}

// NewSampler returns an inactive sampler bound to the tap.
func NewSampler(s frame.Scheduler, tap Tap, display Display, title string) *Sampler {
	sampler := &Sampler{
		tap:     tap,
		display: display,
		title:   title,
		buf:     make(signal.Bytes, tap.Size()),
		log:     defaultLogger,
	}
	sampler.task = frame.NewTask(s, sampler.tick)
	return sampler
}

// Start schedules the first frame.
func (s *Sampler) Start() {
	if s.meter != nil && !s.task.Active() {
		s.measure = s.meter()
	}
	s.task.Start()
}

// Cancel cancels the scheduled frame. Tap is never pulled after Cancel
// returns.
func (s *Sampler) Cancel() {
	s.task.Cancel()
}

// Active returns true if the next frame is scheduled.
func (s *Sampler) Active() bool {
	return s.task.Active()
}

// Frames returns number of sampled frames.
func (s *Sampler) Frames() int {
	return s.task.Fired()
}

func (s *Sampler) tick(time.Time) {
	n, err := s.tap.TimeDomainBytes(s.buf)
	if err != nil {
		// tap is gone, the graph is torn down.
		s.log.Info(fmt.Sprintf("sampler %q stopped: %v", s.title, err))
		s.task.Cancel()
		return
	}
	s.display.Show(s.buf[:n], s.title)
	if s.measure != nil {
		s.measure(int64(n))
	}
}

// discard is a display that shows nothing.
type discard struct{}

func (discard) Show(signal.Bytes, string) {}
