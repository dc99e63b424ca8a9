package wavescope

import (
	"github.com/dudk/wavescope/metric"
)

// Option provides a way to set functional parameters to controller.
type Option func(*Controller)

// WithLogger sets logger to controller. If this option is not provided,
// silent logger is used.
func WithLogger(logger Logger) Option {
	return func(c *Controller) {
		c.log = logger
	}
}

// WithDisplays sets displays of capture and tone pipelines. Nil display
// is ignored.
func WithDisplays(capture, tone Display) Option {
	return func(c *Controller) {
		if capture != nil {
			c.Capture.display = capture
		}
		if tone != nil {
			c.Tone.display = tone
		}
	}
}

// WithWindowSize sets the analysis window of taps. Pulled buffer is half
// of the window.
func WithWindowSize(window int) Option {
	return func(c *Controller) {
		c.Capture.window = window
		c.Tone.window = window
	}
}

// WithMetric enables frame meters of samplers.
func WithMetric() Option {
	return func(c *Controller) {
		c.Capture.meter = metric.Meter(c.Capture.name, c.ac.SampleRate())
		c.Tone.meter = metric.Meter(c.Tone.name, c.ac.SampleRate())
	}
}
