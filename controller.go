package wavescope

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/dudk/wavescope/frame"
	"github.com/dudk/wavescope/graph"
)

type (
	// Scheduler runs the controlling thread. Frames are requested on
	// that thread, Post is used to get there from other goroutines.
	Scheduler interface {
		frame.Scheduler
		Post(func())
	}

	// Logger is a global interface for wavescope loggers.
	Logger interface {
		Debug(...interface{})
		Info(...interface{})
	}
)

// Controller owns capture and tone pipelines. It's not safe for
// concurrent use: all methods must be called on the scheduler thread.
type Controller struct {
	uid     string
	ac      *graph.Context
	log     Logger
	Capture *Capture
	Tone    *Tone
}

// New creates a new controller. Both pipelines are idle and their
// displays show initial titles.
func New(ac *graph.Context, input graph.InputOpener, s Scheduler, options ...Option) *Controller {
	c := &Controller{
		uid: xid.New().String(),
		ac:  ac,
		log: defaultLogger,
		Capture: &Capture{
			pipeline: pipeline{
				name:    "capture",
				title:   CaptureTitle,
				gain:    1,
				maxGain: MaxCaptureGain,
			},
			input: input,
		},
		Tone: &Tone{
			pipeline: pipeline{
				name:    "tone",
				title:   ToneTitle,
				gain:    DefaultToneGain,
				maxGain: MaxToneGain,
			},
			frequency: DefaultFrequency,
			post:      s.Post,
		},
	}
	for _, p := range []*pipeline{&c.Capture.pipeline, &c.Tone.pipeline} {
		p.ac = ac
		p.scheduler = s
		p.display = discard{}
		p.window = graph.DefaultWindowSize
	}
	for _, option := range options {
		option(c)
	}
	for _, p := range []*pipeline{&c.Capture.pipeline, &c.Tone.pipeline} {
		p.log = c.log
		p.idle()
	}
	c.log.Debug(fmt.Sprintf("controller %v created", c.uid))
	return c
}

// StartCapture starts the microphone pipeline with provided device and
// gain. Empty device id means the default device. On failure capture
// stays idle.
func (c *Controller) StartCapture(ctx context.Context, deviceID string, gain float64) error {
	if err := c.Capture.SetGain(gain); err != nil {
		return err
	}
	c.Capture.SetDevice(deviceID)
	return c.Capture.Start(ctx)
}

// StopCapture stops the microphone pipeline. It does nothing if capture
// is idle.
func (c *Controller) StopCapture() error {
	return c.Capture.Stop()
}

// StartTone starts the tone pipeline with provided frequency and gain.
func (c *Controller) StartTone(frequency, gain float64) error {
	if err := c.Tone.SetFrequency(frequency); err != nil {
		return err
	}
	if err := c.Tone.SetGain(gain); err != nil {
		return err
	}
	return c.Tone.Start(context.Background())
}

// StopTone stops the tone pipeline. It does nothing if tone is idle.
func (c *Controller) StopTone() error {
	return c.Tone.Stop()
}

// SetCaptureGain sets the capture gain in range [0, 2].
func (c *Controller) SetCaptureGain(v float64) error {
	return c.Capture.SetGain(v)
}

// SetToneGain sets the tone gain in range [0, 1].
func (c *Controller) SetToneGain(v float64) error {
	return c.Tone.SetGain(v)
}

// SetToneFrequency sets the tone frequency.
func (c *Controller) SetToneFrequency(f float64) error {
	return c.Tone.SetFrequency(f)
}

// SetOutputRoute routes the audible output to the device. Failure is
// returned as *graph.OutputRouteError and doesn't affect playback.
func (c *Controller) SetOutputRoute(ctx context.Context, deviceID string) error {
	if err := c.ac.SetSinkID(ctx, deviceID); err != nil {
		c.log.Info(err)
		return err
	}
	c.log.Info(fmt.Sprintf("controller %v output routed to %s device", c.uid, deviceName(deviceID)))
	return nil
}

// Pipelines returns capture and tone pipelines.
func (c *Controller) Pipelines() []Pipeline {
	return []Pipeline{c.Capture, c.Tone}
}

// Close stops both pipelines.
func (c *Controller) Close() error {
	var errs []error
	for _, p := range c.Pipelines() {
		if err := p.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type silentLogger struct{}

func (silentLogger) Debug(args ...interface{}) {}

func (silentLogger) Info(args ...interface{}) {}

var defaultLogger silentLogger
