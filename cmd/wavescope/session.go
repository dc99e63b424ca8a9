package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dudk/wavescope"
	"github.com/dudk/wavescope/graph"
	"github.com/dudk/wavescope/log"
	"github.com/dudk/wavescope/oto"
	"github.com/dudk/wavescope/portaudio"
	"github.com/dudk/wavescope/render"
)

// Panel size in logical pixels.
const (
	panelWidth  = 800
	panelHeight = 200
)

// sessionFlags are shared by commands that build a controller.
type sessionFlags struct {
	output     string
	sampleRate int
	device     string
	capture    bool
	tone       bool
	frequency  float64
	gain       float64
}

func (f *sessionFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.output, "output", "portaudio", "audible output driver: portaudio, oto or none")
	fs.IntVar(&f.sampleRate, "samplerate", graph.DefaultSampleRate, "sample rate of audio context")
	fs.StringVar(&f.device, "device", "", "input device id, default device if empty")
	fs.BoolVar(&f.capture, "capture", false, "start microphone capture")
	fs.BoolVar(&f.tone, "tone", false, "start test tone")
	fs.Float64Var(&f.frequency, "frequency", wavescope.DefaultFrequency, "test tone frequency in Hz")
	fs.Float64Var(&f.gain, "gain", wavescope.DefaultToneGain, "test tone gain in range [0, 1]")
}

// session is a running controller with its displays.
type session struct {
	log        *logrus.Logger
	ac         *graph.Context
	c          *wavescope.Controller
	capture    *render.View
	tone       *render.View
	sampleRate int
}

func newDriver(name string) (graph.Driver, error) {
	switch name {
	case "portaudio":
		return &portaudio.Output{}, nil
	case "oto":
		return &oto.Driver{}, nil
	case "none":
		return &graph.Clock{}, nil
	case "manual":
		return graph.Null{}, nil
	}
	return nil, fmt.Errorf("unknown output driver %q", name)
}

// newSession initializes devices and creates controller. Displays are
// drawn on canvases of provided scale.
func newSession(f *sessionFlags, s wavescope.Scheduler, scale float64, options ...wavescope.Option) (*session, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	sess := &session{
		log:     log.GetLogger(),
		capture: render.NewView(render.NewCanvas(panelWidth, panelHeight, scale)),
		tone:    render.NewView(render.NewCanvas(panelWidth, panelHeight, scale)),
	}
	driver, err := newDriver(f.output)
	if err != nil {
		sess.close()
		return nil, err
	}
	sess.ac, err = graph.NewContext(driver,
		graph.WithSampleRate(f.sampleRate),
		graph.WithLogger(log.WithComponent(sess.log, "graph")),
	)
	if err != nil {
		sess.close()
		return nil, err
	}
	sess.sampleRate = sess.ac.SampleRate()
	options = append([]wavescope.Option{
		wavescope.WithLogger(log.WithComponent(sess.log, "controller")),
		wavescope.WithDisplays(sess.capture, sess.tone),
	}, options...)
	input := &portaudio.Input{SampleRate: f.sampleRate}
	sess.c = wavescope.New(sess.ac, input, s, options...)
	return sess, nil
}

// start starts pipelines requested by flags. Must be called on the
// scheduler thread.
func (sess *session) start(f *sessionFlags) error {
	if f.capture {
		if err := sess.c.StartCapture(context.Background(), f.device, sess.c.Capture.Gain()); err != nil {
			return err
		}
	}
	if f.tone {
		if err := sess.c.StartTone(f.frequency, f.gain); err != nil {
			return err
		}
	}
	return nil
}

// close releases context and devices. Controller must be closed on the
// scheduler thread before.
func (sess *session) close() error {
	var err error
	if sess.ac != nil {
		err = sess.ac.Close()
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
