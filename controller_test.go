package wavescope_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/wavescope"
	"github.com/dudk/wavescope/frame"
	"github.com/dudk/wavescope/graph"
	"github.com/dudk/wavescope/metric"
	"github.com/dudk/wavescope/mock"
	"github.com/dudk/wavescope/render"
	"github.com/dudk/wavescope/signal"
)

type fixture struct {
	*wavescope.Controller
	ac      *graph.Context
	driver  *mock.Driver
	input   *mock.Input
	queue   *frame.Queue
	capture *mock.Display
	tone    *mock.Display
}

func newFixture(t *testing.T, options ...wavescope.Option) *fixture {
	t.Helper()
	f := &fixture{
		driver:  &mock.Driver{},
		input:   &mock.Input{Value: 0.5},
		queue:   frame.NewQueue(),
		capture: &mock.Display{},
		tone:    &mock.Display{},
	}
	var err error
	f.ac, err = graph.NewContext(f.driver)
	require.NoError(t, err)
	t.Cleanup(func() { f.ac.Close() })
	options = append([]wavescope.Option{wavescope.WithDisplays(f.capture, f.tone)}, options...)
	f.Controller = wavescope.New(f.ac, f.input, f.queue, options...)
	return f
}

// render pulls the whole window and ticks one frame.
func (f *fixture) frame() {
	f.driver.Pull(graph.DefaultWindowSize)
	f.queue.Tick(time.Now())
}

func TestInitialTitles(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, mock.Frame{Title: wavescope.CaptureTitle}, f.capture.Last())
	assert.Equal(t, mock.Frame{Title: wavescope.ToneTitle}, f.tone.Last())
	for _, p := range f.Pipelines() {
		assert.Equal(t, wavescope.Idle, p.State())
	}
}

func TestStartCaptureTwice(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.StartCapture(context.Background(), "mic", 1))
	first := f.Capture.Tap()
	require.NoError(t, f.StartCapture(context.Background(), "mic", 1))

	assert.True(t, f.Capture.Running())
	assert.NotSame(t, first, f.Capture.Tap())
	assert.Equal(t, 2, f.input.Opened())
	assert.Equal(t, 1, f.input.Live())
	assert.Equal(t, 3, f.ac.LiveNodes())
	assert.Equal(t, 1, f.queue.Pending())

	_, err := first.TimeDomainBytes(make(signal.Bytes, first.Size()))
	assert.Equal(t, graph.ErrTapClosed, err)
}

func TestStopIdle(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.StopCapture())
	assert.NoError(t, f.StopTone())
	assert.NoError(t, f.Close())
	assert.Equal(t, wavescope.Idle, f.Capture.State())
	assert.Equal(t, wavescope.Idle, f.Tone.State())
	// nothing was redrawn
	assert.Equal(t, 1, len(f.capture.Frames))
	assert.Equal(t, 1, len(f.tone.Frames))
}

func TestNoPullsAfterStop(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.StartCapture(context.Background(), "", 1))
	tap := f.Capture.Tap()
	f.frame()
	assert.Equal(t, int64(1), tap.Pulls())
	assert.Equal(t, "Microphone Input (Live)", f.capture.Last().Title)
	assert.Equal(t, graph.DefaultWindowSize/2, len(f.capture.Last().Buffer))

	require.NoError(t, f.StopCapture())
	f.frame()
	f.frame()
	assert.Equal(t, int64(1), tap.Pulls())
	assert.Nil(t, f.Capture.Tap())
	assert.Equal(t, 0, f.queue.Pending())
	assert.Equal(t, 0, f.input.Live())
	assert.Equal(t, 0, f.ac.LiveNodes())
	assert.Equal(t, mock.Frame{Title: "Microphone Input (Stopped)"}, f.capture.Last())
}

func TestHeldGain(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.SetCaptureGain(0.4))
	assert.Equal(t, 0.4, f.Capture.Gain())

	require.NoError(t, f.Capture.Start(context.Background()))
	assert.Equal(t, 0.4, f.Capture.Gain())
	f.frame()
	// 0.5 input * 0.4 gain
	expected := signal.Byte(0.2)
	for _, v := range f.capture.Last().Buffer {
		assert.Equal(t, expected, v)
	}

	assert.True(t, errors.Is(f.SetCaptureGain(2.5), wavescope.ErrInvalidParameter))
	assert.True(t, errors.Is(f.SetCaptureGain(-1), wavescope.ErrInvalidParameter))
	assert.Equal(t, 0.4, f.Capture.Gain())

	require.NoError(t, f.SetCaptureGain(2))
	assert.Equal(t, 2.0, f.Capture.Gain())
	require.NoError(t, f.StopCapture())
	assert.Equal(t, 2.0, f.Capture.Gain())
}

func TestToneParameters(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, wavescope.DefaultFrequency, f.Tone.Frequency())
	assert.Equal(t, wavescope.DefaultToneGain, f.Tone.Gain())

	nyquist := float64(f.ac.SampleRate()) / 2
	for _, freq := range []float64{0, -1, nyquist} {
		assert.True(t, errors.Is(f.SetToneFrequency(freq), wavescope.ErrInvalidParameter))
	}
	assert.True(t, errors.Is(f.SetToneGain(1.1), wavescope.ErrInvalidParameter))
	assert.True(t, errors.Is(f.StartTone(440, 2), wavescope.ErrInvalidParameter))
	assert.False(t, f.Tone.Running())

	require.NoError(t, f.StartTone(440, 0.5))
	require.NoError(t, f.SetToneFrequency(880))
	require.NoError(t, f.SetToneGain(0.25))
	assert.Equal(t, 880.0, f.Tone.Oscillator().Frequency.Value())
	assert.Equal(t, 0.25, f.Tone.Gain())
}

func TestDeviceAcquisitionError(t *testing.T) {
	f := newFixture(t)
	f.input.ErrorOnOpen = errors.New("permission denied")
	err := f.StartCapture(context.Background(), "mic", 1)

	var acqErr *graph.DeviceAcquisitionError
	require.True(t, errors.As(err, &acqErr))
	assert.Equal(t, "mic", acqErr.Device)
	assert.Equal(t, wavescope.Idle, f.Capture.State())
	assert.Equal(t, 0, f.ac.LiveNodes())
	assert.Equal(t, 0, f.queue.Pending())
}

func TestRollback(t *testing.T) {
	// invalid window fails after the stream is acquired
	f := newFixture(t, wavescope.WithWindowSize(100))
	err := f.StartCapture(context.Background(), "", 1)
	assert.True(t, errors.Is(err, graph.ErrInvalidValue))
	assert.Equal(t, 1, f.input.Opened())
	assert.Equal(t, 0, f.input.Live())
	assert.Equal(t, 0, f.ac.LiveNodes())
	assert.Equal(t, wavescope.Idle, f.Capture.State())

	assert.Error(t, f.StartTone(440, 0.5))
	assert.Equal(t, 0, f.ac.LiveNodes())
	assert.Equal(t, wavescope.Idle, f.Tone.State())
}

// surface draws shown frames on the recording surface.
type surface struct {
	*mock.Surface
}

func (s surface) Show(buf signal.Bytes, title string) {
	s.Reset()
	render.Draw(s.Surface, buf, title)
}

func TestToneEndToEnd(t *testing.T) {
	f := newFixture(t)
	s := surface{&mock.Surface{}}
	c := wavescope.New(f.ac, f.input, f.queue, wavescope.WithDisplays(nil, s), wavescope.WithMetric())

	require.NoError(t, c.StartTone(440, 0.5))
	assert.Equal(t, wavescope.Running, c.Tone.State())
	tap := c.Tone.Tap()
	for i := 0; i < 3; i++ {
		f.frame()
		strokes := s.Strokes(render.Waveform)
		require.Equal(t, 1, len(strokes))
		assert.Equal(t, tap.Size(), len(strokes[0].Points[0]))
	}
	assert.Equal(t, 3, c.Tone.Sampler().Frames())
	assert.NotEmpty(t, metric.Get("tone")[metric.FrameCounter])

	// signal is audible
	var peak float32
	for _, v := range f.driver.Pull(graph.DefaultWindowSize) {
		if v > peak {
			peak = v
		}
	}
	assert.InDelta(t, 0.5, peak, 0.01)

	require.NoError(t, c.StopTone())
	assert.Equal(t, wavescope.Idle, c.Tone.State())
	assert.Empty(t, s.Strokes(render.Waveform))
	assert.Equal(t, []string{render.NoSignal, "Audio Output (Stopped)"}, s.Texts())

	// ended callback of stopped graph is ignored
	f.frame()
	f.frame()
	assert.Equal(t, int64(3), tap.Pulls())
	assert.Equal(t, wavescope.Idle, c.Tone.State())
	assert.Equal(t, []string{render.NoSignal, "Audio Output (Stopped)"}, s.Texts())
	assert.Equal(t, 0, f.ac.LiveNodes())

	// silence after stop
	for _, v := range f.driver.Pull(graph.Quantum) {
		assert.Equal(t, float32(0), v)
	}
}

func TestToneExternalEnd(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.StartTone(440, 0.5))
	f.frame()
	frames := len(f.tone.Frames)

	// source ends without stop request
	require.NoError(t, f.Tone.Oscillator().Stop())
	f.frame()
	assert.Equal(t, wavescope.Idle, f.Tone.State())
	assert.Equal(t, 0, f.ac.LiveNodes())
	assert.Equal(t, 0, f.queue.Pending())
	assert.Equal(t, mock.Frame{Title: "Audio Output (Stopped)"}, f.tone.Last())
	assert.Equal(t, frames+1, len(f.tone.Frames))

	// restart builds a fresh graph
	require.NoError(t, f.StartTone(440, 0.5))
	f.frame()
	assert.Equal(t, wavescope.Running, f.Tone.State())
	assert.Equal(t, "Audio Output (Live)", f.tone.Last().Title)
}

func TestContextClosed(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.StartTone(440, 0.5))
	require.NoError(t, f.ac.Close())
	f.queue.Tick(time.Now())
	assert.Equal(t, wavescope.Idle, f.Tone.State())
	assert.Equal(t, mock.Frame{Title: "Audio Output (Stopped)"}, f.tone.Last())
}

func TestOutputRoute(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.StartTone(440, 0.5))
	assert.NoError(t, f.SetOutputRoute(context.Background(), "speakers"))
	assert.Equal(t, "speakers", f.driver.Device())

	f.driver.ErrorOnRoute = graph.ErrRouteUnsupported
	err := f.SetOutputRoute(context.Background(), "headphones")
	var routeErr *graph.OutputRouteError
	require.True(t, errors.As(err, &routeErr))
	assert.Equal(t, "headphones", routeErr.Device)
	assert.True(t, errors.Is(err, graph.ErrRouteUnsupported))
	// playback is not affected
	assert.True(t, f.Tone.Running())
	assert.Equal(t, "speakers", f.driver.Device())
}

func TestPipelinesIndependent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.StartCapture(context.Background(), "", 1))
	require.NoError(t, f.StartTone(440, 0.5))
	assert.Equal(t, 2, f.queue.Pending())
	f.frame()

	require.NoError(t, f.StopTone())
	f.frame()
	assert.True(t, f.Capture.Running())
	assert.Equal(t, int64(2), f.Capture.Tap().Pulls())
	assert.Equal(t, 3, f.ac.LiveNodes())

	assert.NoError(t, f.Close())
	assert.Equal(t, 0, f.ac.LiveNodes())
	assert.Equal(t, 0, f.input.Live())
}
