package graph_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dudk/wavescope/graph"
	"github.com/dudk/wavescope/signal"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newContext(t *testing.T) *graph.Context {
	t.Helper()
	ac, err := graph.NewContext(graph.Null{})
	require.NoError(t, err)
	t.Cleanup(func() { ac.Close() })
	return ac
}

// constant returns ring filled with n samples of value v.
func constant(n int, v float32) *graph.Ring {
	r := graph.NewRing(n)
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = v
	}
	r.Write(samples)
	return r
}

func TestNewContext(t *testing.T) {
	tests := []struct {
		options []graph.Option
		rate    int
		err     bool
	}{
		{rate: graph.DefaultSampleRate},
		{options: []graph.Option{graph.WithSampleRate(48000)}, rate: 48000},
		{options: []graph.Option{graph.WithSampleRate(0)}, err: true},
	}
	for _, test := range tests {
		ac, err := graph.NewContext(graph.Null{}, test.options...)
		if test.err {
			var initErr *graph.ContextInitError
			assert.True(t, errors.As(err, &initErr))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, test.rate, ac.SampleRate())
		assert.NoError(t, ac.Close())
	}
}

func TestOscillator(t *testing.T) {
	ac := newContext(t)

	_, err := ac.NewOscillator(-1)
	assert.True(t, errors.Is(err, graph.ErrInvalidValue))
	_, err = ac.NewOscillator(float64(ac.SampleRate()))
	assert.True(t, errors.Is(err, graph.ErrInvalidValue))

	osc, err := ac.NewOscillator(440)
	require.NoError(t, err)
	assert.Equal(t, 440.0, osc.Frequency.Value())

	// stop before start
	assert.True(t, errors.Is(osc.Stop(), graph.ErrInvalidState))
	assert.NoError(t, osc.Start())
	assert.True(t, errors.Is(osc.Start(), graph.ErrInvalidState))
	assert.True(t, osc.Started())

	gain, err := ac.NewGain(0.5)
	require.NoError(t, err)
	require.NoError(t, ac.Connect(osc, gain))
	require.NoError(t, ac.Connect(gain, ac.Destination()))

	out := make([]float32, 4096)
	ac.Pull(out)
	var peak float64
	for _, v := range out {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	assert.InDelta(t, 0.5, peak, 0.01)
	assert.Equal(t, signal.DurationOf(ac.SampleRate(), 4096), ac.CurrentTime())

	// frequency is validated and held
	assert.True(t, errors.Is(osc.Frequency.SetValue(math.NaN()), graph.ErrInvalidValue))
	assert.NoError(t, osc.Frequency.SetValue(880))
	assert.Equal(t, 880.0, osc.Frequency.Value())
}

func TestOscillatorEnded(t *testing.T) {
	ac := newContext(t)
	osc, err := ac.NewOscillator(440)
	require.NoError(t, err)
	var ended int
	osc.OnEnded(func() { ended++ })
	require.NoError(t, osc.Start())
	ac.Render(graph.Quantum)
	assert.Equal(t, 0, ended)

	require.NoError(t, osc.Stop())
	assert.NoError(t, osc.Stop())
	assert.False(t, osc.Started())
	// callback is fired by render path
	assert.Equal(t, 0, ended)
	ac.Render(graph.Quantum)
	assert.Equal(t, 1, ended)
	ac.Render(graph.Quantum)
	assert.Equal(t, 1, ended)
}

func TestCloseEndsSources(t *testing.T) {
	ac, err := graph.NewContext(graph.Null{})
	require.NoError(t, err)
	started, err := ac.NewOscillator(440)
	require.NoError(t, err)
	idle, err := ac.NewOscillator(440)
	require.NoError(t, err)

	var startedEnded, idleEnded int
	started.OnEnded(func() { startedEnded++ })
	idle.OnEnded(func() { idleEnded++ })
	require.NoError(t, started.Start())

	assert.NoError(t, ac.Close())
	assert.NoError(t, ac.Close())
	assert.Equal(t, 1, startedEnded)
	assert.Equal(t, 0, idleEnded)

	_, err = ac.NewGain(1)
	assert.True(t, errors.Is(err, graph.ErrClosed))

	out := []float32{1, 1, 1}
	ac.Pull(out)
	assert.Equal(t, []float32{0, 0, 0}, out)
}

func TestGainRamp(t *testing.T) {
	ac := newContext(t)
	src, err := ac.NewStreamSource(constant(2*graph.Quantum, 1))
	require.NoError(t, err)
	gain, err := ac.NewGain(0)
	require.NoError(t, err)
	require.NoError(t, ac.Connect(src, gain))
	require.NoError(t, ac.Connect(gain, ac.Destination()))

	require.NoError(t, gain.Gain.SetValue(1))
	out := make([]float32, graph.Quantum)
	ac.Pull(out)
	for i, v := range out {
		assert.InDelta(t, float64(i+1)/graph.Quantum, v, 1e-6)
	}
	ac.Pull(out)
	for _, v := range out {
		assert.Equal(t, float32(1), v)
	}
	// source is drained
	ac.Pull(out)
	for _, v := range out {
		assert.Equal(t, float32(0), v)
	}
}

func TestAnalyser(t *testing.T) {
	ac := newContext(t)

	for _, window := range []int{0, 16, 100, 65536} {
		_, err := ac.NewAnalyser(window)
		assert.True(t, errors.Is(err, graph.ErrInvalidValue), "window %d", window)
	}

	tap, err := ac.NewAnalyser(graph.DefaultWindowSize)
	require.NoError(t, err)
	assert.Equal(t, graph.DefaultWindowSize, tap.WindowSize())
	assert.Equal(t, graph.DefaultWindowSize/2, tap.Size())

	buf := make(signal.Bytes, tap.Size())
	n, err := tap.TimeDomainBytes(buf)
	require.NoError(t, err)
	assert.Equal(t, tap.Size(), n)
	assert.Equal(t, 0.0, buf.RMS())

	src, err := ac.NewStreamSource(constant(graph.DefaultWindowSize, 0.5))
	require.NoError(t, err)
	require.NoError(t, ac.Connect(src, tap))
	// analyser is rendered without connection to destination
	ac.Render(graph.DefaultWindowSize)

	n, err = tap.TimeDomainBytes(buf)
	require.NoError(t, err)
	assert.Equal(t, tap.Size(), n)
	for _, v := range buf {
		assert.Equal(t, uint8(192), v)
	}
	assert.Equal(t, int64(2), tap.Pulls())

	require.NoError(t, ac.Dispose(tap))
	_, err = tap.TimeDomainBytes(buf)
	assert.Equal(t, graph.ErrTapClosed, err)
}

func TestDispose(t *testing.T) {
	ac := newContext(t)
	ring := constant(graph.Quantum, 1)
	src, err := ac.NewStreamSource(ring)
	require.NoError(t, err)
	gain, err := ac.NewGain(1)
	require.NoError(t, err)
	require.NoError(t, ac.Connect(src, gain))
	require.NoError(t, ac.Connect(gain, ac.Destination()))
	assert.Equal(t, 2, ac.LiveNodes())

	assert.NoError(t, ac.Dispose(gain))
	assert.NoError(t, ac.Dispose(gain))
	assert.Equal(t, 1, ac.LiveNodes())
	assert.True(t, errors.Is(ac.Connect(gain, ac.Destination()), graph.ErrDisposed))
	assert.True(t, errors.Is(ac.Connect(src, gain), graph.ErrDisposed))
	assert.Error(t, ac.Connect(ac.Destination(), src))

	// disposed gain is not rendered
	out := make([]float32, graph.Quantum)
	ac.Pull(out)
	for _, v := range out {
		assert.Equal(t, float32(0), v)
	}

	// stream is released on dispose
	assert.NoError(t, ac.Dispose(src))
	assert.Equal(t, 0, ac.LiveNodes())
	ring.Write([]float32{1, 1})
	assert.Equal(t, 0, ring.Len())
}

func TestDisconnect(t *testing.T) {
	ac := newContext(t)
	src, err := ac.NewStreamSource(constant(2*graph.Quantum, 1))
	require.NoError(t, err)
	require.NoError(t, ac.Connect(src, ac.Destination()))
	out := make([]float32, graph.Quantum)
	ac.Pull(out)
	assert.Equal(t, float32(1), out[0])

	ac.Disconnect(src)
	ac.Pull(out)
	assert.Equal(t, float32(0), out[0])
}

func TestSetSinkID(t *testing.T) {
	ac := newContext(t)
	err := ac.SetSinkID(context.Background(), "speakers")
	var routeErr *graph.OutputRouteError
	require.True(t, errors.As(err, &routeErr))
	assert.Equal(t, "speakers", routeErr.Device)
	assert.True(t, errors.Is(err, graph.ErrRouteUnsupported))
}

func TestClock(t *testing.T) {
	ac, err := graph.NewContext(&graph.Clock{Interval: time.Millisecond})
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return ac.CurrentTime() > 0
	}, time.Second, time.Millisecond)
	assert.NoError(t, ac.Close())
}

func TestRing(t *testing.T) {
	r := graph.NewRing(4)
	r.Write([]float32{1, 2, 3})
	r.WriteFloat64([]float64{4, 5})
	assert.Equal(t, 4, r.Len())

	dst := make([]float64, 3)
	assert.Equal(t, 3, r.Read(dst))
	assert.Equal(t, []float64{2, 3, 4}, dst)
	assert.Equal(t, 1, r.Read(dst))
	assert.Equal(t, 5.0, dst[0])
	assert.Equal(t, 0, r.Read(dst))
}
