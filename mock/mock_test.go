package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/wavescope/graph"
	"github.com/dudk/wavescope/mock"
	"github.com/dudk/wavescope/signal"
)

func TestInput(t *testing.T) {
	m := &mock.Input{Value: 0.5}
	s, err := m.OpenInput(context.Background(), "mic")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Live())

	dst := make([]float64, 4)
	assert.Equal(t, 4, s.Read(dst))
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, dst)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.Equal(t, 1, m.Opened())
	assert.Equal(t, 1, m.Closed())
	assert.Equal(t, 0, m.Live())
	assert.Equal(t, []string{"mic"}, m.Devices())

	errDenied := errors.New("permission denied")
	m.ErrorOnOpen = errDenied
	_, err = m.OpenInput(context.Background(), "")
	var acqErr *graph.DeviceAcquisitionError
	require.True(t, errors.As(err, &acqErr))
	assert.True(t, errors.Is(err, errDenied))
	assert.Equal(t, 1, m.Opened())
}

func TestDriver(t *testing.T) {
	d := &mock.Driver{}
	ac, err := graph.NewContext(d)
	require.NoError(t, err)
	src, err := ac.NewStreamSource(graph.NewRing(1))
	require.NoError(t, err)
	require.NoError(t, ac.Connect(src, ac.Destination()))
	assert.Equal(t, 16, len(d.Pull(16)))
	assert.Equal(t, signal.DurationOf(ac.SampleRate(), 16), ac.CurrentTime())

	assert.NoError(t, ac.SetSinkID(context.Background(), "speakers"))
	assert.Equal(t, "speakers", d.Device())

	assert.NoError(t, ac.Close())
	assert.True(t, d.Closed())
}

func TestTap(t *testing.T) {
	tap := &mock.Tap{Value: 130}
	buf := make(signal.Bytes, tap.Size())
	n, err := tap.TimeDomainBytes(buf)
	assert.NoError(t, err)
	assert.Equal(t, graph.DefaultWindowSize/2, n)
	assert.Equal(t, uint8(130), buf[n-1])
	assert.Equal(t, 1, tap.Pulls())
}

func TestDisplay(t *testing.T) {
	d := &mock.Display{}
	buf := signal.Bytes{1, 2}
	d.Show(buf, "live")
	buf[0] = 0
	d.Show(nil, "stopped")

	assert.Equal(t, signal.Bytes{1, 2}, d.Frames[0].Buffer)
	assert.Nil(t, d.Last().Buffer)
	assert.Equal(t, "stopped", d.Last().Title)
}
