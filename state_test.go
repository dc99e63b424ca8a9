package wavescope

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		state    State
		event    event
		expected State
		err      error
	}{
		{state: Idle, event: start, expected: Running},
		{state: Idle, event: stop, expected: Idle, err: ErrInvalidState},
		{state: Idle, event: end, expected: Idle, err: ErrInvalidState},
		{state: Running, event: stop, expected: Idle},
		{state: Running, event: end, expected: Idle},
		{state: Running, event: start, expected: Running, err: ErrInvalidState},
	}
	for _, test := range tests {
		next, err := transition(test.state, test.event)
		assert.Equal(t, test.expected, next, "%v while %v", test.event, test.state)
		if test.err != nil {
			assert.True(t, errors.Is(err, test.err))
		} else {
			assert.NoError(t, err)
		}
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stop", stop.String())
}
