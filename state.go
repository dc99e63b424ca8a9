package wavescope

import (
	"fmt"
)

// State identifies one of the possible states pipeline can be in.
type State int

// states
const (
	// Idle means that pipeline has no graph and can be started.
	Idle State = iota
	// Running means that pipeline graph is live and sampled.
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// event identifies the type of event
type event int

// types of events.
const (
	start event = iota
	stop
	// end is sent when source ends without stop request.
	end
)

func (e event) String() string {
	switch e {
	case start:
		return "start"
	case stop:
		return "stop"
	case end:
		return "end"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// transitions lists all legal state changes. Start while running is
// handled by the pipeline as stop followed by start.
var transitions = map[State]map[event]State{
	Idle: {
		start: Running,
	},
	Running: {
		stop: Idle,
		end:  Idle,
	},
}

// transition returns the state after the event.
func transition(s State, e event) (State, error) {
	if next, ok := transitions[s][e]; ok {
		return next, nil
	}
	return s, fmt.Errorf("%v while %v: %w", e, s, ErrInvalidState)
}
