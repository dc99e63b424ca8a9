package wavescope

import (
	"errors"
)

var (
	// ErrInvalidState is returned if pipeline cannot handle the event in
	// its current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidParameter is returned when gain or frequency is out of
	// its range. Held value is not changed.
	ErrInvalidParameter = errors.New("invalid parameter")
)
