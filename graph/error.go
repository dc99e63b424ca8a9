package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrRouteUnsupported is returned by drivers that cannot change the
	// output device at runtime.
	ErrRouteUnsupported = errors.New("output route change is not supported")
	// ErrTapClosed is returned when samples are pulled from disposed
	// analyser.
	ErrTapClosed = errors.New("tap is closed")
	// ErrDisposed is returned when disposed node is used in graph.
	ErrDisposed = errors.New("node is disposed")
	// ErrInvalidState is returned when source start or stop is called
	// in wrong order.
	ErrInvalidState = errors.New("invalid source state")
	// ErrInvalidValue is returned when parameter value is not finite or
	// out of its nominal range.
	ErrInvalidValue = errors.New("invalid parameter value")
	// ErrClosed is returned when context is already closed.
	ErrClosed = errors.New("context is closed")
)

// DeviceAcquisitionError is returned if input stream could not be opened
// for the device. It covers permission denial, absent and busy devices.
type DeviceAcquisitionError struct {
	Device string
	Err    error
}

func (e *DeviceAcquisitionError) Error() string {
	return fmt.Sprintf("acquire input device %s: %v", deviceName(e.Device), e.Err)
}

// Unwrap returns underlying error.
func (e *DeviceAcquisitionError) Unwrap() error {
	return e.Err
}

// OutputRouteError is returned if output destination could not be
// changed. Playback is not affected by this error.
type OutputRouteError struct {
	Device string
	Err    error
}

func (e *OutputRouteError) Error() string {
	return fmt.Sprintf("route output to device %s: %v", deviceName(e.Device), e.Err)
}

// Unwrap returns underlying error.
func (e *OutputRouteError) Unwrap() error {
	return e.Err
}

// ContextInitError is returned if audio processing context is not
// available. It's fatal for the application.
type ContextInitError struct {
	Err error
}

func (e *ContextInitError) Error() string {
	return fmt.Sprintf("init audio context: %v", e.Err)
}

// Unwrap returns underlying error.
func (e *ContextInitError) Unwrap() error {
	return e.Err
}

func deviceName(id string) string {
	if id == "" {
		return "default"
	}
	return id
}
