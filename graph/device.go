package graph

// DeviceKind tells if device captures or plays the signal.
type DeviceKind string

// Device kinds.
const (
	InputDevice  DeviceKind = "input"
	OutputDevice DeviceKind = "output"
)

// Device describes an audio device available to drivers and input
// openers. Empty ID refers to the default device.
type Device struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Kind       DeviceKind `json:"kind"`
	Channels   int        `json:"channels"`
	SampleRate float64    `json:"sampleRate"`
	Default    bool       `json:"default"`
}
