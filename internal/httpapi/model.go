package httpapi

// CaptureRequest starts or changes capture. Missing gain keeps the held
// value.
type CaptureRequest struct {
	Device string   `json:"device"`
	Gain   *float64 `json:"gain,omitempty"`
}

// ToneRequest starts or changes tone. Missing fields keep held values.
type ToneRequest struct {
	Frequency *float64 `json:"frequency,omitempty"`
	Gain      *float64 `json:"gain,omitempty"`
}

// RouteRequest changes the audible output device.
type RouteRequest struct {
	Device string `json:"device"`
}

// Status is the state of a pipeline.
type Status struct {
	Name      string  `json:"name"`
	State     string  `json:"state"`
	Title     string  `json:"title"`
	Gain      float64 `json:"gain"`
	Device    string  `json:"device,omitempty"`
	Frequency float64 `json:"frequency,omitempty"`
}

// Data is the last sampled buffer of a pipeline.
type Data struct {
	Title   string  `json:"title"`
	Live    bool    `json:"live"`
	RMS     float64 `json:"rms"`
	Samples []int   `json:"samples,omitempty"`
}

// Error is returned with every failed request.
type Error struct {
	Error string `json:"error"`
}
