// Package mock provides mocks for graph platform capabilities and drawing
// surfaces and allows to execute integration tests without devices.
package mock

import (
	"context"
	"image/color"
	"sync"

	"github.com/dudk/wavescope/graph"
	"github.com/dudk/wavescope/render"
	"github.com/dudk/wavescope/signal"
)

const (
	defaultWidth  = 800
	defaultHeight = 200
)

// Input mocks a graph.InputOpener interface. Opened streams produce
// constant Value.
type Input struct {
	Value       float64
	ErrorOnOpen error

	mu      sync.Mutex
	opened  int
	closed  int
	devices []string
}

// OpenInput opens a new stream for the device.
func (m *Input) OpenInput(ctx context.Context, deviceID string) (graph.InputStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, &graph.DeviceAcquisitionError{Device: deviceID, Err: err}
	}
	if m.ErrorOnOpen != nil {
		return nil, &graph.DeviceAcquisitionError{Device: deviceID, Err: m.ErrorOnOpen}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened++
	m.devices = append(m.devices, deviceID)
	return &stream{input: m, value: m.Value}, nil
}

// Opened returns number of opened streams.
func (m *Input) Opened() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened
}

// Closed returns number of closed streams.
func (m *Input) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Live returns number of streams that are opened and not closed.
func (m *Input) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened - m.closed
}

// Devices returns ids of requested devices.
func (m *Input) Devices() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.devices...)
}

type stream struct {
	input *Input
	value float64
	once  sync.Once
}

func (s *stream) Read(dst []float64) int {
	for i := range dst {
		dst[i] = s.value
	}
	return len(dst)
}

func (s *stream) Close() error {
	s.once.Do(func() {
		s.input.mu.Lock()
		s.input.closed++
		s.input.mu.Unlock()
	})
	return nil
}

// Driver mocks a graph.Driver interface. Signal is rendered only when
// Pull is called.
type Driver struct {
	ErrorOnStart error
	ErrorOnRoute error

	mu     sync.Mutex
	puller graph.Puller
	device string
	closed bool
}

// Start implements graph.Driver.
func (m *Driver) Start(p graph.Puller, sampleRate int) error {
	if m.ErrorOnStart != nil {
		return m.ErrorOnStart
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puller = p
	return nil
}

// Route implements graph.Driver.
func (m *Driver) Route(ctx context.Context, deviceID string) error {
	if m.ErrorOnRoute != nil {
		return m.ErrorOnRoute
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.device = deviceID
	return nil
}

// Close implements graph.Driver.
func (m *Driver) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Pull renders n frames and returns them. Nothing is rendered after
// driver is closed.
func (m *Driver) Pull(n int) []float32 {
	out := make([]float32, n)
	m.mu.Lock()
	p, closed := m.puller, m.closed
	m.mu.Unlock()
	if p != nil && !closed {
		p.Pull(out)
	}
	return out
}

// Device returns the last routed device.
func (m *Driver) Device() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.device
}

// Closed returns true if driver was closed.
func (m *Driver) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Point is a path vertex.
type Point struct {
	X, Y float64
}

// Op identifies the type of recorded draw call.
type Op int

// Recorded operations.
const (
	FillRect Op = iota
	Stroke
	FillText
)

// Call is a recorded draw call.
type Call struct {
	Op
	X, Y, Width, Height float64
	Color               color.Color
	LineWidth           float64
	// Points contains sub-paths of stroke.
	Points [][]Point
	Text   string
	Style  render.Text
}

// Surface mocks a render.Surface interface and records draw calls.
type Surface struct {
	Width, Height float64
	Calls         []Call
	paths         [][]Point
}

// Size returns size of the surface. Default size is used if not set.
func (m *Surface) Size() (float64, float64) {
	if m.Width == 0 || m.Height == 0 {
		return defaultWidth, defaultHeight
	}
	return m.Width, m.Height
}

// FillRect records the call.
func (m *Surface) FillRect(x, y, w, h float64, c color.Color) {
	m.Calls = append(m.Calls, Call{Op: FillRect, X: x, Y: y, Width: w, Height: h, Color: c})
}

// BeginPath resets the current path.
func (m *Surface) BeginPath() {
	m.paths = nil
}

// MoveTo starts a new sub-path.
func (m *Surface) MoveTo(x, y float64) {
	m.paths = append(m.paths, []Point{{x, y}})
}

// LineTo appends point to the current sub-path.
func (m *Surface) LineTo(x, y float64) {
	if len(m.paths) == 0 {
		m.MoveTo(x, y)
		return
	}
	last := len(m.paths) - 1
	m.paths[last] = append(m.paths[last], Point{x, y})
}

// Stroke records the call with current path.
func (m *Surface) Stroke(c color.Color, lineWidth float64) {
	m.Calls = append(m.Calls, Call{Op: Stroke, Color: c, LineWidth: lineWidth, Points: m.paths})
}

// FillText records the call.
func (m *Surface) FillText(text string, x, y float64, style render.Text) {
	m.Calls = append(m.Calls, Call{Op: FillText, X: x, Y: y, Color: style.Color, Text: text, Style: style})
}

// Strokes returns stroke calls of the color.
func (m *Surface) Strokes(c color.Color) []Call {
	var result []Call
	for _, call := range m.Calls {
		if call.Op == Stroke && call.Color == c {
			result = append(result, call)
		}
	}
	return result
}

// Texts returns all drawn labels in order.
func (m *Surface) Texts() []string {
	var result []string
	for _, call := range m.Calls {
		if call.Op == FillText {
			result = append(result, call.Text)
		}
	}
	return result
}

// Reset discards recorded calls.
func (m *Surface) Reset() {
	m.Calls = nil
	m.paths = nil
}

// Tap mocks a sampling tap and counts pulls.
type Tap struct {
	Length      int
	Value       uint8
	ErrorOnPull error
	pulls       int
}

// Size returns length of pulled buffer.
func (m *Tap) Size() int {
	if m.Length == 0 {
		return graph.DefaultWindowSize / 2
	}
	return m.Length
}

// TimeDomainBytes fills dst with Value.
func (m *Tap) TimeDomainBytes(dst signal.Bytes) (int, error) {
	m.pulls++
	if m.ErrorOnPull != nil {
		return 0, m.ErrorOnPull
	}
	dst.Fill(m.Value)
	return len(dst), nil
}

// Pulls returns number of TimeDomainBytes calls.
func (m *Tap) Pulls() int {
	return m.pulls
}

// Frame is a recorded Show call.
type Frame struct {
	Buffer signal.Bytes
	Title  string
}

// Display records shown frames. Buffers are copied.
type Display struct {
	Frames []Frame
}

// Show records the frame.
func (m *Display) Show(buf signal.Bytes, title string) {
	var b signal.Bytes
	if buf != nil {
		b = append(signal.Bytes{}, buf...)
	}
	m.Frames = append(m.Frames, Frame{Buffer: b, Title: title})
}

// Last returns the last shown frame.
func (m *Display) Last() Frame {
	if len(m.Frames) == 0 {
		return Frame{}
	}
	return m.Frames[len(m.Frames)-1]
}
