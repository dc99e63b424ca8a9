package wavescope

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/xid"

	"github.com/dudk/wavescope/frame"
	"github.com/dudk/wavescope/graph"
	"github.com/dudk/wavescope/metric"
)

// Titles of pipeline panels.
const (
	CaptureTitle = "Microphone Input"
	ToneTitle    = "Audio Output"
)

// Gain ranges and tone defaults.
const (
	MaxCaptureGain   = 2.0
	MaxToneGain      = 1.0
	DefaultFrequency = 440.0
	DefaultToneGain  = 0.3
)

// Pipeline is the common control surface of capture and tone graphs.
type Pipeline interface {
	// Start builds a fresh graph. Running graph is stopped first.
	Start(ctx context.Context) error
	// Stop tears the graph down. It does nothing if pipeline is idle.
	Stop() error
	// SetGain holds the gain and applies it to running graph.
	SetGain(float64) error
	// Gain returns the effective gain.
	Gain() float64
	State() State
	Running() bool
	// Name is either "capture" or "tone".
	Name() string
	Title() string
}

// pipeline contains graph lifecycle shared by capture and tone.
type pipeline struct {
	name      string
	title     string
	ac        *graph.Context
	scheduler frame.Scheduler
	display   Display
	window    int
	log       Logger
	meter     metric.ResetFunc

	state   State
	id      string
	gain    float64
	maxGain float64

	gainNode *graph.Gain
	tap      *graph.Analyser
	sampler  *Sampler
}

// Name returns the pipeline name.
func (p *pipeline) Name() string {
	return p.name
}

// State returns current pipeline state.
func (p *pipeline) State() State {
	return p.state
}

// Running returns true if pipeline has a live graph.
func (p *pipeline) Running() bool {
	return p.state == Running
}

// Gain returns the gain of running graph or the held value if pipeline
// is idle.
func (p *pipeline) Gain() float64 {
	if p.gainNode != nil {
		return p.gainNode.Gain.Value()
	}
	return p.gain
}

// SetGain holds the gain value. If graph is running, the value is
// applied at the current processing instant.
func (p *pipeline) SetGain(v float64) error {
	if math.IsNaN(v) || v < 0 || v > p.maxGain {
		return fmt.Errorf("%s gain %v not in range [0, %v]: %w", p.name, v, p.maxGain, ErrInvalidParameter)
	}
	p.gain = v
	if p.gainNode != nil {
		return p.gainNode.Gain.SetValue(v)
	}
	return nil
}

// Tap returns the tap of running graph. Nil is returned if pipeline is
// idle.
func (p *pipeline) Tap() *graph.Analyser {
	return p.tap
}

// Sampler returns the sampler of running graph.
func (p *pipeline) Sampler() *Sampler {
	return p.sampler
}

// ID returns the id of the current graph.
func (p *pipeline) ID() string {
	return p.id
}

// Title returns current panel title.
func (p *pipeline) Title() string {
	switch {
	case p.state == Running:
		return p.title + " (Live)"
	case p.id != "":
		return p.title + " (Stopped)"
	}
	return p.title
}

func (p *pipeline) apply(e event) error {
	next, err := transition(p.state, e)
	if err != nil {
		return err
	}
	p.log.Debug(fmt.Sprintf("%s %v: %v -> %v", p.name, p.id, p.state, next))
	p.state = next
	return nil
}

// sample starts sampling the tap of just built graph.
func (p *pipeline) sample() {
	p.sampler = NewSampler(p.scheduler, p.tap, p.display, p.Title())
	p.sampler.log = p.log
	p.sampler.meter = p.meter
	p.sampler.Start()
}

// teardown cancels the sampler and disposes nodes in provided order.
// It always disposes all nodes and returns joined errors.
func (p *pipeline) teardown(nodes ...graph.Node) error {
	if p.sampler != nil {
		p.sampler.Cancel()
		p.sampler = nil
	}
	var errs []error
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if err := p.ac.Dispose(n); err != nil {
			errs = append(errs, err)
		}
	}
	p.gainNode, p.tap = nil, nil
	return errors.Join(errs...)
}

// idle redraws the display in stopped state.
func (p *pipeline) idle() {
	p.display.Show(nil, p.Title())
}

// builder creates graph nodes and disposes all of them if any step fails.
type builder struct {
	ac    *graph.Context
	nodes []graph.Node
	err   error
}

func (b *builder) add(n graph.Node, err error) {
	if b.err != nil {
		return
	}
	if err != nil {
		b.err = err
		return
	}
	b.nodes = append(b.nodes, n)
}

func (b *builder) connect(from, to graph.Node) {
	if b.err != nil {
		return
	}
	b.err = b.ac.Connect(from, to)
}

// rollback disposes created nodes in reverse order.
func (b *builder) rollback() {
	for i := len(b.nodes) - 1; i >= 0; i-- {
		b.ac.Dispose(b.nodes[i])
	}
}

// Capture is the microphone pipeline: source -> gain -> tap.
type Capture struct {
	pipeline
	input  graph.InputOpener
	device string
	source *graph.StreamSource
}

// Device returns the id of requested input device. Empty id means the
// default device.
func (c *Capture) Device() string {
	return c.device
}

// SetDevice sets the input device used on the next start.
func (c *Capture) SetDevice(deviceID string) {
	c.device = deviceID
}

// Start acquires the input device and builds the capture graph. If
// device is not acquired, pipeline stays idle and error is
// *graph.DeviceAcquisitionError.
func (c *Capture) Start(ctx context.Context) error {
	if c.Running() {
		if err := c.Stop(); err != nil {
			c.log.Info(fmt.Sprintf("%s %v stop before start: %v", c.name, c.id, err))
		}
	}
	stream, err := c.input.OpenInput(ctx, c.device)
	if err != nil {
		var acqErr *graph.DeviceAcquisitionError
		if !errors.As(err, &acqErr) {
			err = &graph.DeviceAcquisitionError{Device: c.device, Err: err}
		}
		c.log.Info(err)
		return err
	}

	b := builder{ac: c.ac}
	source, err := c.ac.NewStreamSource(stream)
	if err != nil {
		stream.Close()
		return err
	}
	b.add(source, nil)
	gain, err := c.ac.NewGain(c.gain)
	b.add(gain, err)
	tap, err := c.ac.NewAnalyser(c.window)
	b.add(tap, err)
	b.connect(source, gain)
	b.connect(gain, tap)
	if b.err != nil {
		b.rollback()
		return fmt.Errorf("build %s graph: %w", c.name, b.err)
	}

	if err := c.apply(start); err != nil {
		b.rollback()
		return err
	}
	c.id = xid.New().String()
	c.source, c.gainNode, c.tap = source, gain, tap
	c.sample()
	c.log.Info(fmt.Sprintf("%s %v started on %s device", c.name, c.id, deviceName(c.device)))
	return nil
}

// Stop tears down tap, gain and source in that order and releases the
// input device.
func (c *Capture) Stop() error {
	if !c.Running() {
		return nil
	}
	err := c.teardown(c.tap, c.gainNode, c.source)
	c.source = nil
	c.apply(stop)
	c.idle()
	c.log.Info(fmt.Sprintf("%s %v stopped", c.name, c.id))
	return err
}

// Tone is the test tone pipeline: oscillator -> gain -> tap and
// gain -> destination.
type Tone struct {
	pipeline
	frequency float64
	osc       *graph.Oscillator
	post      func(func())
	// generation identifies the graph ended callback belongs to.
	generation uint64
}

// Frequency returns the frequency of running oscillator or the held
// value if pipeline is idle.
func (t *Tone) Frequency() float64 {
	if t.osc != nil {
		return t.osc.Frequency.Value()
	}
	return t.frequency
}

// SetFrequency holds the frequency. If graph is running, the value is
// applied at the current processing instant. Frequency must be in range
// (0, sampleRate/2).
func (t *Tone) SetFrequency(f float64) error {
	nyquist := float64(t.ac.SampleRate()) / 2
	if math.IsNaN(f) || f <= 0 || f >= nyquist {
		return fmt.Errorf("%s frequency %v not in range (0, %v): %w", t.name, f, nyquist, ErrInvalidParameter)
	}
	t.frequency = f
	if t.osc != nil {
		return t.osc.Frequency.SetValue(f)
	}
	return nil
}

// Oscillator returns the source of running graph.
func (t *Tone) Oscillator() *graph.Oscillator {
	return t.osc
}

// Start builds the tone graph and starts the oscillator.
func (t *Tone) Start(ctx context.Context) error {
	if t.Running() {
		if err := t.Stop(); err != nil {
			t.log.Info(fmt.Sprintf("%s %v stop before start: %v", t.name, t.id, err))
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b := builder{ac: t.ac}
	osc, err := t.ac.NewOscillator(t.frequency)
	b.add(osc, err)
	gain, err := t.ac.NewGain(t.gain)
	b.add(gain, err)
	tap, err := t.ac.NewAnalyser(t.window)
	b.add(tap, err)
	b.connect(osc, gain)
	b.connect(gain, tap)
	b.connect(gain, t.ac.Destination())
	if b.err != nil {
		b.rollback()
		return fmt.Errorf("build %s graph: %w", t.name, b.err)
	}

	t.generation++
	generation := t.generation
	osc.OnEnded(func() {
		// called on render path, handled on controlling thread.
		t.post(func() {
			t.ended(generation)
		})
	})
	if err := osc.Start(); err != nil {
		b.rollback()
		return err
	}
	if err := t.apply(start); err != nil {
		b.rollback()
		return err
	}
	t.id = xid.New().String()
	t.osc, t.gainNode, t.tap = osc, gain, tap
	t.sample()
	t.log.Info(fmt.Sprintf("%s %v started at %vHz", t.name, t.id, t.frequency))
	return nil
}

// Stop stops the oscillator and tears down source, gain and tap.
func (t *Tone) Stop() error {
	if !t.Running() {
		return nil
	}
	// ended callback of this graph is stale from now.
	t.generation++
	if err := t.osc.Stop(); err != nil {
		t.log.Info(fmt.Sprintf("%s %v stop oscillator: %v", t.name, t.id, err))
	}
	err := t.shutdown(stop)
	t.log.Info(fmt.Sprintf("%s %v stopped", t.name, t.id))
	return err
}

// ended handles the end of oscillator that wasn't stopped by the user.
func (t *Tone) ended(generation uint64) {
	if generation != t.generation || !t.Running() {
		t.log.Debug(fmt.Sprintf("%s ignored stale end of generation %d", t.name, generation))
		return
	}
	t.generation++
	if err := t.shutdown(end); err != nil {
		t.log.Info(fmt.Sprintf("%s %v teardown after end: %v", t.name, t.id, err))
	}
	t.log.Info(fmt.Sprintf("%s %v ended", t.name, t.id))
}

func (t *Tone) shutdown(e event) error {
	err := t.teardown(t.osc, t.gainNode, t.tap)
	t.osc = nil
	t.apply(e)
	t.idle()
	return err
}

func deviceName(id string) string {
	if id == "" {
		return "default"
	}
	return id
}
