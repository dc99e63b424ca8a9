package graph

import (
	"fmt"
	"math"
	"sync/atomic"
)

const (
	created int32 = iota
	started
	stopped
)

// Oscillator is a periodic source of sine shape. It runs until stopped
// or until the context is closed.
type Oscillator struct {
	node
	ac        *Context
	Frequency *Param
	state     int32

	// render state.
	playing bool
	phase   float64
	freqs   []float64
	onEnded func()
}

// NewOscillator creates a new oscillator with provided frequency.
func (ac *Context) NewOscillator(frequency float64) (*Oscillator, error) {
	if err := ac.checkOpen(); err != nil {
		return nil, err
	}
	nyquist := float64(ac.sampleRate) / 2
	osc := &Oscillator{
		node:      ac.newNode("oscillator"),
		ac:        ac,
		Frequency: newParam(ac, "frequency", frequency, 0, nyquist),
		freqs:     make([]float64, Quantum),
	}
	if err := osc.Frequency.validate(frequency); err != nil {
		return nil, err
	}
	ac.register(osc, false)
	return osc, nil
}

// OnEnded sets the callback that is called once when oscillator stops.
// It's called outside of the render path.
func (osc *Oscillator) OnEnded(fn func()) {
	osc.ac.push(func() {
		osc.onEnded = fn
	})
}

// Start starts the signal generation. Oscillator can be started once.
func (osc *Oscillator) Start() error {
	if !atomic.CompareAndSwapInt32(&osc.state, created, started) {
		return fmt.Errorf("start %v: %w", osc, ErrInvalidState)
	}
	osc.ac.push(func() {
		osc.playing = true
	})
	return nil
}

// Stop stops the signal generation. Consequent calls do nothing.
func (osc *Oscillator) Stop() error {
	if atomic.LoadInt32(&osc.state) == created {
		return fmt.Errorf("stop %v: %w", osc, ErrInvalidState)
	}
	if !atomic.CompareAndSwapInt32(&osc.state, started, stopped) {
		return nil
	}
	osc.ac.push(osc.end)
	return nil
}

// Started returns true if oscillator was started and not stopped yet.
func (osc *Oscillator) Started() bool {
	return atomic.LoadInt32(&osc.state) == started
}

// end stops generation on render path and schedules ended callback.
func (osc *Oscillator) end() {
	if !osc.playing {
		return
	}
	atomic.StoreInt32(&osc.state, stopped)
	osc.playing = false
	if osc.onEnded != nil {
		osc.ac.ended = append(osc.ac.ended, osc.onEnded)
		osc.onEnded = nil
	}
}

func (osc *Oscillator) pull(quantum int64, frames int) []float64 {
	out := osc.out[:frames]
	if osc.rendered(quantum) {
		return out
	}
	if !osc.playing {
		for i := range out {
			out[i] = 0
		}
		return out
	}
	freqs := osc.freqs[:frames]
	osc.Frequency.ramp(freqs)
	delta := 2 * math.Pi / float64(osc.ac.sampleRate)
	for i := range out {
		out[i] = math.Sin(osc.phase)
		osc.phase += delta * freqs[i]
	}
	// keep phase in a reasonable range to avoid precision loss
	osc.phase = math.Mod(osc.phase, 2*math.Pi)
	return out
}
