package graph

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/dudk/wavescope/mutable"
)

// Param is a scalar that controls node processing. New value is visible
// through Value immediately and applied by the render path at the next
// quantum, ramped across that quantum to avoid discontinuity.
type Param struct {
	mutable.Context
	name     string
	min, max float64
	pusher   *mutable.Pusher
	value    uint64

	// render state.
	current float64
	target  float64
}

func newParam(ac *Context, name string, value, min, max float64) *Param {
	return &Param{
		Context: mutable.Mutable(),
		name:    name,
		min:     min,
		max:     max,
		pusher:  &ac.pusher,
		value:   math.Float64bits(value),
		current: value,
		target:  value,
	}
}

// Name returns the name of the parameter.
func (p *Param) Name() string {
	return p.name
}

// Value returns the latest value set to the parameter.
func (p *Param) Value() float64 {
	return math.Float64frombits(atomic.LoadUint64(&p.value))
}

// Range returns nominal range of the parameter.
func (p *Param) Range() (min, max float64) {
	return p.min, p.max
}

// SetValue sets the value at the current processing instant.
func (p *Param) SetValue(v float64) error {
	if err := p.validate(v); err != nil {
		return err
	}
	atomic.StoreUint64(&p.value, math.Float64bits(v))
	p.pusher.Put(p.Mutate(func() {
		p.target = v
	}))
	return nil
}

func (p *Param) validate(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < p.min || v > p.max {
		return fmt.Errorf("%s %v not in range [%v, %v]: %w", p.name, v, p.min, p.max, ErrInvalidValue)
	}
	return nil
}

// ramp fills dst with values linearly moving from current to target value.
func (p *Param) ramp(dst []float64) {
	if p.current == p.target {
		for i := range dst {
			dst[i] = p.target
		}
		return
	}
	step := (p.target - p.current) / float64(len(dst))
	for i := range dst {
		dst[i] = p.current + step*float64(i+1)
	}
	p.current = p.target
}
