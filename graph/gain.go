package graph

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Gain multiplies the mix of its inputs by the gain parameter.
type Gain struct {
	node
	Gain  *Param
	gains []float64
}

// NewGain creates a new gain node with initial gain value.
func (ac *Context) NewGain(value float64) (*Gain, error) {
	if err := ac.checkOpen(); err != nil {
		return nil, err
	}
	g := &Gain{
		node:  ac.newNode("gain"),
		Gain:  newParam(ac, "gain", value, -math.MaxFloat32, math.MaxFloat32),
		gains: make([]float64, Quantum),
	}
	if err := g.Gain.validate(value); err != nil {
		return nil, err
	}
	ac.register(g, false)
	return g, nil
}

func (g *Gain) pull(quantum int64, frames int) []float64 {
	out := g.out[:frames]
	if g.rendered(quantum) {
		return out
	}
	copy(out, g.mix(quantum, frames))
	gains := g.gains[:frames]
	g.Gain.ramp(gains)
	vecmath.MulBlockInPlace(out, gains)
	return out
}
