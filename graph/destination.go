package graph

// Destination is the audible output of the context. It mixes all
// connected inputs.
type Destination struct {
	node
}

func (d *Destination) pull(quantum int64, frames int) []float64 {
	if d.rendered(quantum) {
		return d.in[:frames]
	}
	return d.mix(quantum, frames)
}
