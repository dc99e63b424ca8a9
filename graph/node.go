package graph

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// Node is a single processing stage of the graph.
type Node interface {
	fmt.Stringer
	// ID returns unique id of the node.
	ID() string

	base() *node
	// pull renders the node output for the quantum. Output is cached, so
	// node with multiple consumers is rendered once per quantum.
	pull(quantum int64, frames int) []float64
	// release frees resources held by the node.
	release() error
}

// node contains state shared by all node types. Inputs and buffers are
// only accessed on render path.
type node struct {
	uid     string
	kind    string
	inputs  []Node
	in      []float64
	out     []float64
	quantum int64
	once    *sync.Once
}

// ID returns unique id of the node.
func (n *node) ID() string {
	return n.uid
}

func (n *node) String() string {
	return fmt.Sprintf("%s %s", n.kind, n.uid)
}

func (n *node) base() *node {
	return n
}

// rendered checks if the node output is already rendered for the quantum
// and marks it as rendered.
func (n *node) rendered(quantum int64) bool {
	if n.quantum == quantum {
		return true
	}
	n.quantum = quantum
	return false
}

// mix sums outputs of all inputs into the input buffer.
func (n *node) mix(quantum int64, frames int) []float64 {
	in := n.in[:frames]
	for i := range in {
		in[i] = 0
	}
	for _, src := range n.inputs {
		vecmath.AddBlockInPlace(in, src.pull(quantum, frames))
	}
	return in
}

// releaseOnce executes fn once for the node life.
func (n *node) releaseOnce(fn func() error) (err error) {
	n.once.Do(func() {
		err = fn()
	})
	return
}

func (n *node) release() error {
	return nil
}
