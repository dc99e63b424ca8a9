// Package graph implements audio processing graphs: signal sources, gain
// stages, sampling taps and the audible destination.
//
// Graph is owned by Context. Nodes are created, connected and disposed by
// the controlling thread, while signal is rendered by the Driver on its
// own processing path. All changes made by the controlling thread are
// expressed as mutations and applied by the render path at the start of
// the next quantum, so the render path never observes a partially changed
// graph.
package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dudk/wavescope/mutable"
	"github.com/dudk/wavescope/signal"
	"github.com/rs/xid"
)

const (
	// Quantum is the max number of frames rendered at once.
	Quantum = 128
	// DefaultSampleRate is used when no sample rate option is provided.
	DefaultSampleRate = 44100
	// DefaultWindowSize is default analyser window.
	DefaultWindowSize = 2048
)

type (
	// Driver pulls rendered signal from the context on the platform
	// processing path.
	Driver interface {
		// Start begins pulling. It's called once by the context.
		Start(p Puller, sampleRate int) error
		// Route changes the audible output device. Empty id means the
		// default device. Playback must continue if route fails.
		Route(ctx context.Context, deviceID string) error
		// Close stops pulling and releases the device. No Pull calls are
		// made after Close returns.
		Close() error
	}

	// Puller renders signal into the output buffer.
	Puller interface {
		Pull(out []float32)
	}

	// Logger is a global interface for graph loggers.
	Logger interface {
		Debug(...interface{})
		Info(...interface{})
	}

	// Option provides a way to set functional parameters to context.
	Option func(*Context)
)

// Context owns the audio graph and renders it.
type Context struct {
	uid        string
	sampleRate int
	driver     Driver
	log        Logger
	dest       *Destination

	// topology serializes structural mutations.
	topology mutable.Context
	pusher   mutable.Pusher
	frames   int64

	mu     sync.Mutex
	live   map[string]Node
	closed bool

	// render state, guarded by renderMu.
	renderMu  sync.Mutex
	quantum   int64
	nodes     []Node
	terminals []Node
	ended     []func()
	stopped   bool
}

// WithSampleRate sets sample rate of the context.
func WithSampleRate(sampleRate int) Option {
	return func(ac *Context) {
		ac.sampleRate = sampleRate
	}
}

// WithLogger sets logger to context. If this option is not provided,
// silent logger is used.
func WithLogger(logger Logger) Option {
	return func(ac *Context) {
		ac.log = logger
	}
}

// NewContext creates a new context and starts the driver. Nil driver is
// allowed, in this case the owner must call Pull to render the signal.
// Returned error is always *ContextInitError.
func NewContext(driver Driver, options ...Option) (*Context, error) {
	ac := &Context{
		uid:        xid.New().String(),
		sampleRate: DefaultSampleRate,
		driver:     driver,
		log:        defaultLogger,
		topology:   mutable.Mutable(),
		live:       make(map[string]Node),
	}
	for _, option := range options {
		option(ac)
	}
	if ac.sampleRate <= 0 {
		return nil, &ContextInitError{Err: fmt.Errorf("invalid sample rate: %d", ac.sampleRate)}
	}
	ac.dest = &Destination{node: ac.newNode("destination")}
	ac.nodes = append(ac.nodes, ac.dest)
	if driver != nil {
		if err := driver.Start(ac, ac.sampleRate); err != nil {
			return nil, &ContextInitError{Err: err}
		}
	}
	ac.log.Debug(fmt.Sprintf("context %v started with sample rate %d", ac.uid, ac.sampleRate))
	return ac, nil
}

// SampleRate returns context sample rate.
func (ac *Context) SampleRate() int {
	return ac.sampleRate
}

// CurrentTime returns duration of signal rendered so far.
func (ac *Context) CurrentTime() time.Duration {
	return signal.DurationOf(ac.sampleRate, atomic.LoadInt64(&ac.frames))
}

// Destination returns the audible output of the context.
func (ac *Context) Destination() *Destination {
	return ac.dest
}

// LiveNodes returns number of nodes that are created and not disposed.
// Destination is not counted.
func (ac *Context) LiveNodes() int {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return len(ac.live)
}

// SetSinkID routes the audible output to the device. Returned error is
// always *OutputRouteError.
func (ac *Context) SetSinkID(ctx context.Context, deviceID string) error {
	if ac.driver == nil {
		return &OutputRouteError{Device: deviceID, Err: ErrRouteUnsupported}
	}
	if err := ac.driver.Route(ctx, deviceID); err != nil {
		var routeErr *OutputRouteError
		if errors.As(err, &routeErr) {
			return routeErr
		}
		return &OutputRouteError{Device: deviceID, Err: err}
	}
	return nil
}

// Connect routes output of the from node into the to node.
func (ac *Context) Connect(from, to Node) error {
	if _, ok := from.(*Destination); ok {
		return errors.New("destination cannot be connected as input")
	}
	if !ac.isLive(from) {
		return fmt.Errorf("connect %v: %w", from, ErrDisposed)
	}
	if _, ok := to.(*Destination); !ok && !ac.isLive(to) {
		return fmt.Errorf("connect %v: %w", to, ErrDisposed)
	}
	ac.push(func() {
		to.base().inputs = append(to.base().inputs, from)
	})
	return nil
}

// Disconnect removes all outgoing connections of the node.
func (ac *Context) Disconnect(n Node) {
	ac.push(func() {
		ac.disconnect(n)
	})
}

// Dispose disconnects the node, removes it from the graph and releases its
// resources. Node cannot be used after dispose. Consequent calls do
// nothing.
func (ac *Context) Dispose(n Node) error {
	ac.mu.Lock()
	if _, ok := ac.live[n.ID()]; !ok {
		ac.mu.Unlock()
		return nil
	}
	delete(ac.live, n.ID())
	ac.mu.Unlock()

	err := n.release()
	ac.push(func() {
		ac.disconnect(n)
		n.base().inputs = nil
		ac.nodes = remove(ac.nodes, n)
		ac.terminals = remove(ac.terminals, n)
	})
	ac.log.Debug(fmt.Sprintf("context %v disposed %v", ac.uid, n))
	return err
}

// Pull renders len(out) frames of the destination signal. Every terminal
// node is rendered as well, even if it's not connected to destination.
func (ac *Context) Pull(out []float32) {
	ac.renderMu.Lock()
	if ac.stopped {
		ac.renderMu.Unlock()
		for i := range out {
			out[i] = 0
		}
		return
	}
	for off := 0; off < len(out); off += Quantum {
		frames := len(out) - off
		if frames > Quantum {
			frames = Quantum
		}
		ac.quantum++
		ac.pusher.Flush()
		for _, t := range ac.terminals {
			t.pull(ac.quantum, frames)
		}
		mix := ac.dest.pull(ac.quantum, frames)
		for i := 0; i < frames; i++ {
			out[off+i] = float32(clip(mix[i]))
		}
		atomic.AddInt64(&ac.frames, int64(frames))
	}
	ended := ac.ended
	ac.ended = nil
	ac.renderMu.Unlock()

	for _, fn := range ended {
		fn()
	}
}

// Render is a helper to render signal without driver.
func (ac *Context) Render(frames int) {
	ac.Pull(make([]float32, frames))
}

// Close stops the driver, ends all started sources and releases all
// resources. Ended callbacks of sources are called before Close returns.
func (ac *Context) Close() error {
	ac.mu.Lock()
	if ac.closed {
		ac.mu.Unlock()
		return nil
	}
	ac.closed = true
	live := make([]Node, 0, len(ac.live))
	for _, n := range ac.live {
		live = append(live, n)
	}
	ac.mu.Unlock()

	var errs []error
	if ac.driver != nil {
		if err := ac.driver.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close driver: %w", err))
		}
	}

	ac.renderMu.Lock()
	ac.pusher.Flush()
	for _, n := range ac.nodes {
		if osc, ok := n.(*Oscillator); ok {
			osc.end()
		}
	}
	ended := ac.ended
	ac.ended = nil
	ac.stopped = true
	ac.renderMu.Unlock()

	for _, n := range live {
		if err := n.release(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, fn := range ended {
		fn()
	}
	ac.log.Debug(fmt.Sprintf("context %v closed", ac.uid))
	return errors.Join(errs...)
}

// register adds node to the graph.
func (ac *Context) register(n Node, terminal bool) {
	ac.mu.Lock()
	ac.live[n.ID()] = n
	ac.mu.Unlock()
	ac.push(func() {
		ac.nodes = append(ac.nodes, n)
		if terminal {
			ac.terminals = append(ac.terminals, n)
		}
	})
	ac.log.Debug(fmt.Sprintf("context %v created %v", ac.uid, n))
}

func (ac *Context) checkOpen() error {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.closed {
		return fmt.Errorf("context %v: %w", ac.uid, ErrClosed)
	}
	return nil
}

func (ac *Context) isLive(n Node) bool {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	_, ok := ac.live[n.ID()]
	return ok
}

// push adds structural mutation. It's applied at the start of the next
// quantum.
func (ac *Context) push(fn func()) {
	ac.pusher.Put(ac.topology.Mutate(fn))
}

// disconnect removes n from inputs of all nodes. Must be called on
// render path.
func (ac *Context) disconnect(n Node) {
	for _, consumer := range ac.nodes {
		b := consumer.base()
		b.inputs = remove(b.inputs, n)
	}
}

func (ac *Context) newNode(kind string) node {
	return node{
		uid:  xid.New().String(),
		kind: kind,
		once: &sync.Once{},
		in:   make([]float64, Quantum),
		out:  make([]float64, Quantum),
	}
}

func remove(nodes []Node, n Node) []Node {
	result := nodes[:0]
	for _, v := range nodes {
		if v != n {
			result = append(result, v)
		}
	}
	// clear tail to let disposed nodes go
	for i := len(result); i < len(nodes); i++ {
		nodes[i] = nil
	}
	return result
}

func clip(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

type silentLogger struct{}

func (silentLogger) Debug(args ...interface{}) {}

func (silentLogger) Info(args ...interface{}) {}

var defaultLogger silentLogger
