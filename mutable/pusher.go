package mutable

import "sync"

// Pusher collects mutations from the controlling thread until the render
// path takes them. It's safe for concurrent use. The zero value is ready
// to use.
type Pusher struct {
	mu        sync.Mutex
	order     []Context
	mutations Mutations
}

// Put mutations to the pusher. Mutations of immutable contexts are
// ignored.
func (p *Pusher) Put(mutations ...Mutation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range mutations {
		if !m.IsMutable() {
			continue
		}
		if _, ok := p.mutations[m.Context]; !ok {
			p.order = append(p.order, m.Context)
		}
		p.mutations = p.mutations.Put(m)
	}
}

// Take returns all collected mutations in order of first appearance of
// their contexts and resets the pusher.
func (p *Pusher) Take() ([]Context, Mutations) {
	p.mu.Lock()
	defer p.mu.Unlock()
	order, ms := p.order, p.mutations
	p.order, p.mutations = nil, nil
	return order, ms
}

// Flush applies all collected mutations in order they were put for every
// context.
func (p *Pusher) Flush() {
	order, ms := p.Take()
	for _, ctx := range order {
		ms.ApplyTo(ctx)
	}
}

// Len returns number of contexts with pending mutations.
func (p *Pusher) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.order)
}
