// Package mutable allows to change state of running graph nodes. Changes
// are expressed as mutations bound to a mutable context. Mutations are
// collected by the controlling thread and applied by the render path at
// the start of the next processing quantum.
package mutable

import (
	"github.com/rs/xid"
)

type (
	// Context identifies the state changed by mutations. It's embedded
	// into mutable structures. The zero value is immutable.
	Context xid.ID

	// Mutation is a change of a single context.
	Mutation struct {
		Context
		mutator MutatorFunc
	}

	// Mutations groups pending changes by their contexts.
	Mutations map[Context][]MutatorFunc

	// MutatorFunc changes the state.
	MutatorFunc func()
)

// Mutable returns new unique context.
func Mutable() Context {
	return Context(xid.New())
}

// Mutate binds the change to the context. It panics if the context is
// immutable.
func (c Context) Mutate(fn MutatorFunc) Mutation {
	if !c.IsMutable() {
		panic("mutate immutable context")
	}
	return Mutation{Context: c, mutator: fn}
}

// IsMutable returns false for the zero context.
func (c Context) IsMutable() bool {
	return c != Context{}
}

func (c Context) String() string {
	return xid.ID(c).String()
}

// Apply executes the change right away.
func (m Mutation) Apply() {
	m.mutator()
}

// Put adds the mutation to the set. Set is allocated if nil. Mutations
// of immutable context are dropped.
func (ms Mutations) Put(m Mutation) Mutations {
	if !m.IsMutable() {
		return ms
	}
	if ms == nil {
		ms = make(Mutations)
	}
	ms[m.Context] = append(ms[m.Context], m.mutator)
	return ms
}

// ApplyTo executes and removes all mutations of the context in order
// they were put.
func (ms Mutations) ApplyTo(c Context) {
	fns, ok := ms[c]
	if !ok {
		return
	}
	delete(ms, c)
	for _, fn := range fns {
		fn()
	}
}
