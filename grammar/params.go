package grammar

import (
	"iter"
	"slices"
)

// Params holds named nodes available to builders during a parse, such as
// predefined constants or query arguments.
//
// Names are kept in insertion order. A nil *Params is empty and safe to read.
type Params[N any] struct {
	names []string
	nodes map[string]N
}

// NewParams returns an empty Params.
func NewParams[N any]() *Params[N] {
	return &Params[N]{nodes: make(map[string]N)}
}

// Set binds name to node, replacing any previous binding.
func (p *Params[N]) Set(name string, node N) *Params[N] {
	if p.nodes == nil {
		p.nodes = make(map[string]N)
	}

	if _, ok := p.nodes[name]; !ok {
		p.names = append(p.names, name)
	}

	p.nodes[name] = node

	return p
}

// Get returns the node bound to name.
func (p *Params[N]) Get(name string) (N, bool) {
	if p == nil {
		var zero N

		return zero, false
	}

	node, ok := p.nodes[name]

	return node, ok
}

// Len returns the number of bound names.
func (p *Params[N]) Len() int {
	if p == nil {
		return 0
	}

	return len(p.names)
}

// Names returns the bound names in insertion order.
func (p *Params[N]) Names() []string {
	if p == nil {
		return nil
	}

	return slices.Clone(p.names)
}

// All iterates the bindings in insertion order.
func (p *Params[N]) All() iter.Seq2[string, N] {
	return func(yield func(string, N) bool) {
		if p == nil {
			return
		}

		for _, name := range p.names {
			if !yield(name, p.nodes[name]) {
				return
			}
		}
	}
}
