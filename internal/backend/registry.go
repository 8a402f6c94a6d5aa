package backend

import (
	"fmt"
	"sync"
)

// Factory builds a backend from its descriptor.
type Factory func(d Descriptor, env Env) Backend

var factories = map[ID]Factory{}

// register is called from each backend file's init.
func register(id ID, f Factory) {
	factories[id] = f
}

// Registry resolves IDs to backends. Each backend is built once and shared.
type Registry struct {
	table *Table
	env   Env

	mu    sync.Mutex
	cache map[ID]Backend
}

// NewRegistry returns a registry over table.
func NewRegistry(table *Table, env Env) *Registry {
	return &Registry{table: table, env: env, cache: map[ID]Backend{}}
}

// IDs returns every backend ID in table order.
func (r *Registry) IDs() []ID { return r.table.IDs() }

// Get returns the backend for id.
func (r *Registry) Get(id ID) (Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.cache[id]; ok {
		return b, nil
	}
	d, ok := r.table.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, id)
	}
	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no implementation", ErrUnknownBackend, id)
	}
	b := f(d, r.env)
	r.cache[id] = b
	return b, nil
}

// All returns every backend in table order.
func (r *Registry) All() []Backend {
	var out []Backend
	for _, id := range r.IDs() {
		if b, err := r.Get(id); err == nil {
			out = append(out, b)
		}
	}
	return out
}
