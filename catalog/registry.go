package catalog

import (
	"sort"
	"sync"

	"github.com/kbukum/typedflow/errors"
)

// Registry maps names used in definitions to Go functions.
type Registry struct {
	mu  sync.RWMutex
	fns map[string]any
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]any)}
}

// Register adds fn under name, replacing any earlier entry. The function's
// signature is checked when a definition using it is built.
func (r *Registry) Register(name string, fn any) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[name] = fn
	return r
}

// Get returns the function registered under name.
func (r *Registry) Get(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[name]
	return fn, ok
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) lookup(name string) (any, error) {
	fn, ok := r.Get(name)
	if !ok {
		return nil, errors.NotFound("function", name)
	}
	return fn, nil
}
