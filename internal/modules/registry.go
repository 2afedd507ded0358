package modules

import (
	"fmt"
	"sync"

	"glimpseqc/internal/files"
)

// Registry holds the registered modules in registration order.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Module
	ordered []Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Module),
	}
}

// Register adds a module. Nil modules, empty names and duplicate names are
// rejected.
func (r *Registry) Register(m Module) error {
	if m == nil {
		return fmt.Errorf("cannot register nil module")
	}
	name := m.Name()
	if name == "" {
		return fmt.Errorf("module name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("module %q already registered", name)
	}
	r.byName[name] = m
	r.ordered = append(r.ordered, m)
	return nil
}

// Modules returns the registered modules in registration order.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Module(nil), r.ordered...)
}

// Get retrieves a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byName[name]
	return m, ok
}

// Count returns the number of registered modules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Patterns returns the union of all modules' search patterns. Pattern keys
// are namespaced by module convention ("glimpse/err_spl"), so collisions
// across modules indicate a registration bug and are reported.
func (r *Registry) Patterns() (files.Patterns, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	union := make(files.Patterns)
	for _, m := range r.ordered {
		for key, globs := range m.Patterns() {
			if _, exists := union[key]; exists {
				return nil, fmt.Errorf("search pattern %q declared by more than one module", key)
			}
			union[key] = append([]string(nil), globs...)
		}
	}
	return union, nil
}
