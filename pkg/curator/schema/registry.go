package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a lookup table from event type to Definition.
//
// It is read-only after initialization: register everything at process
// start, then share the registry freely across goroutines.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[string]*Definition)}
}

// Register adds a definition. Re-registering a type replaces it.
func (r *Registry) Register(def *Definition) error {
	if def == nil {
		return fmt.Errorf("definition is required")
	}
	if def.Type == "" {
		return fmt.Errorf("event type is required")
	}
	for field := range def.Constraints {
		if _, ok := def.Fields[field]; !ok {
			return fmt.Errorf("constraint on untyped field %s for %s", field, def.Type)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Type] = def
	return nil
}

// MustRegister adds a definition, panicking on error. Intended for
// process-start wiring where a bad definition is a programming error.
func (r *Registry) MustRegister(def *Definition) {
	if err := r.Register(def); err != nil {
		panic(fmt.Sprintf("failed to register event schema: %v", err))
	}
}

// Get returns the definition for an event type.
// An absent definition is not an error: unknown event types flow through
// the pipeline with a warning.
func (r *Registry) Get(eventType string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[eventType]
	return def, ok
}

// Has reports whether a definition exists for the event type.
func (r *Registry) Has(eventType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.definitions[eventType]
	return ok
}

// Types returns all registered event types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.definitions))
	for t := range r.definitions {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Range iterates over all definitions until fn returns false.
func (r *Registry) Range(fn func(*Definition) bool) {
	r.mu.RLock()
	defs := make([]*Definition, 0, len(r.definitions))
	for _, d := range r.definitions {
		defs = append(defs, d)
	}
	r.mu.RUnlock()

	for _, d := range defs {
		if !fn(d) {
			return
		}
	}
}
