package entity

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry resolves entity types by name. The zero value is ready to use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Type
}

// NewRegistry constructs a registry preloaded with the provided types.
func NewRegistry(types ...Type) (*Registry, error) {
	reg := &Registry{}
	for _, typ := range types {
		if err := reg.Register(typ); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register adds a type. Names are trimmed and must be unique.
func (r *Registry) Register(typ Type) error {
	if err := typ.Validate(); err != nil {
		return err
	}
	name := strings.TrimSpace(typ.Name)
	typ.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.types == nil {
		r.types = make(map[string]Type)
	}
	if _, exists := r.types[name]; exists {
		return fmt.Errorf("entity: type %q already registered", name)
	}
	r.types[name] = typ
	return nil
}

// MustRegister registers typ and panics on failure. Intended for package init.
func (r *Registry) MustRegister(typ Type) {
	if err := r.Register(typ); err != nil {
		panic(err)
	}
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (Type, bool) {
	if r == nil {
		return Type{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	typ, ok := r.types[strings.TrimSpace(name)]
	return typ, ok
}

// Names returns the registered type names in lexical order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
