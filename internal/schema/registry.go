package schema

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry holds resolved entities by name and by Go type.
//
// Thread-safety: all methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Entity
	byType map[reflect.Type]*Entity
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Entity),
		byType: make(map[reflect.Type]*Entity),
	}
}

// Register adds an entity. Registering two entities with the same name is
// an error.
func (r *Registry) Register(e *Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[e.Name()]; ok {
		return &LoadError{Code: ErrCodeDuplicate, Message: fmt.Sprintf("entity %q declared twice", e.Name())}
	}
	r.byName[e.Name()] = e
	return nil
}

// Lookup returns the entity registered under name.
func (r *Registry) Lookup(name string) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[normalize(name)]
	return e, ok
}

// Entities returns all registered entities sorted by name.
func (r *Registry) Entities() []*Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Entity, 0, len(r.byName))
	for _, e := range r.byName {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// EntityOf returns the entity describing struct type T, describing and
// registering it on first use. opts only apply to that first description.
func EntityOf[T any](r *Registry, opts ...Option) (*Entity, error) {
	rt := reflect.TypeOf((*T)(nil)).Elem()

	r.mu.RLock()
	e, ok := r.byType[rt]
	r.mu.RUnlock()
	if ok {
		return e, nil
	}

	e, err := Describe[T](opts...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have won the race.
	if cached, ok := r.byType[rt]; ok {
		return cached, nil
	}
	r.byType[rt] = e
	if _, taken := r.byName[e.Name()]; !taken {
		r.byName[e.Name()] = e
	}
	return e, nil
}
