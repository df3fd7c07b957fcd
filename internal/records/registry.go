package records

import (
	"fmt"
	"sync"
)

// Registry holds the record kinds served by the API together with a sample
// value of their model type, used to describe their fields.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	kinds  map[string]Kind
	fields map[string][]FieldInfo
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		kinds:  make(map[string]Kind),
		fields: make(map[string][]FieldInfo),
	}
}

// Register adds a kind. Registering the same name twice is an error.
func (r *Registry) Register(kind Kind, sample any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kinds[kind.Name]; ok {
		return fmt.Errorf("record kind %q already registered", kind.Name)
	}
	r.kinds[kind.Name] = kind
	r.fields[kind.Name] = Describe(sample)
	r.order = append(r.order, kind.Name)
	return nil
}

// Get returns the kind registered under name.
func (r *Registry) Get(name string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[name]
	return k, ok
}

// Names returns the registered kind names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// TypeInfo returns the description of one kind. ok is false if the kind is not registered.
func (r *Registry) TypeInfo(name string) (info TypeInfo, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[name]
	if !ok {
		return TypeInfo{}, false
	}
	return TypeInfo{
		Kind:        k.Name,
		Title:       k.Title,
		Description: k.Description,
		UniqueField: k.UniqueField,
		DateField:   k.DateField,
		HasSummary:  k.Summary != nil,
		Fields:      r.fields[name],
	}, true
}

// AllTypeInfo returns descriptions of every registered kind in registration order.
func (r *Registry) AllTypeInfo() []TypeInfo {
	names := r.Names()
	out := make([]TypeInfo, 0, len(names))
	for _, name := range names {
		if info, ok := r.TypeInfo(name); ok {
			out = append(out, info)
		}
	}
	return out
}
