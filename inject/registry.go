package inject

import (
	"reflect"
	"sort"
	"sync"
)

// ── Binding registry ──────────────────────────────────────────────────────────

// registry holds one binding per Key. The explicit map is filled during the
// injector's build phase and read-only afterwards, so steady-state lookups
// need no lock. Just-in-time bindings are synthesized lazily under mu.
type registry struct {
	explicit map[Key]*binding

	mu  sync.RWMutex
	jit map[Key]*binding
}

func newRegistry() *registry {
	return &registry{
		explicit: make(map[Key]*binding),
		jit:      make(map[Key]*binding),
	}
}

// register adds an explicit binding. Build phase only.
func (r *registry) register(b *binding) error {
	if _, exists := r.explicit[b.key]; exists {
		return &DuplicateBindingError{Key: b.key}
	}
	r.explicit[b.key] = b
	return nil
}

// lookup returns the binding for key, or nil. Explicit bindings always win
// over just-in-time ones.
func (r *registry) lookup(key Key) *binding {
	if b, ok := r.explicit[key]; ok {
		return b
	}
	r.mu.RLock()
	b := r.jit[key]
	r.mu.RUnlock()
	return b
}

// lookupOrSynthesize returns the binding for key, synthesizing an implicit
// constructor-target binding for eligible concrete types on first request.
func (r *registry) lookupOrSynthesize(key Key) (*binding, error) {
	if b := r.lookup(key); b != nil {
		return b, nil
	}
	impl, err := jitEligible(key)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.jit[key]; ok {
		return b, nil
	}
	b := &binding{key: key, kind: TargetConstructor, impl: impl, jit: true}
	r.jit[key] = b
	return b, nil
}

// jitEligible reports whether key can back an implicit binding: unqualified,
// concrete, a pointer to struct. It returns the concrete type to construct,
// or a MissingBindingError explaining why synthesis is impossible.
func jitEligible(key Key) (reflect.Type, error) {
	t := key.Type()
	switch {
	case key.Qualified():
		return nil, &MissingBindingError{Key: key, Reason: "qualified keys are never bound implicitly"}
	case t.Kind() == reflect.Interface:
		return nil, &MissingBindingError{Key: key, Reason: "interfaces need an explicit binding to an implementation"}
	case t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct:
		return t, nil
	default:
		return nil, &MissingBindingError{Key: key, Reason: "only *struct types are bound implicitly"}
	}
}

// all returns every binding, explicit and synthesized, sorted by key for
// deterministic iteration.
func (r *registry) all() []*binding {
	r.mu.RLock()
	out := make([]*binding, 0, len(r.explicit)+len(r.jit))
	for _, b := range r.explicit {
		out = append(out, b)
	}
	for _, b := range r.jit {
		out = append(out, b)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].key.String() < out[j].key.String()
	})
	return out
}
