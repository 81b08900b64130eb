package inject

import (
	"fmt"
	"strings"
)

// ── Graph validation ──────────────────────────────────────────────────────────
//
// Validation walks the dependency graph without constructing anything, so a
// misconfigured graph fails at New in both stages. It checks that every
// reachable required edge has a binding (or could be synthesized), that every
// selected scope exists, and that no cycle consists purely of hard edges.
//
// Hard edges (constructor/provider parameters, linked targets) must complete
// before the dependent exists; field and setter edges are satisfied after
// construction via provisional handles, so a cycle containing one is legal.
// The hard-edge stack therefore resets whenever the walk crosses a soft edge.

type validator struct {
	in *Injector

	done     map[Key]bool
	visiting map[Key]bool
	virtual  map[Key]*binding

	missing map[Key]bool
	cycles  map[string]bool
	scopes  map[string]bool

	errs []error
}

func (in *Injector) validateGraph() []error {
	v := &validator{
		in:       in,
		done:     make(map[Key]bool),
		visiting: make(map[Key]bool),
		virtual:  make(map[Key]*binding),
		missing:  make(map[Key]bool),
		cycles:   make(map[string]bool),
		scopes:   make(map[string]bool),
	}
	for _, b := range in.reg.all() {
		v.visit(b, nil)
	}
	return v.errs
}

func (v *validator) visit(b *binding, hardStack []Key) {
	key := b.key
	for i, k := range hardStack {
		if k == key {
			v.reportCycle(hardStack[i:])
			return
		}
	}
	// visiting without being on the hard stack means the walk re-entered
	// through a soft edge; the provisional handle satisfies that at runtime.
	if v.done[key] || v.visiting[key] {
		return
	}
	v.visiting[key] = true
	defer func() {
		delete(v.visiting, key)
		v.done[key] = true
	}()

	v.checkScope(b)

	edges, err := b.edges(v.in.reader)
	if err != nil {
		v.errs = append(v.errs, fmt.Errorf("inject: %s: %w", key, err))
		return
	}
	for _, e := range edges {
		dep, err := v.lookup(e.Key)
		if err != nil {
			if !e.Optional && !v.missing[e.Key] {
				v.missing[e.Key] = true
				v.errs = append(v.errs, err)
			}
			continue
		}
		var next []Key
		if e.Kind == EdgeParameter {
			next = append(hardStack, key)
		}
		v.visit(dep, next)
	}
}

// lookup resolves a dependency binding the way the resolver would, but dry:
// just-in-time synthesis is simulated with virtual bindings that never touch
// the registry.
func (v *validator) lookup(key Key) (*binding, error) {
	for cur := v.in; cur != nil; cur = cur.parent {
		if b := cur.reg.lookup(key); b != nil {
			return b, nil
		}
	}
	if b, ok := v.virtual[key]; ok {
		return b, nil
	}
	impl, err := jitEligible(key)
	if err != nil {
		return nil, err
	}
	b := &binding{key: key, kind: TargetConstructor, impl: impl, jit: true}
	v.virtual[key] = b
	return b, nil
}

func (v *validator) checkScope(b *binding) {
	switch b.scope {
	case Unscoped, Singleton:
		return
	}
	if v.scopes[b.scope] {
		return
	}
	if v.in.scopeByName(b.scope) == nil {
		v.scopes[b.scope] = true
		v.errs = append(v.errs, fmt.Errorf("inject: %s selects unbound scope %q", b.key, b.scope))
	}
}

// reportCycle records a constructor cycle once, regardless of which member
// the walk entered it through.
func (v *validator) reportCycle(cycle []Key) {
	canon := canonicalCycle(cycle)
	if v.cycles[canon] {
		return
	}
	v.cycles[canon] = true
	v.errs = append(v.errs, &CircularDependencyError{Cycle: cycle})
}

// canonicalCycle rotates the cycle so its lexicographically smallest key
// leads, making A->B->A and B->A->B the same cycle.
func canonicalCycle(cycle []Key) string {
	min := 0
	for i := 1; i < len(cycle); i++ {
		if cycle[i].String() < cycle[min].String() {
			min = i
		}
	}
	parts := make([]string, 0, len(cycle))
	for i := range cycle {
		parts = append(parts, cycle[(min+i)%len(cycle)].String())
	}
	return strings.Join(parts, " -> ")
}
