package inject

import "reflect"

// ── Binding descriptors ───────────────────────────────────────────────────────

// TargetKind identifies how a binding produces instances.
type TargetKind int

const (
	// TargetInstance returns a pre-built value.
	TargetInstance TargetKind = iota
	// TargetLinked aliases another Key.
	TargetLinked
	// TargetProvider invokes a factory function with injected parameters.
	TargetProvider
	// TargetConstructor constructs a concrete type, then injects members.
	TargetConstructor
)

func (k TargetKind) String() string {
	switch k {
	case TargetInstance:
		return "instance"
	case TargetLinked:
		return "linked"
	case TargetProvider:
		return "provider"
	case TargetConstructor:
		return "constructor"
	}
	return "unknown"
}

// binding maps one Key to exactly one target plus a scope. Exactly one of
// instance / linked / fn+impl is meaningful per kind.
type binding struct {
	key  Key
	kind TargetKind

	instance any          // TargetInstance
	linked   Key          // TargetLinked
	fn       *callable    // TargetProvider, or explicit TargetConstructor function
	impl     reflect.Type // TargetConstructor concrete type (*struct)

	scope string // "" = unscoped
	jit   bool   // synthesized on demand rather than declared
}

// DependencyEdge is one edge of the dependency graph: the dependent binding
// needs Key through an injection point of the given kind.
type DependencyEdge struct {
	Key      Key
	Kind     InjectionKind
	Optional bool
}

// BindingInfo is the read-only snapshot of a binding exposed by
// Injector.Bindings for tooling such as the grapher.
type BindingInfo struct {
	Key        Key
	Kind       TargetKind
	Target     Key // linked bindings only
	Scope      string
	JustInTime bool
	Deps       []DependencyEdge
}

// edges computes the binding's dependency edges. Parameter and linked edges
// are hard (must be complete before construction); field and setter edges
// are soft (injected into a provisional instance).
func (b *binding) edges(reader MetadataReader) ([]DependencyEdge, error) {
	var deps []DependencyEdge
	switch b.kind {
	case TargetInstance:
		return nil, nil
	case TargetLinked:
		return []DependencyEdge{{Key: b.linked, Kind: EdgeParameter}}, nil
	case TargetProvider:
		for _, p := range b.fn.params {
			deps = append(deps, DependencyEdge{Key: p, Kind: EdgeParameter})
		}
		return deps, nil
	case TargetConstructor:
		if b.fn != nil {
			for _, p := range b.fn.params {
				deps = append(deps, DependencyEdge{Key: p, Kind: EdgeParameter})
			}
		}
		points, err := reader.InjectableMembers(b.impl)
		if err != nil {
			return nil, err
		}
		for _, pt := range points {
			deps = append(deps, DependencyEdge{Key: pt.Key, Kind: pt.Kind, Optional: pt.Optional})
		}
		return deps, nil
	}
	return nil, nil
}

func (b *binding) info(reader MetadataReader) BindingInfo {
	deps, _ := b.edges(reader)
	return BindingInfo{
		Key:        b.key,
		Kind:       b.kind,
		Target:     b.linked,
		Scope:      b.scope,
		JustInTime: b.jit,
		Deps:       deps,
	}
}
