package inject

import "reflect"

// ── Key ───────────────────────────────────────────────────────────────────────

// Key identifies a binding: a semantic type plus an optional name qualifier.
// Two keys are equal iff their type and qualifier are equal, so a Key is
// usable directly as a map key. Keys are immutable values.
//
//	// Guice: Key.get(Service.class)
//	inject.Of[Service]()
//
//	// Guice: Key.get(Service.class, Names.named("backup"))
//	inject.Named[Service]("backup")
type Key struct {
	t    reflect.Type
	name string
}

// Of returns the unqualified Key for type T.
func Of[T any]() Key {
	return Key{t: typeFor[T]()}
}

// Named returns the Key for type T qualified by name.
func Named[T any](name string) Key {
	return Key{t: typeFor[T](), name: name}
}

// KeyOf derives a Key from a value. It accepts:
//   - a Key (returned as-is),
//   - a nil interface pointer token like (*Service)(nil), from which the
//     interface type is extracted,
//   - any other value, keyed by its dynamic type.
//
// KeyOf panics on an untyped nil; use Of[T]() instead.
func KeyOf(v any) Key {
	if k, ok := v.(Key); ok {
		return k
	}
	t := reflect.TypeOf(v)
	if t == nil {
		panic("inject: KeyOf(nil) has no type; use Of[T]()")
	}
	if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
		t = t.Elem()
	}
	return Key{t: t}
}

// keyForType wraps an already-reflected type.
func keyForType(t reflect.Type) Key { return Key{t: t} }

// Type returns the semantic type the Key addresses.
func (k Key) Type() reflect.Type { return k.t }

// Name returns the qualifier, or "" for an unqualified Key.
func (k Key) Name() string { return k.name }

// Qualified reports whether the Key carries a name qualifier.
func (k Key) Qualified() bool { return k.name != "" }

// WithName returns a copy of the Key with the given qualifier.
func (k Key) WithName(name string) Key {
	k.name = name
	return k
}

// String renders "pkg.Type" or `pkg.Type(name="q")`.
func (k Key) String() string {
	if k.t == nil {
		return "<nil key>"
	}
	if k.name == "" {
		return k.t.String()
	}
	return k.t.String() + `(name="` + k.name + `")`
}

func typeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
