package inject

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// ── Metadata accessor ─────────────────────────────────────────────────────────
//
// The resolver never touches reflect directly for member discovery; it asks a
// MetadataReader. The default reader introspects struct tags and method sets,
// but the interface leaves room for a generated-table implementation.

// InjectionKind classifies a dependency edge.
type InjectionKind int

const (
	// EdgeParameter is a constructor/provider parameter, a hard edge:
	// the dependency must be complete before the dependent is constructed.
	EdgeParameter InjectionKind = iota
	// EdgeField is a tagged struct field, injected after construction.
	EdgeField
	// EdgeSetter is an Inject* method parameter, injected after construction.
	EdgeSetter
)

func (k InjectionKind) String() string {
	switch k {
	case EdgeParameter:
		return "parameter"
	case EdgeField:
		return "field"
	case EdgeSetter:
		return "setter"
	}
	return "unknown"
}

// InjectionPoint describes one injectable member of a type.
type InjectionPoint struct {
	Kind     InjectionKind
	Key      Key
	Optional bool

	// Member is the field or method name, for diagnostics.
	Member string

	fieldIndex  []int // index path into the struct, EdgeField only
	methodIndex int   // method index on the pointer type, EdgeSetter only
}

// MetadataReader supplies the injectable members of a type. t is the bound
// concrete type (a pointer to struct). Implementations must be pure
// functions of t; results are cached by callers.
type MetadataReader interface {
	InjectableMembers(t reflect.Type) ([]InjectionPoint, error)
}

// NewMetadataReader returns the default reflection-backed reader.
//
// Field points are exported fields carrying an `inject` tag:
//
//	type Server struct {
//	    Log   Logger  `inject:""`              // required
//	    Cache Cache   `inject:"optional"`      // skipped when unbound
//	    Audit Logger  `inject:"name=audit"`    // qualified key
//	    skip  Helper  `inject:"-"`             // never injected
//	}
//
// Embedded structs are scanned recursively, so points declared on embedded
// types are injected too. Embedding must be by value and exported: a pointer
// embed declaring injection points is rejected (the pointer is nil at
// injection time), as is an unexported embed (its fields cannot be set
// through reflection). Setter points are exported methods named Inject*
// taking exactly one parameter and returning nothing or an error:
//
//	func (s *Server) InjectClock(c Clock) { s.clock = c }
func NewMetadataReader() MetadataReader {
	return &reflectReader{}
}

type reflectReader struct {
	cache sync.Map // reflect.Type -> cachedMembers
}

type cachedMembers struct {
	points []InjectionPoint
	err    error
}

func (r *reflectReader) InjectableMembers(t reflect.Type) ([]InjectionPoint, error) {
	if c, ok := r.cache.Load(t); ok {
		cm := c.(cachedMembers)
		return cm.points, cm.err
	}
	points, err := scanMembers(t)
	r.cache.Store(t, cachedMembers{points: points, err: err})
	return points, err
}

func scanMembers(t reflect.Type) ([]InjectionPoint, error) {
	if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return nil, nil
	}
	var points []InjectionPoint
	var err error
	points, err = scanFields(t.Elem(), nil, points)
	if err != nil {
		return nil, err
	}
	return scanSetters(t, points)
}

func scanFields(st reflect.Type, index []int, points []InjectionPoint) ([]InjectionPoint, error) {
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		path := append(append([]int(nil), index...), i)

		tag, tagged := f.Tag.Lookup("inject")
		if !tagged {
			// Recurse into embedded structs so points on "supertypes"
			// are discovered.
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				before := len(points)
				var err error
				points, err = scanFields(f.Type, path, points)
				if err != nil {
					return nil, err
				}
				// Fields behind an unexported embedded struct cannot be
				// set through reflection.
				if f.PkgPath != "" && len(points) > before {
					return nil, fmt.Errorf("inject: embedded field %s.%s declares injection points but is not exported", st, f.Name)
				}
			}
			// Pointer embeds are nil until someone allocates them, so
			// points behind one cannot be injected reliably.
			if f.Anonymous && f.Type.Kind() == reflect.Ptr && f.Type.Elem().Kind() == reflect.Struct {
				nested, err := scanFields(f.Type.Elem(), nil, nil)
				if err != nil {
					return nil, err
				}
				if len(nested) > 0 {
					return nil, fmt.Errorf("inject: embedded field %s.%s declares injection points behind a pointer; embed %s by value", st, f.Name, f.Type.Elem())
				}
			}
			continue
		}

		opts := parseInjectTag(tag)
		if opts.skip {
			continue
		}
		if f.PkgPath != "" {
			return nil, fmt.Errorf("inject: field %s.%s is tagged for injection but not exported", st, f.Name)
		}
		points = append(points, InjectionPoint{
			Kind:       EdgeField,
			Key:        Key{t: f.Type, name: opts.name},
			Optional:   opts.optional,
			Member:     f.Name,
			fieldIndex: path,
		})
	}
	return points, nil
}

func scanSetters(t reflect.Type, points []InjectionPoint) ([]InjectionPoint, error) {
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !strings.HasPrefix(m.Name, "Inject") || m.Name == "Inject" {
			continue
		}
		mt := m.Type
		if mt.NumIn() != 2 { // receiver + dependency
			return nil, fmt.Errorf("inject: setter %s.%s must take exactly one parameter", t, m.Name)
		}
		if mt.NumOut() > 1 || (mt.NumOut() == 1 && !mt.Out(0).Implements(errorType)) {
			return nil, fmt.Errorf("inject: setter %s.%s must return nothing or an error", t, m.Name)
		}
		points = append(points, InjectionPoint{
			Kind:        EdgeSetter,
			Key:         Key{t: mt.In(1)},
			Member:      m.Name,
			methodIndex: i,
		})
	}
	return points, nil
}

// ── inject tag grammar ────────────────────────────────────────────────────────

type tagOptions struct {
	skip     bool
	optional bool
	name     string
}

// parseInjectTag understands "", "-", "optional", "name=q" and
// comma-combined forms like "optional,name=q".
func parseInjectTag(tag string) tagOptions {
	var opts tagOptions
	if tag == "-" {
		opts.skip = true
		return opts
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "optional":
			opts.optional = true
		case strings.HasPrefix(part, "name="):
			opts.name = strings.TrimPrefix(part, "name=")
		}
	}
	return opts
}

// ── Callables ─────────────────────────────────────────────────────────────────

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// callable is a parsed provider or constructor function. Accepted shapes:
//
//	func(deps...) T
//	func(deps...) (T, error)
//
// Parameters become unqualified dependency keys of their types.
type callable struct {
	fn         reflect.Value
	params     []Key
	out        reflect.Type
	returnsErr bool
}

func parseCallable(fn any) (*callable, error) {
	if fn == nil {
		return nil, fmt.Errorf("inject: nil function")
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("inject: %v is not a function", t)
	}
	switch t.NumOut() {
	case 1:
		if t.Out(0) == errorType {
			return nil, fmt.Errorf("inject: %v must produce a value, not only an error", t)
		}
	case 2:
		if !t.Out(1).Implements(errorType) {
			return nil, fmt.Errorf("inject: second result of %v must be error, got %v", t, t.Out(1))
		}
	default:
		return nil, fmt.Errorf("inject: %v must return T or (T, error), got %d results", t, t.NumOut())
	}
	params := make([]Key, t.NumIn())
	for i := range params {
		params[i] = Key{t: t.In(i)}
	}
	return &callable{
		fn:         v,
		params:     params,
		out:        t.Out(0),
		returnsErr: t.NumOut() == 2,
	}, nil
}

// call invokes the function with already-resolved arguments.
func (c *callable) call(args []reflect.Value) (any, error) {
	results := c.fn.Call(args)
	if c.returnsErr && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}
