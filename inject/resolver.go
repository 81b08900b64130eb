package inject

import (
	goerrors "errors"
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// ── Resolver ──────────────────────────────────────────────────────────────────
//
// Resolution is a depth-first walk from a root Key. Each Get call carries a
// resolution value holding the in-progress path (for cycle detection and
// error diagnostics) and the provisional instances of constructions whose
// member injection has not finished yet (for field-cycle tolerance).
//
// A frame moves CONSTRUCTING -> INJECTING once its instance exists and only
// members remain. Meeting a CONSTRUCTING key again on the same path is a
// constructor cycle and fails; meeting a key that already has a provisional
// instance returns that handle instead.

type frameState int

const (
	stateConstructing frameState = iota
	stateInjecting
)

type frame struct {
	key   Key
	state frameState
}

type resolution struct {
	path        []frame
	provisional map[Key]any
}

func newResolution() *resolution {
	return &resolution{provisional: make(map[Key]any)}
}

func (r *resolution) push(key Key, state frameState) {
	r.path = append(r.path, frame{key: key, state: state})
}

func (r *resolution) pop() {
	r.path = r.path[:len(r.path)-1]
}

func (r *resolution) setTopState(state frameState) {
	r.path[len(r.path)-1].state = state
}

// chain snapshots the path keys for error reporting.
func (r *resolution) chain() []Key {
	keys := make([]Key, len(r.path))
	for i, f := range r.path {
		keys[i] = f.key
	}
	return keys
}

// resolve produces an instance for key. member marks the request as coming
// from a member-injection point, which permits provisional results from
// in-flight singleton constructions.
func (in *Injector) resolve(r *resolution, key Key, member bool) (any, error) {
	// Same-stack field cycle: hand out the not-yet-injected instance.
	if v, ok := r.provisional[key]; ok {
		return v, nil
	}

	// A key still constructing on this path is a hard cycle.
	for i, f := range r.path {
		if f.key == key && f.state == stateConstructing {
			cycle := make([]Key, 0, len(r.path)-i)
			for _, cf := range r.path[i:] {
				cycle = append(cycle, cf.key)
			}
			return nil, &CircularDependencyError{Cycle: cycle}
		}
	}

	b, owner, err := in.findBinding(key)
	if err != nil {
		return nil, err
	}

	if b.kind == TargetInstance {
		return b.instance, nil
	}
	return in.provisionScoped(r, owner, b, member)
}

// findBinding walks this injector and then its parent for key, synthesizing
// a just-in-time binding in this injector when neither has one.
func (in *Injector) findBinding(key Key) (*binding, *Injector, error) {
	for cur := in; cur != nil; cur = cur.parent {
		if b := cur.reg.lookup(key); b != nil {
			return b, cur, nil
		}
	}
	b, err := in.reg.lookupOrSynthesize(key)
	if err != nil {
		return nil, nil, err
	}
	return b, in, nil
}

// provisionScoped runs the binding's raw provisioning function through its
// scope. owner is the injector the binding lives in: its scope caches hold
// the results, so parent singletons stay cached in the parent even when
// resolved through a child.
func (in *Injector) provisionScoped(r *resolution, owner *Injector, b *binding, member bool) (any, error) {
	raw := func(publish func(any)) (any, error) {
		return in.provision(r, b, publish)
	}
	switch b.scope {
	case Unscoped:
		return raw(func(any) {})
	case Singleton:
		return owner.singletons.provision(b.key, member, raw)
	default:
		s := owner.scopeByName(b.scope)
		if s == nil {
			return nil, &ProvisioningError{
				Key:   b.key,
				Chain: r.chain(),
				Cause: fmt.Errorf("scope %q is not bound", b.scope),
			}
		}
		return s.Scope(b.key, func() (any, error) {
			return raw(func(any) {})
		})()
	}
}

// provision constructs one instance for b. publish receives the provisional
// handle of constructor targets before member injection starts.
func (in *Injector) provision(r *resolution, b *binding, publish func(any)) (any, error) {
	switch b.kind {
	case TargetLinked:
		r.push(b.key, stateConstructing)
		defer r.pop()
		return in.resolve(r, b.linked, false)

	case TargetProvider:
		r.push(b.key, stateConstructing)
		defer r.pop()
		args, err := in.resolveArgs(r, b.fn)
		if err != nil {
			return nil, err
		}
		v, err := in.callUser(r, b.key, b.fn, args)
		if err != nil {
			return nil, err
		}
		return in.runInterceptors(r, b.key, v)

	case TargetConstructor:
		r.push(b.key, stateConstructing)
		defer r.pop()
		var ptr any
		if b.fn != nil {
			args, err := in.resolveArgs(r, b.fn)
			if err != nil {
				return nil, err
			}
			v, err := in.callUser(r, b.key, b.fn, args)
			if err != nil {
				return nil, err
			}
			ptr = v
		} else {
			ptr = reflect.New(b.impl.Elem()).Interface()
		}

		// Register the provisional handle before member injection so
		// field/setter cycles back into this key resolve to it.
		r.provisional[b.key] = ptr
		publish(ptr)
		r.setTopState(stateInjecting)
		err := in.injectMembers(r, b, ptr)
		delete(r.provisional, b.key)
		if err != nil {
			return nil, err
		}
		return in.runInterceptors(r, b.key, ptr)
	}
	return nil, fmt.Errorf("inject: unhandled target kind %v for %s", b.kind, b.key)
}

// resolveArgs resolves a callable's parameters in declaration order.
func (in *Injector) resolveArgs(r *resolution, c *callable) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(c.params))
	for i, p := range c.params {
		v, err := in.resolve(r, p, false)
		if err != nil {
			return nil, err
		}
		args[i] = valueFor(v, p.Type())
	}
	return args, nil
}

// callUser invokes user-supplied provider/constructor code, converting
// errors and panics into ProvisioningErrors carrying the dependency chain.
func (in *Injector) callUser(r *resolution, key Key, c *callable, args []reflect.Value) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = &ProvisioningError{
				Key:   key,
				Chain: r.chain(),
				Cause: errors.Errorf("panic: %v", rec),
			}
		}
	}()
	v, cerr := c.call(args)
	if cerr != nil {
		return nil, &ProvisioningError{Key: key, Chain: r.chain(), Cause: errors.WithStack(cerr)}
	}
	return v, nil
}

// injectMembers populates the fields and setters of a freshly constructed
// instance. Member injection happens after construction; requests issued
// here run with member=true so in-flight singletons may answer with their
// provisional handles.
func (in *Injector) injectMembers(r *resolution, b *binding, ptr any) error {
	points, err := in.reader.InjectableMembers(b.impl)
	if err != nil {
		return &ProvisioningError{Key: b.key, Chain: r.chain(), Cause: err}
	}
	if len(points) == 0 {
		return nil
	}
	pv := reflect.ValueOf(ptr)
	elem := pv.Elem()
	for _, pt := range points {
		dep, err := in.resolve(r, pt.Key, true)
		if err != nil {
			var missing *MissingBindingError
			if pt.Optional && goerrors.As(err, &missing) {
				continue
			}
			return err
		}
		switch pt.Kind {
		case EdgeField:
			f := elem.FieldByIndex(pt.fieldIndex)
			dv := valueFor(dep, f.Type())
			if !dv.Type().AssignableTo(f.Type()) {
				return &ProvisioningError{
					Key:   b.key,
					Chain: r.chain(),
					Cause: fmt.Errorf("field %s: %T is not assignable to %v", pt.Member, dep, f.Type()),
				}
			}
			f.Set(dv)
		case EdgeSetter:
			if err := in.callSetter(r, b.key, pv.Method(pt.methodIndex), pt, dep); err != nil {
				return err
			}
		}
	}
	return nil
}

func (in *Injector) callSetter(r *resolution, key Key, m reflect.Value, pt InjectionPoint, dep any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &ProvisioningError{
				Key:   key,
				Chain: r.chain(),
				Cause: errors.Errorf("setter %s panicked: %v", pt.Member, rec),
			}
		}
	}()
	results := m.Call([]reflect.Value{valueFor(dep, pt.Key.Type())})
	if len(results) == 1 && !results[0].IsNil() {
		return &ProvisioningError{
			Key:   key,
			Chain: r.chain(),
			Cause: errors.WithStack(results[0].Interface().(error)),
		}
	}
	return nil
}

// runInterceptors offers a fresh instance to the interceptor chain and
// returns whatever the chain yields.
func (in *Injector) runInterceptors(r *resolution, key Key, v any) (any, error) {
	out, err := in.intercept(key, v)
	if err != nil {
		return nil, &ProvisioningError{Key: key, Chain: r.chain(), Cause: err}
	}
	return out, nil
}

// valueFor adapts a resolved dependency to the expected static type,
// mapping nil to the type's zero value.
func valueFor(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type() != t && rv.Type().AssignableTo(t) {
		// Interface parameters need the concrete value boxed as t.
		converted := reflect.New(t).Elem()
		converted.Set(rv)
		return converted
	}
	return rv
}
