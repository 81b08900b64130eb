package inject

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// ── Stage ─────────────────────────────────────────────────────────────────────

// Stage selects how much work New does up front.
type Stage int

const (
	// Development validates the binding graph but constructs nothing, for
	// fast startup while iterating.
	Development Stage = iota
	// Production additionally constructs every explicit singleton eagerly,
	// so provisioning failures surface at boot instead of first use.
	Production
)

func (s Stage) String() string {
	switch s {
	case Development:
		return "development"
	case Production:
		return "production"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ── Injector ──────────────────────────────────────────────────────────────────

// Injector is the built container: an immutable binding registry plus the
// scope caches that hold constructed instances.
//
//	// Guice: Injector injector = Guice.createInjector(stage, modules)
//	in, err := inject.New(inject.Production, appModule)
type Injector struct {
	parent *Injector

	stage  Stage
	log    *zap.Logger
	reader MetadataReader

	reg        *registry
	singletons *singletonScope
	scopes     map[string]Scope

	interceptors []interceptorEntry
}

// Config carries the knobs NewWith accepts beyond modules.
type Config struct {
	Stage Stage
	// Logger receives build and validation events. nil means no logging.
	Logger *zap.Logger
	// Reader overrides the reflection metadata reader, mainly for tests.
	Reader MetadataReader
}

// New builds an injector from modules. Every configuration problem found
// during module replay and graph validation is collected into a single
// ConfigurationError.
func New(stage Stage, modules ...Module) (*Injector, error) {
	return NewWith(Config{Stage: stage}, modules...)
}

// NewWith is New with explicit configuration.
func NewWith(cfg Config, modules ...Module) (*Injector, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reader := cfg.Reader
	if reader == nil {
		reader = NewMetadataReader()
	}
	in := &Injector{
		stage:      cfg.Stage,
		log:        log,
		reader:     reader,
		reg:        newRegistry(),
		singletons: newSingletonScope(),
		scopes:     make(map[string]Scope),
	}
	if err := in.build(modules); err != nil {
		return nil, err
	}
	return in, nil
}

// Child creates a child injector. Lookup is strict two-level: a key bound in
// the child resolves with the child's binding, anything else falls back to
// the parent. Parent singletons stay cached in the parent and are shared
// with all children.
//
//	// Guice: injector.createChildInjector(modules)
func (in *Injector) Child(modules ...Module) (*Injector, error) {
	child := &Injector{
		parent:     in,
		stage:      in.stage,
		log:        in.log,
		reader:     in.reader,
		reg:        newRegistry(),
		singletons: newSingletonScope(),
		scopes:     make(map[string]Scope),
	}
	if err := child.build(modules); err != nil {
		return nil, err
	}
	return child, nil
}

// build replays modules into the registry, validates the resulting graph and,
// in Production, eagerly constructs explicit singletons.
func (in *Injector) build(modules []Module) error {
	var binder Binder
	for _, m := range modules {
		binder.Install(m)
	}
	errs := append([]error(nil), binder.errs...)

	for _, sc := range binder.scopes {
		if _, dup := in.scopes[sc.name]; dup || in.scopeByName(sc.name) != nil {
			errs = append(errs, fmt.Errorf("inject: scope %q bound twice", sc.name))
			continue
		}
		in.scopes[sc.name] = sc.scope
	}
	in.interceptors = binder.interceptors

	for _, cmd := range binder.bindings {
		b, err := cmd.toBinding()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := in.reg.register(b); err != nil {
			errs = append(errs, err)
			continue
		}
		in.log.Debug("binding registered",
			zap.Stringer("key", b.key),
			zap.Stringer("target", b.kind),
			zap.String("scope", scopeLabel(b.scope)),
		)
	}

	if len(errs) == 0 {
		errs = append(errs, in.validateGraph()...)
	}
	if len(errs) == 0 && in.stage == Production {
		errs = append(errs, in.constructEagerSingletons()...)
	}
	if len(errs) > 0 {
		return &ConfigurationError{Errors: errs}
	}
	in.log.Info("injector ready",
		zap.Stringer("stage", in.stage),
		zap.Int("bindings", len(in.reg.explicit)),
		zap.Bool("child", in.parent != nil),
	)
	return nil
}

// constructEagerSingletons provisions every explicit singleton-scoped
// binding, collecting failures instead of stopping at the first.
func (in *Injector) constructEagerSingletons() []error {
	var errs []error
	for _, b := range in.reg.all() {
		if b.scope != Singleton || b.kind == TargetInstance {
			continue
		}
		in.log.Debug("eager singleton", zap.Stringer("key", b.key))
		if _, err := in.Get(b.key); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// scopeByName finds a custom scope registered on this injector or any
// ancestor. Built-in scope names never reach here.
func (in *Injector) scopeByName(name string) Scope {
	for cur := in; cur != nil; cur = cur.parent {
		if s, ok := cur.scopes[name]; ok {
			return s
		}
	}
	return nil
}

// ── Provisioning surface ──────────────────────────────────────────────────────

// Get resolves the key (per KeyOf conventions) to an instance.
//
//	// Guice: injector.getInstance(Key.get(Service.class))
//	svc, err := in.Get(inject.Of[Service]())
func (in *Injector) Get(key any) (any, error) {
	return in.resolve(newResolution(), KeyOf(key), false)
}

// MustGet is Get, panicking on error. For composition roots where a failure
// is fatal anyway.
func (in *Injector) MustGet(key any) any {
	v, err := in.Get(key)
	if err != nil {
		panic(err)
	}
	return v
}

// ProviderFor returns a Provider producing instances of key on demand. The
// provider defers all resolution work, including just-in-time synthesis, to
// call time.
//
//	// Guice: injector.getProvider(key)
func (in *Injector) ProviderFor(key any) Provider {
	k := KeyOf(key)
	return func() (any, error) {
		return in.resolve(newResolution(), k, false)
	}
}

// InjectMembers performs field and setter injection on an existing instance
// the injector did not construct. target must be a non-nil pointer to struct.
//
//	// Guice: injector.injectMembers(target)
func (in *Injector) InjectMembers(target any) error {
	t := reflect.TypeOf(target)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("inject: InjectMembers requires a *struct, got %T", target)
	}
	b := &binding{key: keyForType(t), kind: TargetConstructor, impl: t}
	return in.injectMembers(newResolution(), b, target)
}

// Call invokes fn with every parameter resolved from the injector. If fn's
// last result is an error it is returned; other results are discarded.
func (in *Injector) Call(fn any) error {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return fmt.Errorf("inject: Call requires a function, got %T", fn)
	}
	t := v.Type()
	r := newResolution()
	args := make([]reflect.Value, t.NumIn())
	for i := range args {
		dep, err := in.resolve(r, keyForType(t.In(i)), false)
		if err != nil {
			return err
		}
		args[i] = valueFor(dep, t.In(i))
	}
	results := v.Call(args)
	if n := len(results); n > 0 && t.Out(n-1) == errorType {
		if last := results[n-1]; !last.IsNil() {
			return last.Interface().(error)
		}
	}
	return nil
}

// Bindings returns a snapshot of this injector's own bindings, explicit and
// just-in-time, sorted by key. Parent bindings are reachable via Parent.
func (in *Injector) Bindings() []BindingInfo {
	bs := in.reg.all()
	infos := make([]BindingInfo, 0, len(bs))
	for _, b := range bs {
		infos = append(infos, b.info(in.reader))
	}
	return infos
}

// Stage reports the stage the injector was built in.
func (in *Injector) Stage() Stage { return in.stage }

// Parent returns the parent injector, or nil for a root.
func (in *Injector) Parent() *Injector { return in.parent }

func scopeLabel(scope string) string {
	if scope == Unscoped {
		return "unscoped"
	}
	return scope
}

// ── Typed helpers ─────────────────────────────────────────────────────────────

// Get resolves Of[T]() from the injector and asserts the result to T.
func Get[T any](in *Injector) (T, error) {
	return GetKey[T](in, Of[T]())
}

// GetNamed resolves Named[T](name).
func GetNamed[T any](in *Injector, name string) (T, error) {
	return GetKey[T](in, Named[T](name))
}

// GetKey resolves an explicit Key whose semantic type must be T.
func GetKey[T any](in *Injector, key Key) (T, error) {
	var zero T
	v, err := in.resolve(newResolution(), key, false)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("inject: %s resolved to %T", key, v)
	}
	return typed, nil
}

// MustGet is Get[T], panicking on error.
func MustGet[T any](in *Injector) T {
	v, err := Get[T](in)
	if err != nil {
		panic(err)
	}
	return v
}

// ProviderOf returns a typed provider for Of[T]().
func ProviderOf[T any](in *Injector) func() (T, error) {
	return func() (T, error) {
		return Get[T](in)
	}
}
