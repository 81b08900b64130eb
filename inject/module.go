package inject

import (
	"fmt"
	"reflect"
)

// ── Modules & Binder DSL ──────────────────────────────────────────────────────
//
// Modules are the declarative surface: they record an ordered list of binding
// commands into a Binder, and the injector replays the commands into its
// registry at build time. Configuration mistakes are collected, not thrown,
// so New can report every problem at once.

// Module contributes bindings to an injector.
//
//	// Guice: class AppModule extends AbstractModule { configure() {...} }
type Module interface {
	Configure(b *Binder)
}

// ModuleFunc adapts a function to the Module interface.
type ModuleFunc func(b *Binder)

// Configure implements Module.
func (f ModuleFunc) Configure(b *Binder) { f(b) }

// Binder records binding commands during module configuration.
type Binder struct {
	bindings     []*bindingCommand
	scopes       []scopeCommand
	interceptors []interceptorEntry
	errs         []error
}

type scopeCommand struct {
	name  string
	scope Scope
}

// bindingCommand is one recorded Bind chain. It maps onto exactly one of the
// four binding-target kinds when replayed.
type bindingCommand struct {
	key       Key
	kind      TargetKind
	targetSet bool

	instance any
	linked   Key
	fn       any

	scope    string
	scopeSet bool

	override bool
}

// Bind starts a fluent binding chain for key. key follows KeyOf conventions:
// a Key value, an interface token like (*Service)(nil), or any value.
//
//	// Guice: bind(Service.class).to(ServiceImpl.class).in(Singleton.class)
//	b.Bind(inject.Of[Service]()).To(inject.Of[*ServiceImpl]()).AsSingleton()
func (b *Binder) Bind(key any) *BindingBuilder {
	cmd := &bindingCommand{key: KeyOf(key)}
	b.bindings = append(b.bindings, cmd)
	return &BindingBuilder{binder: b, cmd: cmd}
}

// BindScope registers a custom scope under its selection name.
//
//	// Guice: bindScope(RequestScoped.class, requestScope)
func (b *Binder) BindScope(name string, s Scope) {
	if name == Unscoped || name == Singleton {
		b.AddError(fmt.Errorf("inject: scope name %q is reserved", name))
		return
	}
	if s == nil {
		b.AddError(fmt.Errorf("inject: nil scope bound as %q", name))
		return
	}
	b.scopes = append(b.scopes, scopeCommand{name: name, scope: s})
}

// BindInterceptor appends a provisioning interceptor for keys accepted by
// match. Interceptors run in registration order on every fresh instance,
// after member injection. A dependent that resolved the key through a
// field-injection cycle already holds the provisional handle, so it keeps
// the pre-interception instance even when the chain returns a replacement.
func (b *Binder) BindInterceptor(match Matcher, ic ProvisionInterceptor) {
	if match == nil || ic == nil {
		b.AddError(fmt.Errorf("inject: BindInterceptor requires a matcher and an interceptor"))
		return
	}
	b.interceptors = append(b.interceptors, interceptorEntry{match: match, ic: ic})
}

// Install runs another module against this binder.
func (b *Binder) Install(m Module) {
	if m == nil {
		b.AddError(fmt.Errorf("inject: Install(nil) module"))
		return
	}
	m.Configure(b)
}

// AddError records a configuration problem to be reported by New.
func (b *Binder) AddError(err error) {
	if err != nil {
		b.errs = append(b.errs, err)
	}
}

// ── BindingBuilder ────────────────────────────────────────────────────────────

// BindingBuilder is the fluent tail of a Bind call.
type BindingBuilder struct {
	binder *Binder
	cmd    *bindingCommand
}

func (bb *BindingBuilder) setTarget(kind TargetKind) bool {
	if bb.cmd.targetSet {
		bb.binder.AddError(fmt.Errorf("inject: binding for %s declares two targets", bb.cmd.key))
		return false
	}
	bb.cmd.targetSet = true
	bb.cmd.kind = kind
	return true
}

// ToInstance binds the key to a pre-built value. Instance bindings behave as
// eager singletons: every provision returns the same value.
//
//	// Guice: bind(Config.class).toInstance(cfg)
func (bb *BindingBuilder) ToInstance(v any) *BindingBuilder {
	if bb.setTarget(TargetInstance) {
		bb.cmd.instance = v
	}
	return bb
}

// To links the key to another key; resolving the alias resolves the target
// and returns that instance directly. The alias takes the target's scope
// unless explicitly re-scoped with In.
//
//	// Guice: bind(Service.class).to(ServiceImpl.class)
func (bb *BindingBuilder) To(target any) *BindingBuilder {
	if bb.setTarget(TargetLinked) {
		bb.cmd.linked = KeyOf(target)
	}
	return bb
}

// ToProvider binds the key to a factory function of shape func(deps...) T or
// func(deps...) (T, error). Parameters are injected. The result is returned
// as-is: no member injection is performed on provider-sourced values.
//
//	// Guice: bind(Conn.class).toProvider(ConnProvider.class)
func (bb *BindingBuilder) ToProvider(fn any) *BindingBuilder {
	if bb.setTarget(TargetProvider) {
		bb.cmd.fn = fn
	}
	return bb
}

// ToConstructor binds the key to a constructor function. The constructor's
// parameters are injected first; the constructed value then receives field
// and setter injection, so member-injection cycles are tolerated.
//
//	// Guice: bind(Service.class).toConstructor(ctor)
func (bb *BindingBuilder) ToConstructor(fn any) *BindingBuilder {
	if bb.setTarget(TargetConstructor) {
		bb.cmd.fn = fn
	}
	return bb
}

// ToSelf explicitly binds a concrete *struct key to its own type, i.e. the
// binding a just-in-time lookup would synthesize, but declared, which makes
// it eligible for scoping and eager validation.
func (bb *BindingBuilder) ToSelf() *BindingBuilder {
	bb.setTarget(TargetConstructor)
	return bb
}

// In selects the binding's scope by name. The empty name is unscoped.
func (bb *BindingBuilder) In(scope string) *BindingBuilder {
	if bb.cmd.scopeSet {
		bb.binder.AddError(fmt.Errorf("inject: binding for %s declares two scopes", bb.cmd.key))
		return bb
	}
	bb.cmd.scopeSet = true
	bb.cmd.scope = scope
	return bb
}

// AsSingleton is shorthand for In(Singleton).
func (bb *BindingBuilder) AsSingleton() *BindingBuilder {
	return bb.In(Singleton)
}

// ── Override (testing doubles) ────────────────────────────────────────────────

// Override composes modules so that later .With modules replace same-Key
// bindings from the base modules instead of colliding. The usual duplicate
// detection still applies within each side.
//
//	// Guice: Modules.override(prod).with(fakes)
//	in, err := inject.New(stage, inject.Override(prodModule).With(fakeDB))
func Override(modules ...Module) *OverrideBuilder {
	return &OverrideBuilder{base: modules}
}

// OverrideBuilder is the half-built result of Override.
type OverrideBuilder struct {
	base []Module
}

// With returns a Module applying the base bindings with overrides replacing
// any base binding that shares a Key.
func (o *OverrideBuilder) With(overrides ...Module) Module {
	return ModuleFunc(func(b *Binder) {
		var base, over Binder
		for _, m := range o.base {
			base.Install(m)
		}
		for _, m := range overrides {
			over.Install(m)
		}
		b.errs = append(b.errs, base.errs...)
		b.errs = append(b.errs, over.errs...)

		replaced := make(map[Key]bool, len(over.bindings))
		for _, cmd := range over.bindings {
			replaced[cmd.key] = true
		}
		for _, cmd := range base.bindings {
			if replaced[cmd.key] {
				continue
			}
			b.bindings = append(b.bindings, cmd)
		}
		for _, cmd := range over.bindings {
			b.bindings = append(b.bindings, cmd)
		}
		b.scopes = append(b.scopes, base.scopes...)
		b.scopes = append(b.scopes, over.scopes...)
		b.interceptors = append(b.interceptors, base.interceptors...)
		b.interceptors = append(b.interceptors, over.interceptors...)
	})
}

// ── Command replay ────────────────────────────────────────────────────────────

// toBinding materializes a recorded command into a registry binding.
func (cmd *bindingCommand) toBinding() (*binding, error) {
	if !cmd.targetSet {
		// bind(X) with no target: treat a concrete key as ToSelf, reject
		// everything else.
		if _, err := jitEligible(cmd.key); err != nil {
			return nil, fmt.Errorf("inject: binding for %s declares no target", cmd.key)
		}
		cmd.targetSet = true
		cmd.kind = TargetConstructor
	}

	b := &binding{key: cmd.key, kind: cmd.kind, scope: cmd.scope}
	switch cmd.kind {
	case TargetInstance:
		if cmd.instance == nil {
			return nil, fmt.Errorf("inject: nil instance bound for %s", cmd.key)
		}
		if !assignableTo(cmd.instance, cmd.key) {
			return nil, fmt.Errorf("inject: instance of type %T is not assignable to %s", cmd.instance, cmd.key)
		}
		b.instance = cmd.instance
		if cmd.scopeSet && cmd.scope != Singleton {
			return nil, fmt.Errorf("inject: instance binding for %s cannot be scoped %q", cmd.key, cmd.scope)
		}

	case TargetLinked:
		if cmd.linked == cmd.key {
			return nil, fmt.Errorf("inject: binding for %s links to itself", cmd.key)
		}
		if !cmd.linked.Type().AssignableTo(cmd.key.Type()) {
			return nil, fmt.Errorf("inject: linked target %s is not assignable to %s", cmd.linked, cmd.key)
		}
		b.linked = cmd.linked

	case TargetProvider:
		c, err := parseCallable(cmd.fn)
		if err != nil {
			return nil, fmt.Errorf("inject: provider for %s: %w", cmd.key, err)
		}
		if !c.out.AssignableTo(cmd.key.Type()) {
			return nil, fmt.Errorf("inject: provider for %s produces %v", cmd.key, c.out)
		}
		b.fn = c

	case TargetConstructor:
		if cmd.fn != nil {
			c, err := parseCallable(cmd.fn)
			if err != nil {
				return nil, fmt.Errorf("inject: constructor for %s: %w", cmd.key, err)
			}
			if !c.out.AssignableTo(cmd.key.Type()) {
				return nil, fmt.Errorf("inject: constructor for %s produces %v", cmd.key, c.out)
			}
			if c.out.Kind() != reflect.Ptr || c.out.Elem().Kind() != reflect.Struct {
				return nil, fmt.Errorf("inject: constructor for %s must produce a *struct, got %v", cmd.key, c.out)
			}
			b.fn = c
			b.impl = c.out
		} else {
			impl, err := jitEligible(cmd.key)
			if err != nil {
				return nil, fmt.Errorf("inject: %s cannot be bound to itself: %w", cmd.key, err)
			}
			b.impl = impl
		}
	}
	return b, nil
}

func assignableTo(v any, key Key) bool {
	t := reflect.TypeOf(v)
	return t != nil && t.AssignableTo(key.Type())
}
