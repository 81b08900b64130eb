package inject

// ── Provisioning interceptors ─────────────────────────────────────────────────
//
// Interception is realized as explicit decorators: an ordered chain of
// ProvisionInterceptors is offered every freshly constructed instance whose
// Key the chain matches, and whatever the chain yields is returned (and
// cached, for scoped bindings) instead.

// ProvisionInterceptor wraps provisioning of matched keys.
type ProvisionInterceptor interface {
	// Intercept receives the raw provisioning result and returns the value
	// to use in its place. Returning value unchanged is a no-op.
	Intercept(key Key, value any) (any, error)
}

// InterceptorFunc adapts a function to the ProvisionInterceptor interface.
type InterceptorFunc func(key Key, value any) (any, error)

// Intercept implements ProvisionInterceptor.
func (f InterceptorFunc) Intercept(key Key, value any) (any, error) {
	return f(key, value)
}

// Matcher selects the keys an interceptor applies to.
type Matcher func(Key) bool

// MatchAll matches every key.
func MatchAll(Key) bool { return true }

// MatchType matches keys whose semantic type is T, any qualifier.
func MatchType[T any]() Matcher {
	t := typeFor[T]()
	return func(k Key) bool { return k.Type() == t }
}

// interceptorEntry is one registered (matcher, interceptor) pair.
type interceptorEntry struct {
	match Matcher
	ic    ProvisionInterceptor
}

// intercept runs value through every matching interceptor, in registration
// order, parent injector's interceptors first.
func (in *Injector) intercept(key Key, value any) (any, error) {
	if in.parent != nil {
		v, err := in.parent.intercept(key, value)
		if err != nil {
			return nil, err
		}
		value = v
	}
	for _, e := range in.interceptors {
		if !e.match(key) {
			continue
		}
		v, err := e.ic.Intercept(key, value)
		if err != nil {
			return nil, err
		}
		value = v
	}
	return value, nil
}
