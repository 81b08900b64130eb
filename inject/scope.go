package inject

import "sync"

// ── Scopes ────────────────────────────────────────────────────────────────────

// Provider produces an instance for a Key on demand. Providers returned by
// Injector.ProviderFor and accepted by Scope implementations share this shape.
type Provider func() (any, error)

// Scope applies a lifecycle policy to a binding's provisioning function.
// Scope must return a provider that delegates to unscoped when (and only
// when) a new instance is required.
//
//	// Guice: Scope.scope(key, unscoped)
type Scope interface {
	// Name is the identifier bindings select the scope by, e.g. via In(name).
	Name() string
	// Scope wraps the raw provisioning function with the lifecycle policy.
	Scope(key Key, unscoped Provider) Provider
}

// Scope names understood out of the box. The empty name means unscoped:
// a new instance per provision. Custom scopes are registered with
// Binder.BindScope and selected with the same In(name) call.
const (
	Unscoped  = ""
	Singleton = "singleton"
)

// ── Singleton scope ───────────────────────────────────────────────────────────

// singletonScope memoizes one instance per Key. Each injector owns its own
// singletonScope, so singletons are per-injector, never process-wide.
//
// Construction uses claim-intent entries rather than a lock held across the
// whole construction: the first caller claims the Key under mu, constructs
// outside it, and publishes; concurrent callers block on the entry's done
// channel. That guarantees at-most-one construction per Key while leaving
// mu free for unrelated keys.
//
// A construction publishes a provisional handle (the instance before member
// injection) on the entry. A resolution that needs the Key while performing
// member injection of another construction takes the provisional handle
// instead of waiting, which is what keeps mutual field-injection cycles
// between two goroutines from deadlocking. The handle may still have
// unpopulated fields; that matches the semantics of the original container.
// The handle is also pre-interception: if an interceptor later replaces the
// constructed value, dependents that took the handle keep the raw instance
// while the cache holds the replacement.
type singletonScope struct {
	mu        sync.Mutex
	instances map[Key]any
	inflight  map[Key]*construction
}

// construction is one in-flight singleton build.
type construction struct {
	done  chan struct{} // closed after result/err are set
	ready chan struct{} // closed after provisional is set

	provisional any
	result      any
	err         error
}

func newSingletonScope() *singletonScope {
	return &singletonScope{
		instances: make(map[Key]any),
		inflight:  make(map[Key]*construction),
	}
}

func (s *singletonScope) Name() string { return Singleton }

// Scope implements the public Scope contract for custom callers; the
// resolver uses provision directly so it can thread the provisional hooks.
func (s *singletonScope) Scope(key Key, unscoped Provider) Provider {
	return func() (any, error) {
		return s.provision(key, false, func(func(any)) (any, error) {
			return unscoped()
		})
	}
}

// provision returns the memoized instance for key, constructing it via raw
// if needed. raw receives a publish callback it must invoke with the
// provisional instance before member injection. allowProvisional marks the
// caller as being inside another construction's member-injection phase.
//
// A failed construction is not cached: the entry is removed and the next
// caller retries. Callers that were already waiting observe the failure.
func (s *singletonScope) provision(key Key, allowProvisional bool, raw func(publish func(any)) (any, error)) (any, error) {
	s.mu.Lock()
	if v, ok := s.instances[key]; ok {
		s.mu.Unlock()
		return v, nil
	}
	if c, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		if allowProvisional {
			select {
			case <-c.done:
				return c.result, c.err
			case <-c.ready:
				return c.provisional, nil
			}
		}
		<-c.done
		return c.result, c.err
	}
	c := &construction{done: make(chan struct{}), ready: make(chan struct{})}
	s.inflight[key] = c
	s.mu.Unlock()

	v, err := raw(func(handle any) {
		c.provisional = handle
		close(c.ready)
	})

	s.mu.Lock()
	delete(s.inflight, key)
	if err == nil {
		s.instances[key] = v
	}
	s.mu.Unlock()

	c.result, c.err = v, err
	close(c.done)
	return v, err
}
