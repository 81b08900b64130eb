package inject_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-guice/inject"
)

// newErr builds an injector from one module and returns the collected
// configuration problems.
func newErr(t *testing.T, configure func(b *inject.Binder)) []error {
	t.Helper()
	_, err := inject.New(inject.Development, inject.ModuleFunc(configure))
	return configErrors(t, err)
}

// ── binder misuse ────────────────────────────────────────────────────────────

func TestBinder_TwoTargetsRejected(t *testing.T) {
	t.Parallel()

	errs := newErr(t, func(b *inject.Binder) {
		b.Bind(inject.Of[*Database]()).ToInstance(&Database{}).To(inject.Of[*Cache]())
	})
	assert.Contains(t, errs[0].Error(), "two targets")
}

func TestBinder_TwoScopesRejected(t *testing.T) {
	t.Parallel()

	errs := newErr(t, func(b *inject.Binder) {
		b.Bind(inject.Of[*Cache]()).ToSelf().AsSingleton().In("other")
	})
	assert.Contains(t, errs[0].Error(), "two scopes")
}

func TestBinder_NilInstanceRejected(t *testing.T) {
	t.Parallel()

	errs := newErr(t, func(b *inject.Binder) {
		b.Bind(inject.Of[*Database]()).ToInstance(nil)
	})
	assert.Contains(t, errs[0].Error(), "nil instance")
}

func TestBinder_InstanceTypeMismatchRejected(t *testing.T) {
	t.Parallel()

	errs := newErr(t, func(b *inject.Binder) {
		b.Bind(inject.Of[Greeter]()).ToInstance(&Database{})
	})
	assert.Contains(t, errs[0].Error(), "not assignable")
}

func TestBinder_InstanceCannotBeCustomScoped(t *testing.T) {
	t.Parallel()

	errs := newErr(t, func(b *inject.Binder) {
		b.BindScope("memo", &memoScope{})
		b.Bind(inject.Of[*Database]()).ToInstance(&Database{}).In("memo")
	})
	assert.Contains(t, errs[0].Error(), "cannot be scoped")
}

func TestBinder_LinkedTargetTypeMismatchRejected(t *testing.T) {
	t.Parallel()

	errs := newErr(t, func(b *inject.Binder) {
		b.Bind(inject.Of[Greeter]()).To(inject.Of[*Database]())
	})
	assert.Contains(t, errs[0].Error(), "not assignable")
}

func TestBinder_SelfLinkRejected(t *testing.T) {
	t.Parallel()

	errs := newErr(t, func(b *inject.Binder) {
		b.Bind(inject.Of[Greeter]()).To(inject.Of[Greeter]())
	})
	assert.Contains(t, errs[0].Error(), "links to itself")
}

func TestBinder_InterfaceWithoutTargetRejected(t *testing.T) {
	t.Parallel()

	errs := newErr(t, func(b *inject.Binder) {
		b.Bind(inject.Of[Greeter]())
	})
	assert.Contains(t, errs[0].Error(), "no target")
}

func TestBinder_ConcreteWithoutTargetBindsToSelf(t *testing.T) {
	t.Parallel()

	in := mustNew(t, inject.Development, inject.ModuleFunc(func(b *inject.Binder) {
		b.Bind(inject.Of[*Cache]()).AsSingleton()
	}))
	assert.Same(t, inject.MustGet[*Cache](in), inject.MustGet[*Cache](in))
}

func TestBinder_BadProviderShapesRejected(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		fn   any
	}{
		{"not a function", 42},
		{"no results", func() {}},
		{"three results", func() (*Database, *Cache, error) { return nil, nil, nil }},
		{"second result not error", func() (*Database, *Cache) { return nil, nil }},
		{"bare error result", func() error { return nil }},
		{"wrong result type", func() *Cache { return nil }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			errs := newErr(t, func(b *inject.Binder) {
				b.Bind(inject.Of[*Database]()).ToProvider(tc.fn)
			})
			require.NotEmpty(t, errs)
		})
	}
}

func TestBinder_ConstructorMustProduceStructPointer(t *testing.T) {
	t.Parallel()

	errs := newErr(t, func(b *inject.Binder) {
		b.Bind(inject.Of[Greeter]()).ToConstructor(func() Greeter {
			return &EnglishGreeter{}
		})
	})
	assert.Contains(t, errs[0].Error(), "*struct")
}

func TestBinder_AddErrorSurfacesInConfigurationError(t *testing.T) {
	t.Parallel()

	marker := fmt.Errorf("environment misconfigured")
	_, err := inject.New(inject.Development, inject.ModuleFunc(func(b *inject.Binder) {
		b.AddError(marker)
	}))
	errs := configErrors(t, err)
	assert.ErrorIs(t, errs[0], marker)
}

func TestBinder_AllProblemsReportedAtOnce(t *testing.T) {
	t.Parallel()

	errs := newErr(t, func(b *inject.Binder) {
		b.Bind(inject.Of[*Database]()).ToInstance(nil)
		b.Bind(inject.Of[Greeter]())
		b.Bind(inject.Of[*Cache]()).ToInstance(&Cache{})
		b.Bind(inject.Of[*Cache]()).ToInstance(&Cache{})
	})
	assert.Len(t, errs, 3)
}

func TestBinder_InstallNilModuleRejected(t *testing.T) {
	t.Parallel()

	errs := newErr(t, func(b *inject.Binder) {
		b.Install(nil)
	})
	assert.Contains(t, errs[0].Error(), "Install(nil)")
}

// ── override composition ─────────────────────────────────────────────────────

func TestOverride_BaseDuplicatesStillReported(t *testing.T) {
	t.Parallel()

	base := inject.ModuleFunc(func(b *inject.Binder) {
		b.Bind(inject.Of[*Cache]()).ToInstance(&Cache{Size: 1})
		b.Bind(inject.Of[*Cache]()).ToInstance(&Cache{Size: 2})
	})
	_, err := inject.New(inject.Development, inject.Override(base).With())
	configErrors(t, err)
}

func TestOverride_ScopesAndInterceptorsPassThrough(t *testing.T) {
	t.Parallel()

	scope := &memoScope{}
	base := inject.ModuleFunc(func(b *inject.Binder) {
		b.BindScope("memo", scope)
		b.Bind(inject.Of[*Cache]()).ToSelf().In("memo")
	})
	fake := inject.ModuleFunc(func(b *inject.Binder) {
		b.Bind(inject.Of[*Database]()).ToInstance(&Database{DSN: "fake"})
	})

	in := mustNew(t, inject.Development, inject.Override(base).With(fake))
	assert.Same(t, inject.MustGet[*Cache](in), inject.MustGet[*Cache](in))
	assert.Equal(t, "fake", inject.MustGet[*Database](in).DSN)
}
