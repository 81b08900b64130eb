package web_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-guice/inject"
	"github.com/km-arc/go-guice/web"
)

// ── fixtures ─────────────────────────────────────────────────────────────────

type UserStore struct{ Greeting string }

func appModule(b *inject.Binder) {
	b.Bind(inject.Of[*UserStore]()).ToInstance(&UserStore{Greeting: "hi"})
}

func newRouter(t *testing.T) *web.Router {
	t.Helper()
	root, err := inject.New(inject.Development, inject.ModuleFunc(appModule))
	require.NoError(t, err)
	return web.NewRouter(root)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

// ── injected handlers ────────────────────────────────────────────────────────

func TestHandle_InjectsDependenciesAndRequestValues(t *testing.T) {
	t.Parallel()

	r := newRouter(t)
	r.Get("/greet/{name}", func(w http.ResponseWriter, req *http.Request, store *UserStore) {
		fmt.Fprintf(w, "%s %s", store.Greeting, web.Param(req, "name"))
	})

	rec := get(t, r, "/greet/ada")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi ada", rec.Body.String())
}

func TestHandle_ErrorBecomes500(t *testing.T) {
	t.Parallel()

	r := newRouter(t)
	r.Get("/boom", func(w http.ResponseWriter) error {
		return fmt.Errorf("kaput")
	})

	rec := get(t, r, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "kaput")
}

func TestHandle_PlainHandlerFuncPassedThrough(t *testing.T) {
	t.Parallel()

	r := newRouter(t)
	r.Get("/plain", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	assert.Equal(t, http.StatusTeapot, get(t, r, "/plain").Code)
}

func TestHandle_WithoutMiddlewareIs500(t *testing.T) {
	t.Parallel()

	h := web.Handle(func(store *UserStore) {})
	rec := get(t, h, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "middleware")
}

// ── per-request child injector ───────────────────────────────────────────────

func TestMiddleware_RequestIDUniquePerRequest(t *testing.T) {
	t.Parallel()

	r := newRouter(t)
	r.Get("/id", func(w http.ResponseWriter, id web.RequestID) {
		fmt.Fprint(w, string(id))
	})

	first := get(t, r, "/id").Body.String()
	second := get(t, r, "/id").Body.String()
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestMiddleware_ChildSharesRootSingletons(t *testing.T) {
	t.Parallel()

	root, err := inject.New(inject.Development, inject.ModuleFunc(func(b *inject.Binder) {
		b.Bind(inject.Of[*UserStore]()).ToSelf().AsSingleton()
	}))
	require.NoError(t, err)
	fromRoot := inject.MustGet[*UserStore](root)

	r := web.NewRouter(root)
	r.Get("/", func(w http.ResponseWriter, store *UserStore) {
		fmt.Fprintf(w, "%t", store == fromRoot)
	})

	assert.Equal(t, "true", get(t, r, "/").Body.String())
}

func TestMiddleware_ExtraModulesBoundPerRequest(t *testing.T) {
	t.Parallel()

	type flag struct{ On bool }
	root, err := inject.New(inject.Development)
	require.NoError(t, err)

	r := web.NewRouter(root, inject.ModuleFunc(func(b *inject.Binder) {
		b.Bind(inject.Of[*flag]()).ToInstance(&flag{On: true})
	}))
	r.Get("/", func(w http.ResponseWriter, f *flag) {
		fmt.Fprintf(w, "%t", f.On)
	})

	assert.Equal(t, "true", get(t, r, "/").Body.String())
}

func TestInjectorFrom_NilWithoutMiddleware(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, web.InjectorFrom(req.Context()))
}

// ── router surface ───────────────────────────────────────────────────────────

func TestRouter_PrefixAndGroup(t *testing.T) {
	t.Parallel()

	r := newRouter(t)
	r.Prefix("/api", func(api *web.Router) {
		api.Get("/users", func(w http.ResponseWriter, store *UserStore) {
			fmt.Fprint(w, store.Greeting)
		})
	})
	r.Group(func(g *web.Router) {
		g.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	assert.Equal(t, "hi", get(t, r, "/api/users").Body.String())
	assert.Equal(t, http.StatusNoContent, get(t, r, "/health").Code)
}
