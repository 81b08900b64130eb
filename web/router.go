package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/km-arc/go-guice/inject"
)

// Router wraps chi.Router with injector-aware handler registration: every
// verb accepts either a plain http.HandlerFunc or a function with injected
// parameters (anything else Handle accepts).
type Router struct {
	mux chi.Router
}

// NewRouter creates a Router with sane defaults (RequestID, RealIP,
// Recoverer) plus the injector middleware for root.
func NewRouter(root *inject.Injector, extra ...inject.Module) *Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(Middleware(root, extra...))
	return &Router{mux: r}
}

// adapt turns h into an http.HandlerFunc: passed through when it already is
// one, wrapped by Handle otherwise.
func adapt(h any) http.HandlerFunc {
	switch fn := h.(type) {
	case http.HandlerFunc:
		return fn
	case func(http.ResponseWriter, *http.Request):
		return fn
	default:
		return Handle(h)
	}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h any)    { r.mux.Get(pattern, adapt(h)) }
func (r *Router) Post(pattern string, h any)   { r.mux.Post(pattern, adapt(h)) }
func (r *Router) Put(pattern string, h any)    { r.mux.Put(pattern, adapt(h)) }
func (r *Router) Patch(pattern string, h any)  { r.mux.Patch(pattern, adapt(h)) }
func (r *Router) Delete(pattern string, h any) { r.mux.Delete(pattern, adapt(h)) }

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group sharing this router's middleware stack.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// Prefix creates a sub-router mounted under a URL prefix.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL parameter bound by the route pattern.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be passed to
// http.ListenAndServe.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
