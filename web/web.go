// Package web integrates the injector with net/http: a middleware that forks
// a per-request child injector, and a chi-backed router whose handlers may
// declare injected parameters.
//
// The per-request child injector plays the role of Guice's request scope:
// request-lived values (*http.Request, http.ResponseWriter, the request id)
// are instance bindings on the child, and anything resolved through the
// child that is not a parent singleton lives and dies with the request.
package web

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/km-arc/go-guice/inject"
)

// RequestID identifies one HTTP request across logs and handlers.
type RequestID string

type ctxKey struct{}

// Middleware returns an http middleware that forks a child injector off root
// for every request and stores it in the request context. extra modules are
// installed into each child, after the request bindings.
func Middleware(root *inject.Injector, extra ...inject.Module) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := RequestID(uuid.NewString())
			w.Header().Set("X-Request-ID", string(id))
			mods := append([]inject.Module{requestModule(w, r, id)}, extra...)
			child, err := root.Child(mods...)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKey{}, child)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestModule(w http.ResponseWriter, r *http.Request, id RequestID) inject.Module {
	return inject.ModuleFunc(func(b *inject.Binder) {
		b.Bind(inject.Of[*http.Request]()).ToInstance(r)
		b.Bind(inject.Of[http.ResponseWriter]()).ToInstance(w)
		b.Bind(inject.Of[RequestID]()).ToInstance(id)
	})
}

// InjectorFrom returns the request-scoped injector placed by Middleware, or
// nil when the request did not pass through it.
func InjectorFrom(ctx context.Context) *inject.Injector {
	in, _ := ctx.Value(ctxKey{}).(*inject.Injector)
	return in
}

// Handle adapts a function with injected parameters into an http.HandlerFunc.
// fn's parameters are resolved from the request's child injector; returning a
// non-nil error yields a 500.
//
//	router.Get("/users/{id}", web.Handle(func(w http.ResponseWriter, r *http.Request, svc *UserService) error {
//	    return svc.Render(w, web.Param(r, "id"))
//	}))
func Handle(fn any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := InjectorFrom(r.Context())
		if in == nil {
			http.Error(w, "web: request has no injector; is the middleware installed?", http.StatusInternalServerError)
			return
		}
		if err := in.Call(fn); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
