// Package httpext integrates field selection with net/http servers. It
// only depends on the standard library, so it works under any router built
// on http.Handler (chi, gorilla, the stdlib mux).
package httpext

import (
	"context"
	"net/http"

	fieldselector "github.com/AdrianRamiro/api-field-selector"
)

// contextKey is a private type for context values stored by this package.
type contextKey string

const selectionKey contextKey = "fieldselector.selection"

// FromRequest converts an *http.Request into the shape the selector reads.
func FromRequest(r *http.Request) fieldselector.Request {
	return fieldselector.Request{
		Query:  r.URL.Query(),
		Header: r.Header,
	}
}

// Select resolves the field selection for an incoming request.
func Select(s *fieldselector.Selector, r *http.Request) fieldselector.Selection {
	return s.Select(FromRequest(r))
}

// Middleware resolves the field selection once per request and stores it in
// the request context for handlers to pick up via SelectionFromContext.
func Middleware(s *fieldselector.Selector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := NewContext(r.Context(), Select(s, r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewContext returns a copy of ctx carrying the given selection.
func NewContext(ctx context.Context, sel fieldselector.Selection) context.Context {
	return context.WithValue(ctx, selectionKey, sel)
}

// SelectionFromContext returns the selection stored by Middleware. The
// second return value reports whether one was present.
func SelectionFromContext(ctx context.Context) (fieldselector.Selection, bool) {
	sel, ok := ctx.Value(selectionKey).(fieldselector.Selection)
	return sel, ok
}
