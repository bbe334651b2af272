// Package grpcext provides gRPC interceptors and helpers for field
// selection. It isolates the google.golang.org/grpc dependency so that
// servers not built on gRPC never import it.
//
// Selections ride on incoming request metadata. There is no query string
// equivalent in gRPC, so only the header channel of the selector applies.
package grpcext

import (
	"context"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	fieldselector "github.com/AdrianRamiro/api-field-selector"
)

// contextKey is a private type for context values stored by this package.
type contextKey string

const selectionKey contextKey = "fieldselector.selection"

// FromIncomingContext converts the incoming request metadata into the shape
// the selector reads. Metadata keys are lowercase on the wire; they are
// re-canonicalized here so the selector's header lookup matches.
func FromIncomingContext(ctx context.Context) fieldselector.Request {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return fieldselector.Request{}
	}
	header := make(http.Header, len(md))
	for key, values := range md {
		for _, value := range values {
			header.Add(key, value)
		}
	}
	return fieldselector.Request{Header: header}
}

// Select resolves the field selection for the incoming call.
func Select(ctx context.Context, s *fieldselector.Selector) fieldselector.Selection {
	return s.Select(FromIncomingContext(ctx))
}

// UnaryServerInterceptor resolves the field selection once per call and
// stores it in the handler context for retrieval via SelectionFromContext.
func UnaryServerInterceptor(s *fieldselector.Selector) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		ctx = NewContext(ctx, Select(ctx, s))
		return handler(ctx, req)
	}
}

// NewContext returns a copy of ctx carrying the given selection.
func NewContext(ctx context.Context, sel fieldselector.Selection) context.Context {
	return context.WithValue(ctx, selectionKey, sel)
}

// SelectionFromContext returns the selection stored by
// UnaryServerInterceptor. The second return value reports whether one was
// present.
func SelectionFromContext(ctx context.Context) (fieldselector.Selection, bool) {
	sel, ok := ctx.Value(selectionKey).(fieldselector.Selection)
	return sel, ok
}
