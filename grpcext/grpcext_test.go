package grpcext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	fieldselector "github.com/AdrianRamiro/api-field-selector"
)

func newTestSelector(t *testing.T) *fieldselector.Selector {
	t.Helper()
	s, err := fieldselector.New(fieldselector.Schema{
		Available: []string{"id", "name", "email", "phone"},
		Defaults:  []string{"id", "name"},
		Groups: map[string][]string{
			"contact": {"email", "phone"},
		},
	})
	require.NoError(t, err)
	return s
}

func TestSelect_Metadata(t *testing.T) {
	t.Parallel()

	s := newTestSelector(t)

	md := metadata.Pairs("x-fields", "id,phone")
	ctx := metadata.NewIncomingContext(context.Background(), md)

	sel := Select(ctx, s)
	assert.Equal(t, []string{"id", "phone"}, sel.Fields())
}

func TestSelect_Group(t *testing.T) {
	t.Parallel()

	s := newTestSelector(t)

	md := metadata.Pairs("x-fields", "@contact")
	ctx := metadata.NewIncomingContext(context.Background(), md)

	sel := Select(ctx, s)
	assert.Equal(t, []string{"email", "phone"}, sel.Fields())
}

func TestSelect_NoMetadata(t *testing.T) {
	t.Parallel()

	s := newTestSelector(t)

	sel := Select(context.Background(), s)
	assert.Equal(t, []string{"id", "name"}, sel.Fields())
}

func TestSelect_MultiValuedUsesFirst(t *testing.T) {
	t.Parallel()

	s := newTestSelector(t)

	md := metadata.Pairs("x-fields", "email", "x-fields", "phone")
	ctx := metadata.NewIncomingContext(context.Background(), md)

	sel := Select(ctx, s)
	assert.Equal(t, []string{"email"}, sel.Fields())
}

func TestUnaryServerInterceptor(t *testing.T) {
	t.Parallel()

	s := newTestSelector(t)
	interceptor := UnaryServerInterceptor(s)

	md := metadata.Pairs("x-fields", "name,email")
	ctx := metadata.NewIncomingContext(context.Background(), md)

	var got fieldselector.Selection
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		sel, ok := SelectionFromContext(ctx)
		require.True(t, ok)
		got = sel
		return "response", nil
	}

	resp, err := interceptor(ctx, "request", &grpc.UnaryServerInfo{}, handler)
	require.NoError(t, err)
	assert.Equal(t, "response", resp)
	assert.Equal(t, []string{"name", "email"}, got.Fields())
}

func TestSelectionFromContext_Absent(t *testing.T) {
	t.Parallel()

	_, ok := SelectionFromContext(context.Background())
	assert.False(t, ok)
}
