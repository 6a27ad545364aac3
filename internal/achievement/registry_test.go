package achievement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryBuiltins(t *testing.T) {
	registry := NewRegistry()

	for _, kind := range []string{KindCountReviews, KindGenreMaster, KindCommentCount, KindDistinctGenre, KindContrarian} {
		_, ok := registry.Get(kind)
		assert.True(t, ok, "built-in kind %s must be registered", kind)
	}
	assert.Len(t, registry.Kinds(), 5)
}

func TestRegistryUnknownKind(t *testing.T) {
	registry := NewRegistry()

	handler, ok := registry.Get("EXPERIMENTAL_KIND")
	assert.False(t, ok)
	assert.Nil(t, handler)
}

type stubHandler struct{ result bool }

func (s stubHandler) Evaluate(ctx context.Context, userID int64, params Params, data Dataset) (bool, error) {
	return s.result, nil
}

func TestRegistryRegisterCustomKind(t *testing.T) {
	registry := NewRegistry()
	registry.Register("ALWAYS_TRUE", stubHandler{result: true})

	handler, ok := registry.Get("ALWAYS_TRUE")
	require.True(t, ok)

	got, err := handler.Evaluate(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	assert.True(t, got)
}
