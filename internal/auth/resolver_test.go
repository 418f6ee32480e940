package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolverPrefersOverride(t *testing.T) {
	store := NewTokenStore()
	store.Register("brand_a", "tokA")
	r := NewResolver(store, "fallback")

	token, err := r.Resolve(WithToken(context.Background(), "override"))
	require.NoError(t, err)
	require.Equal(t, "override", token)
}

func TestResolverUsesActiveThenFallback(t *testing.T) {
	store := NewTokenStore()
	r := NewResolver(store, "fallback")

	token, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fallback", token)

	store.Register("brand_a", "tokA")
	token, err = r.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tokA", token)
}

func TestResolverWithoutAnyToken(t *testing.T) {
	_, err := NewResolver(NewTokenStore(), "").Resolve(context.Background())
	require.ErrorIs(t, err, ErrNoCredential)

	var nilResolver *Resolver
	_, err = nilResolver.Resolve(context.Background())
	require.ErrorIs(t, err, ErrNoCredential)
}

func TestEmptyOverrideIsIgnored(t *testing.T) {
	ctx := WithToken(context.Background(), "")
	_, ok := TokenFromContext(ctx)
	require.False(t, ok)

	token, err := NewResolver(nil, "fallback").Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, "fallback", token)
}

func TestMask(t *testing.T) {
	require.Equal(t, "EAABsbCS1i...", Mask("EAABsbCS1iHgBAKZCZCx"))
	require.Equal(t, "abc***", Mask("abcdefghij"))
	require.Equal(t, "ab***", Mask("ab"))
	require.Equal(t, "***", Mask(""))
}

func TestClientIDContext(t *testing.T) {
	_, ok := ClientIDFromContext(context.Background())
	require.False(t, ok)

	id, ok := ClientIDFromContext(WithClientID(context.Background(), "agent-1"))
	require.True(t, ok)
	require.Equal(t, "agent-1", id)
}

func TestAPIKeyStore(t *testing.T) {
	var nilStore *APIKeyStore
	require.Zero(t, nilStore.Len())

	store := NewAPIKeyStore()
	store.AddKey("k1", "client-1")
	require.Equal(t, 1, store.Len())

	id, ok := store.ClientID("k1")
	require.True(t, ok)
	require.Equal(t, "client-1", id)

	_, ok = store.ClientID("other")
	require.False(t, ok)
}
