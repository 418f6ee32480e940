package auth

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenStoreFirstRegistrationBecomesActive(t *testing.T) {
	store := NewTokenStore()
	store.Register("brand_a", "tokA")
	store.Register("brand_b", "tokB")

	name, token, ok := store.Active()
	require.True(t, ok)
	require.Equal(t, "brand_a", name)
	require.Equal(t, "tokA", token)
}

func TestTokenStoreSwitch(t *testing.T) {
	store := NewTokenStore()
	store.Register("brand_a", "tokA")
	store.Register("brand_b", "tokB")

	require.True(t, store.SetActive("brand_b"))
	_, token, _ := store.Active()
	require.Equal(t, "tokB", token)

	require.False(t, store.SetActive("nope"))
	name, _, _ := store.Active()
	require.Equal(t, "brand_b", name)
}

func TestTokenStoreRegisterOverwrites(t *testing.T) {
	store := NewTokenStore()
	store.Register("brand_a", "old")
	store.Register("brand_a", "new")

	token, ok := store.Get("brand_a")
	require.True(t, ok)
	require.Equal(t, "new", token)
	require.Equal(t, []string{"brand_a"}, store.List().Available)
}

func TestTokenStoreRemoveActivePromotesNext(t *testing.T) {
	store := NewTokenStore()
	store.Register("c", "tokC")
	store.Register("a", "tokA")
	store.Register("b", "tokB")

	require.True(t, store.Remove("c"))
	name, _, ok := store.Active()
	require.True(t, ok)
	require.Equal(t, "a", name)

	require.False(t, store.Remove("c"))
	require.True(t, store.Remove("a"))
	require.True(t, store.Remove("b"))
	_, _, ok = store.Active()
	require.False(t, ok)
}

func TestTokenStoreListIsStable(t *testing.T) {
	store := NewTokenStore()
	store.Register("zeta", "1")
	store.Register("alpha", "2")

	first := store.List()
	second := store.List()
	require.Equal(t, first, second)
	require.Equal(t, TokenList{Active: "zeta", Available: []string{"alpha", "zeta"}}, first)
}

func TestTokenStoreConcurrentUse(t *testing.T) {
	store := NewTokenStore()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			store.Register("a", "tokA")
		}()
		go func() {
			defer wg.Done()
			store.SetActive("a")
		}()
		go func() {
			defer wg.Done()
			_ = store.List()
		}()
	}
	wg.Wait()
	name, _, ok := store.Active()
	require.True(t, ok)
	require.Equal(t, "a", name)
}
