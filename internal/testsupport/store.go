package testsupport

import (
	"testing"

	"cinechat/internal/config"
	"cinechat/internal/favorites"
)

// MustOpenFavorites opens a favorites.Store for tests and registers cleanup.
func MustOpenFavorites(t testing.TB, cfg *config.Config, opts ...favorites.Option) *favorites.Store {
	t.Helper()

	store, err := favorites.Open(cfg, opts...)
	if err != nil {
		t.Fatalf("favorites.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
