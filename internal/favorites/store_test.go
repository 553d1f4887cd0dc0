package favorites_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"cinechat/internal/favorites"
	"cinechat/internal/services"
	"cinechat/internal/testsupport"
)

func steppingClock() func() time.Time {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	var n int
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func ids(t *testing.T, store *favorites.Store) []int64 {
	t.Helper()
	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	out := make([]int64, 0, len(list))
	for _, fav := range list {
		out = append(out, fav.MovieID)
	}
	return out
}

func TestAddListsMostRecentFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenFavorites(t, cfg, favorites.WithClock(steppingClock()))
	ctx := context.Background()

	for _, fav := range []favorites.Favorite{
		{MovieID: 1, Title: "곡성", BackdropPath: "/a.jpg"},
		{MovieID: 2, Title: "부산행"},
		{MovieID: 3, Title: "기생충"},
	} {
		if _, _, err := store.Add(ctx, fav); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if got := ids(t, store); !reflect.DeepEqual(got, []int64{3, 2, 1}) {
		t.Fatalf("unexpected order %v", got)
	}

	fav, err := store.Get(ctx, 1)
	if err != nil || fav == nil {
		t.Fatalf("Get failed: %v %v", fav, err)
	}
	if fav.BackdropPath != "/a.jpg" || fav.SavedAt.IsZero() {
		t.Fatalf("unexpected favorite %#v", fav)
	}
	missing, err := store.Get(ctx, 99)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing favorite, got %#v %v", missing, err)
	}
}

func TestReAddMovesToFront(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenFavorites(t, cfg, favorites.WithClock(steppingClock()))
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		if _, _, err := store.Add(ctx, favorites.Favorite{MovieID: id, Title: "movie"}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if _, _, err := store.Add(ctx, favorites.Favorite{MovieID: 1, Title: "renamed"}); err != nil {
		t.Fatalf("re-Add failed: %v", err)
	}
	if got := ids(t, store); !reflect.DeepEqual(got, []int64{1, 3, 2}) {
		t.Fatalf("unexpected order %v", got)
	}
	fav, _ := store.Get(ctx, 1)
	if fav.Title != "renamed" {
		t.Fatalf("expected refreshed title, got %q", fav.Title)
	}
}

func TestAddEvictsOldestBeyondCapacity(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFavoritesCapacity(3))
	store := testsupport.MustOpenFavorites(t, cfg)
	ctx := context.Background()

	var evicted []int64
	for id := int64(1); id <= 5; id++ {
		_, out, err := store.Add(ctx, favorites.Favorite{MovieID: id, Title: "movie"})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		evicted = append(evicted, out...)
	}
	if got := ids(t, store); !reflect.DeepEqual(got, []int64{5, 4, 3}) {
		t.Fatalf("unexpected contents %v", got)
	}
	if !reflect.DeepEqual(evicted, []int64{1, 2}) {
		t.Fatalf("unexpected evictions %v", evicted)
	}
}

func TestDefaultCapacityIsTen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenFavorites(t, cfg)
	if store.Capacity() != favorites.DefaultCapacity || favorites.DefaultCapacity != 10 {
		t.Fatalf("unexpected capacity %d", store.Capacity())
	}
	ctx := context.Background()
	for id := int64(1); id <= 12; id++ {
		if _, _, err := store.Add(ctx, favorites.Favorite{MovieID: id, Title: "movie"}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	got := ids(t, store)
	if len(got) != 10 || got[0] != 12 || got[9] != 3 {
		t.Fatalf("unexpected contents %v", got)
	}
}

func TestAddValidates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenFavorites(t, cfg)
	ctx := context.Background()

	cases := []favorites.Favorite{
		{MovieID: 0, Title: "movie"},
		{MovieID: 1, Title: "   "},
	}
	for _, fav := range cases {
		if _, _, err := store.Add(ctx, fav); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected ErrValidation for %#v, got %v", fav, err)
		}
	}
}

func TestRemoveAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenFavorites(t, cfg)
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		if _, _, err := store.Add(ctx, favorites.Favorite{MovieID: id, Title: "movie"}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	removed, err := store.Remove(ctx, 2)
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v", removed, err)
	}
	removed, err = store.Remove(ctx, 2)
	if err != nil || removed {
		t.Fatalf("second Remove = %v, %v", removed, err)
	}
	cleared, err := store.Clear(ctx)
	if err != nil || cleared != 2 {
		t.Fatalf("Clear = %d, %v", cleared, err)
	}
	if got := ids(t, store); len(got) != 0 {
		t.Fatalf("expected empty store, got %v", got)
	}
}

func TestReopenKeepsFavorites(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := favorites.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, _, err := store.Add(context.Background(), favorites.Favorite{MovieID: 42, Title: "올드보이"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenFavorites(t, cfg)
	if got := ids(t, reopened); !reflect.DeepEqual(got, []int64{42}) {
		t.Fatalf("unexpected contents after reopen %v", got)
	}
}
