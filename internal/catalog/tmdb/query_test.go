package tmdb_test

import (
	"testing"

	"cinechat/internal/catalog/tmdb"
)

func TestValuesOmitsUnsetFields(t *testing.T) {
	values := tmdb.DiscoverQuery{Language: "ko-KR", Region: "  "}.Values()
	if len(values) != 1 || values.Get("language") != "ko-KR" {
		t.Fatalf("unexpected values: %v", values)
	}
}

func TestWithDefaults(t *testing.T) {
	q := tmdb.DiscoverQuery{Genres: []int{27}}.WithDefaults()
	if q.SortBy != tmdb.DefaultSortBy || q.Page != tmdb.DefaultPage {
		t.Fatalf("unexpected defaults: %#v", q)
	}
	custom := tmdb.DiscoverQuery{SortBy: "vote_average.desc", Page: 3}.WithDefaults()
	if custom.SortBy != "vote_average.desc" || custom.Page != 3 {
		t.Fatalf("defaults overwrote explicit values: %#v", custom)
	}
}

func TestGenreParamPreservesOrder(t *testing.T) {
	q := tmdb.DiscoverQuery{Genres: []int{35, 27, 18}}
	if got := q.GenreParam(); got != "35,27,18" {
		t.Fatalf("GenreParam = %q", got)
	}
}

func TestMapUsesNativeTypes(t *testing.T) {
	lte := 9.0
	m := tmdb.DiscoverQuery{Genres: []int{27}, VoteAverageLTE: &lte, Page: 2}.Map()
	if m["with_genres"] != "27" {
		t.Fatalf("unexpected with_genres %#v", m["with_genres"])
	}
	if m["page"] != 2 {
		t.Fatalf("unexpected page %#v", m["page"])
	}
	if m["vote_average.lte"] != 9.0 {
		t.Fatalf("unexpected vote bound %#v", m["vote_average.lte"])
	}
}

func TestValidSortKey(t *testing.T) {
	if !tmdb.ValidSortKey("popularity.desc") {
		t.Fatal("expected popularity.desc to be valid")
	}
	if tmdb.ValidSortKey("random") {
		t.Fatal("expected unknown sort key to be rejected")
	}
}
