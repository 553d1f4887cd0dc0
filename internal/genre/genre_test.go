package genre_test

import (
	"testing"

	"golang.org/x/text/unicode/norm"

	"cinechat/internal/genre"
)

func TestEveryLabelMapsToUniqueID(t *testing.T) {
	seen := make(map[int]string)
	for _, g := range genre.All() {
		id, ok := genre.Lookup(g.Label)
		if !ok {
			t.Fatalf("label %q did not map", g.Label)
		}
		if id == 0 {
			t.Fatalf("label %q mapped to zero id", g.Label)
		}
		if prev, dup := seen[id]; dup {
			t.Fatalf("labels %q and %q share id %d", prev, g.Label, id)
		}
		seen[id] = g.Label
	}
	if len(seen) != 19 {
		t.Fatalf("expected 19 genres, got %d", len(seen))
	}
}

func TestUnknownLabelsAreUnmapped(t *testing.T) {
	for _, label := range []string{"호러", "", "  ", "horror", "공포영화", "27x"} {
		if id, ok := genre.Lookup(label); ok || id != 0 {
			t.Fatalf("Lookup(%q) = %d, %v; want unmapped", label, id, ok)
		}
	}
}

func TestLookupKnownValues(t *testing.T) {
	cases := map[string]int{
		"공포":    27,
		"코미디":   35,
		" 드라마 ": 18,
		"sf":    878,
		"TV 영화": 10770,
		"애니메이션": 16,
	}
	for label, want := range cases {
		if got, ok := genre.Lookup(label); !ok || got != want {
			t.Fatalf("Lookup(%q) = %d, %v; want %d", label, got, ok, want)
		}
	}
}

func TestLookupDecomposedHangul(t *testing.T) {
	decomposed := norm.NFD.String("공포")
	if decomposed == "공포" {
		t.Fatal("expected NFD form to differ")
	}
	if id, ok := genre.Lookup(decomposed); !ok || id != 27 {
		t.Fatalf("Lookup(NFD 공포) = %d, %v", id, ok)
	}
}

func TestLookupTokenAcceptsVocabularyIDs(t *testing.T) {
	if id, ok := genre.LookupToken("27"); !ok || id != 27 {
		t.Fatalf("LookupToken(27) = %d, %v", id, ok)
	}
	if _, ok := genre.LookupToken("99999"); ok {
		t.Fatal("expected id outside vocabulary to be unmapped")
	}
	if label, ok := genre.Label(35); !ok || label != "코미디" {
		t.Fatalf("Label(35) = %q, %v", label, ok)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	first := genre.All()
	first[0].ID = -1
	if genre.All()[0].ID == -1 {
		t.Fatal("All must not expose the backing table")
	}
	if len(genre.Labels()) != len(first) {
		t.Fatal("Labels and All disagree on length")
	}
}
