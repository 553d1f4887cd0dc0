package genre

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Genre is one closed-vocabulary label and its catalog identifier.
type Genre struct {
	Label string `json:"label"`
	ID    int    `json:"id"`
}

// table lists the vocabulary in the order it is presented to the language model.
var table = []Genre{
	{"SF", 878},
	{"TV 영화", 10770},
	{"가족", 10751},
	{"공포", 27},
	{"다큐멘터리", 99},
	{"드라마", 18},
	{"로맨스", 10749},
	{"모험", 12},
	{"미스터리", 9648},
	{"범죄", 80},
	{"서부", 37},
	{"스릴러", 53},
	{"애니메이션", 16},
	{"액션", 28},
	{"역사", 36},
	{"음악", 10402},
	{"전쟁", 10752},
	{"코미디", 35},
	{"판타지", 14},
}

var (
	byLabel map[string]int
	byID    map[int]string
)

func init() {
	byLabel = make(map[string]int, len(table))
	byID = make(map[int]string, len(table))
	for _, g := range table {
		byLabel[fold(g.Label)] = g.ID
		byID[g.ID] = g.Label
	}
}

// fold canonicalizes a label: NFC composition (decomposed Hangul jamo from
// some clients must match), surrounding whitespace removed, ASCII case folded.
func fold(label string) string {
	return strings.ToUpper(norm.NFC.String(strings.TrimSpace(label)))
}

// Lookup returns the catalog id for label. The boolean is false when the
// label is outside the vocabulary.
func Lookup(label string) (int, bool) {
	id, ok := byLabel[fold(label)]
	return id, ok
}

// LookupToken resolves either a vocabulary label or a numeric catalog id that
// belongs to the vocabulary, so already-normalized input maps to itself.
func LookupToken(token string) (int, bool) {
	if id, ok := Lookup(token); ok {
		return id, true
	}
	id, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return 0, false
	}
	if _, ok := byID[id]; !ok {
		return 0, false
	}
	return id, true
}

// Label returns the vocabulary label for a catalog id.
func Label(id int) (string, bool) {
	label, ok := byID[id]
	return label, ok
}

// All returns a copy of the vocabulary.
func All() []Genre {
	out := make([]Genre, len(table))
	copy(out, table)
	return out
}

// Labels returns the vocabulary labels in presentation order.
func Labels() []string {
	out := make([]string, 0, len(table))
	for _, g := range table {
		out = append(out, g.Label)
	}
	return out
}
