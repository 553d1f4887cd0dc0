package tmdb

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultSortBy is the catalog's popularity ranking, the only ordering the pipeline uses.
	DefaultSortBy = "popularity.desc"
	// DefaultPage is the first result page.
	DefaultPage = 1
)

// Query parameter names understood by /discover/movie.
const (
	ParamGenres           = "with_genres"
	ParamLanguage         = "language"
	ParamRegion           = "region"
	ParamOriginCountry    = "with_origin_country"
	ParamOriginalLanguage = "with_original_language"
	ParamReleaseDateGTE   = "primary_release_date.gte"
	ParamReleaseDateLTE   = "primary_release_date.lte"
	ParamVoteAverageGTE   = "vote_average.gte"
	ParamVoteAverageLTE   = "vote_average.lte"
	ParamSortBy           = "sort_by"
	ParamPage             = "page"
)

var sortKeys = map[string]struct{}{
	"popularity.asc":            {},
	"popularity.desc":           {},
	"primary_release_date.asc":  {},
	"primary_release_date.desc": {},
	"vote_average.asc":          {},
	"vote_average.desc":         {},
	"vote_count.asc":            {},
	"vote_count.desc":           {},
	"revenue.asc":               {},
	"revenue.desc":              {},
	"title.asc":                 {},
	"title.desc":                {},
}

// ValidSortKey reports whether key is a sort order accepted by the discover endpoint.
func ValidSortKey(key string) bool {
	_, ok := sortKeys[strings.TrimSpace(key)]
	return ok
}

// DiscoverQuery is the canonical parameter set for a discovery search. Zero
// values mean "not set" and are never serialized.
type DiscoverQuery struct {
	Genres           []int
	Language         string
	Region           string
	OriginCountry    string
	OriginalLanguage string
	ReleaseDateGTE   string
	ReleaseDateLTE   string
	VoteAverageGTE   *float64
	VoteAverageLTE   *float64
	SortBy           string
	Page             int
}

// WithDefaults returns a copy with the sort order and page filled in.
func (q DiscoverQuery) WithDefaults() DiscoverQuery {
	out := q
	out.Genres = append([]int(nil), q.Genres...)
	if strings.TrimSpace(out.SortBy) == "" {
		out.SortBy = DefaultSortBy
	}
	if out.Page <= 0 {
		out.Page = DefaultPage
	}
	return out
}

// GenreParam renders the genre ids comma-joined in their original order.
func (q DiscoverQuery) GenreParam() string {
	if len(q.Genres) == 0 {
		return ""
	}
	parts := make([]string, 0, len(q.Genres))
	for _, id := range q.Genres {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}

// Values serializes the query, omitting every unset field.
func (q DiscoverQuery) Values() url.Values {
	params := url.Values{}
	setIf := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			params.Set(key, value)
		}
	}
	setIf(ParamGenres, q.GenreParam())
	setIf(ParamLanguage, q.Language)
	setIf(ParamRegion, q.Region)
	setIf(ParamOriginCountry, q.OriginCountry)
	setIf(ParamOriginalLanguage, q.OriginalLanguage)
	setIf(ParamReleaseDateGTE, q.ReleaseDateGTE)
	setIf(ParamReleaseDateLTE, q.ReleaseDateLTE)
	if q.VoteAverageGTE != nil {
		params.Set(ParamVoteAverageGTE, formatFloat(*q.VoteAverageGTE))
	}
	if q.VoteAverageLTE != nil {
		params.Set(ParamVoteAverageLTE, formatFloat(*q.VoteAverageLTE))
	}
	setIf(ParamSortBy, q.SortBy)
	if q.Page > 0 {
		params.Set(ParamPage, strconv.Itoa(q.Page))
	}
	return params
}

// Map renders the query as a JSON-friendly object using the catalog's
// parameter names. Feeding this object back through the normalizer yields an
// equivalent query.
func (q DiscoverQuery) Map() map[string]any {
	out := make(map[string]any)
	for key, values := range q.Values() {
		if len(values) == 0 {
			continue
		}
		out[key] = values[0]
	}
	if q.Page > 0 {
		out[ParamPage] = q.Page
	}
	if q.VoteAverageGTE != nil {
		out[ParamVoteAverageGTE] = *q.VoteAverageGTE
	}
	if q.VoteAverageLTE != nil {
		out[ParamVoteAverageLTE] = *q.VoteAverageLTE
	}
	return out
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
