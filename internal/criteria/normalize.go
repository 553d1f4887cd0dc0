package criteria

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"cinechat/internal/catalog/tmdb"
	"cinechat/internal/genre"
	"cinechat/internal/language"
	"cinechat/internal/logging"
	"cinechat/internal/services"
	"cinechat/internal/services/llm"
)

// DefaultLocale is the response language forced onto every query.
const DefaultLocale = "ko-KR"

// Field names accepted from model output in addition to the catalog's own
// parameter names.
const (
	FieldGenre = "genre"
	// FieldCountry is the key used by the earliest prompt revision.
	FieldCountry = "country"
)

const maxPage = 500

// aliases maps every accepted key to its canonical catalog parameter.
var aliases = map[string]string{
	FieldGenre:                 tmdb.ParamGenres,
	"genres":                   tmdb.ParamGenres,
	tmdb.ParamGenres:           tmdb.ParamGenres,
	FieldCountry:               tmdb.ParamOriginCountry,
	tmdb.ParamOriginCountry:    tmdb.ParamOriginCountry,
	tmdb.ParamRegion:           tmdb.ParamRegion,
	tmdb.ParamOriginalLanguage: tmdb.ParamOriginalLanguage,
	tmdb.ParamReleaseDateGTE:   tmdb.ParamReleaseDateGTE,
	tmdb.ParamReleaseDateLTE:   tmdb.ParamReleaseDateLTE,
	tmdb.ParamVoteAverageGTE:   tmdb.ParamVoteAverageGTE,
	tmdb.ParamVoteAverageLTE:   tmdb.ParamVoteAverageLTE,
	tmdb.ParamLanguage:         tmdb.ParamLanguage,
	tmdb.ParamSortBy:           tmdb.ParamSortBy,
	tmdb.ParamPage:             tmdb.ParamPage,
}

// validator tags per canonical field.
var fieldRules = map[string]string{
	tmdb.ParamOriginCountry:    "iso3166_1_alpha2",
	tmdb.ParamRegion:           "iso3166_1_alpha2",
	tmdb.ParamOriginalLanguage: "len=2,alpha,lowercase",
	tmdb.ParamReleaseDateGTE:   "datetime=2006-01-02",
	tmdb.ParamReleaseDateLTE:   "datetime=2006-01-02",
	tmdb.ParamVoteAverageGTE:   "gte=0,lte=10",
	tmdb.ParamVoteAverageLTE:   "gte=0,lte=10",
	tmdb.ParamPage:             "min=1,max=500",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Dropped records a value removed during normalization.
type Dropped struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// Result is the outcome of one normalization.
type Result struct {
	Query tmdb.DiscoverQuery `json:"-"`
	// Genres lists the resolved vocabulary labels in query order.
	Genres  []string  `json:"genres,omitempty"`
	Dropped []Dropped `json:"dropped,omitempty"`
}

// Normalizer converts model output or request parameters into a canonical
// discovery query. It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	locale string
	logger *slog.Logger
}

// NewNormalizer builds a normalizer that forces locale onto every query.
func NewNormalizer(locale string, logger *slog.Logger) *Normalizer {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DefaultLocale
	}
	return &Normalizer{locale: locale, logger: logging.NewComponentLogger(logger, "normalizer")}
}

// Locale returns the forced response language.
func (n *Normalizer) Locale() string {
	return n.locale
}

// Normalize parses raw model output. The text must be a JSON object, optionally
// wrapped in one markdown code fence, with at least one recognized non-empty
// field. Out-of-domain values are dropped with a warning; a genre field that
// maps to nothing fails with *services.UnknownGenreError.
func (n *Normalizer) Normalize(raw string) (Result, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		return Result{}, err
	}
	return n.normalize(fields, false)
}

// NormalizeParams normalizes request query parameters. Unlike Normalize it
// accepts an empty parameter set and rejects out-of-domain values instead of
// dropping them. The sort order is honoured when it is a known sort key.
func (n *Normalizer) NormalizeParams(params url.Values) (Result, error) {
	fields := make(map[string]any, len(params))
	for key, values := range params {
		if len(values) == 0 {
			continue
		}
		fields[key] = strings.Join(values, ",")
	}
	return n.normalize(fields, true)
}

// Normalize is a convenience wrapper using the default locale and no logging.
func Normalize(raw string) (tmdb.DiscoverQuery, error) {
	res, err := NewNormalizer(DefaultLocale, nil).Normalize(raw)
	if err != nil {
		return tmdb.DiscoverQuery{}, err
	}
	return res.Query, nil
}

func decodeObject(raw string) (map[string]any, error) {
	text := llm.StripCodeFence(raw)
	if text == "" {
		return nil, parseError("empty model output", nil)
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, parseError("model output is not valid JSON", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, parseError("unexpected data after JSON object", nil)
	}
	fields, ok := value.(map[string]any)
	if !ok {
		return nil, parseError("model output is not a JSON object", nil)
	}
	return fields, nil
}

func parseError(message string, err error) error {
	return services.Wrap(services.ErrParse, "criteria", "normalize", message, err)
}

func (n *Normalizer) normalize(fields map[string]any, strict bool) (Result, error) {
	var (
		res         Result
		q           tmdb.DiscoverQuery
		recognized  int
		genreTokens []string
	)

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	reject := func(field, value, reason string) error {
		if strict {
			return services.Wrap(services.ErrValidation, "criteria", "normalize", field+": "+reason, nil)
		}
		res.Dropped = append(res.Dropped, Dropped{Field: field, Value: value, Reason: reason})
		logging.WarnWithContext(n.logger, "criteria field dropped", "criteria_field_dropped",
			logging.String("field", field),
			logging.String("value", value),
			logging.String("reason", reason),
			logging.String(logging.FieldImpact, "filter not applied to the catalog query"),
		)
		return nil
	}

	for _, key := range keys {
		canonical, ok := aliases[strings.TrimSpace(key)]
		if !ok {
			n.logger.Debug("criteria key ignored", logging.String("field", key))
			continue
		}
		value := fields[key]
		if canonical == tmdb.ParamGenres {
			tokens := genreValues(value)
			if len(tokens) > 0 {
				genreTokens = append(genreTokens, tokens...)
			}
			continue
		}
		text, ok := scalarString(value)
		if !ok {
			if !isEmpty(value) {
				if err := reject(canonical, compact(value), "unsupported value type"); err != nil {
					return Result{}, err
				}
			}
			continue
		}
		if text == "" {
			continue
		}

		switch canonical {
		case tmdb.ParamLanguage:
			// Always replaced by the configured locale.
		case tmdb.ParamOriginCountry, tmdb.ParamRegion:
			code := strings.ToUpper(text)
			if err := validate.Var(code, fieldRules[canonical]); err != nil {
				if err := reject(canonical, text, "not an ISO 3166-1 alpha-2 code"); err != nil {
					return Result{}, err
				}
				continue
			}
			if canonical == tmdb.ParamRegion {
				q.Region = code
			} else {
				q.OriginCountry = code
			}
			recognized++
		case tmdb.ParamOriginalLanguage:
			code := language.ToISO2(text)
			if code == "" {
				code = strings.ToLower(text)
			}
			if err := validate.Var(code, fieldRules[canonical]); err != nil {
				if err := reject(canonical, text, "not an ISO 639-1 code"); err != nil {
					return Result{}, err
				}
				continue
			}
			q.OriginalLanguage = code
			recognized++
		case tmdb.ParamReleaseDateGTE, tmdb.ParamReleaseDateLTE:
			if err := validate.Var(text, fieldRules[canonical]); err != nil {
				if err := reject(canonical, text, "not a YYYY-MM-DD date"); err != nil {
					return Result{}, err
				}
				continue
			}
			if canonical == tmdb.ParamReleaseDateGTE {
				q.ReleaseDateGTE = text
			} else {
				q.ReleaseDateLTE = text
			}
			recognized++
		case tmdb.ParamVoteAverageGTE, tmdb.ParamVoteAverageLTE:
			rating, err := strconv.ParseFloat(text, 64)
			if err == nil {
				err = validate.Var(rating, fieldRules[canonical])
			}
			if err != nil {
				if err := reject(canonical, text, "not a rating between 0 and 10"); err != nil {
					return Result{}, err
				}
				continue
			}
			if canonical == tmdb.ParamVoteAverageGTE {
				q.VoteAverageGTE = &rating
			} else {
				q.VoteAverageLTE = &rating
			}
			recognized++
		case tmdb.ParamSortBy:
			if !tmdb.ValidSortKey(text) {
				if err := reject(canonical, text, "unknown sort order"); err != nil {
					return Result{}, err
				}
				continue
			}
			if strict {
				q.SortBy = text
			}
		case tmdb.ParamPage:
			page, err := strconv.Atoi(text)
			if err == nil {
				err = validate.Var(page, fieldRules[canonical])
			}
			if err != nil {
				if err := reject(canonical, text, "page must be between 1 and "+strconv.Itoa(maxPage)); err != nil {
					return Result{}, err
				}
				continue
			}
			q.Page = page
		}
	}

	if len(genreTokens) > 0 {
		ids, labels, unmapped := resolveGenres(genreTokens)
		if len(ids) == 0 || (strict && len(unmapped) > 0) {
			return Result{}, &services.UnknownGenreError{Labels: unmapped}
		}
		for _, token := range unmapped {
			if err := reject(tmdb.ParamGenres, token, "not in the genre vocabulary"); err != nil {
				return Result{}, err
			}
		}
		q.Genres = ids
		res.Genres = labels
		recognized++
	}

	// language, sort_by and page never filter, so they alone do not count.
	if recognized == 0 && !strict {
		return Result{}, parseError("no recognized criteria in model output", nil)
	}

	q.Language = n.locale
	res.Query = q.WithDefaults()
	return res, nil
}

// resolveGenres maps tokens to catalog ids preserving first-seen order.
func resolveGenres(tokens []string) (ids []int, labels []string, unmapped []string) {
	seen := make(map[int]struct{}, len(tokens))
	for _, token := range tokens {
		id, ok := genre.LookupToken(token)
		if !ok {
			unmapped = append(unmapped, token)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		label, _ := genre.Label(id)
		labels = append(labels, label)
	}
	return ids, labels, unmapped
}

// genreValues splits a genre field into trimmed, non-empty tokens. Strings
// are comma separated; arrays contribute each element.
func genreValues(value any) []string {
	var parts []string
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			parts = append(parts, genreValues(item)...)
		}
		return parts
	default:
		text, ok := scalarString(v)
		if !ok || text == "" {
			return nil
		}
		for _, token := range strings.Split(text, ",") {
			if token = strings.TrimSpace(token); token != "" {
				parts = append(parts, token)
			}
		}
		return parts
	}
}

// scalarString renders strings and numbers as trimmed text. The boolean is
// false for null, objects, arrays and booleans.
func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	default:
		return "", false
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func compact(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return "?"
	}
	return string(data)
}
