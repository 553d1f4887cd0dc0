package criteria

import (
	"fmt"
	"strings"

	"cinechat/internal/catalog/tmdb"
	"cinechat/internal/genre"
)

const promptTemplate = `You convert a movie request (usually Korean) into TMDB discover filters.

Respond ONLY with a single JSON object. Allowed keys:
- "genre": one or more labels from the list below, comma separated
- "%s": earliest release date, YYYY-MM-DD
- "%s": latest release date, YYYY-MM-DD
- "%s": production country, ISO 3166-1 alpha-2 (e.g. "KR", "US")
- "%s": original language, ISO 639-1 (e.g. "ko", "en")
- "%s": minimum rating, number between 0 and 10
- "%s": maximum rating, number between 0 and 10

Genre labels (use these exact strings): %s

Rules:
- Map synonyms and English terms onto the labels above (horror -> 공포, 호러 -> 공포, rom-com -> 로맨스,코미디).
- Resolve relative dates such as "최근" or "90년대" against today's date: %s.
- Omit any key the request does not mention. Never output empty strings or null.
- Do not add keys that are not listed.

Example: {"genre":"공포","%s":"KR"}`

// SystemPrompt renders the instruction sent with every extraction. The genre
// list comes from the same table the Normalizer resolves against.
func SystemPrompt(today string) string {
	return fmt.Sprintf(promptTemplate,
		tmdb.ParamReleaseDateGTE,
		tmdb.ParamReleaseDateLTE,
		tmdb.ParamOriginCountry,
		tmdb.ParamOriginalLanguage,
		tmdb.ParamVoteAverageGTE,
		tmdb.ParamVoteAverageLTE,
		strings.Join(genre.Labels(), ", "),
		today,
		tmdb.ParamOriginCountry,
	)
}
