package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
)

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Korean display name
	words   []string // English and Korean word forms
}

var languages = []entry{
	{"ko", "kor", "", "한국어", []string{"korean", "한국어", "한국말", "한글"}},
	{"en", "eng", "", "영어", []string{"english", "영어"}},
	{"ja", "jpn", "", "일본어", []string{"japanese", "일본어"}},
	{"zh", "zho", "chi", "중국어", []string{"chinese", "mandarin", "중국어"}},
	{"cn", "yue", "", "광둥어", []string{"cantonese", "광둥어", "광동어"}},
	{"fr", "fra", "fre", "프랑스어", []string{"french", "프랑스어", "불어"}},
	{"es", "spa", "", "스페인어", []string{"spanish", "스페인어"}},
	{"de", "deu", "ger", "독일어", []string{"german", "독일어"}},
	{"it", "ita", "", "이탈리아어", []string{"italian", "이탈리아어"}},
	{"hi", "hin", "", "힌디어", []string{"hindi", "힌디어"}},
	{"ru", "rus", "", "러시아어", []string{"russian", "러시아어"}},
	{"th", "tha", "", "태국어", []string{"thai", "태국어"}},
	{"pt", "por", "", "포르투갈어", []string{"portuguese", "포르투갈어"}},
	{"sv", "swe", "", "스웨덴어", []string{"swedish", "스웨덴어"}},
	{"da", "dan", "", "덴마크어", []string{"danish", "덴마크어"}},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages)*3)
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// ToISO2 converts any recognized language code or word to ISO 639-1 (2-letter).
// Returns empty string for unrecognized input.
// If the input is already a 2-letter code (even if unknown), it passes through.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	if len(code) == 3 {
		if base, err := xlanguage.ParseBase(code); err == nil {
			if iso := base.String(); len(iso) == 2 {
				return iso
			}
		}
	}
	return ""
}

// DisplayName returns the Korean name for any recognized code.
// Returns the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}
