package language

import (
	"testing"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ko", "ko"},
		{"KO", "ko"},
		{"kor", "ko"},
		{"Korean", "ko"},
		{"한국어", "ko"},
		{" 일본어 ", "ja"},
		{"fre", "fr"},
		{"fra", "fr"},
		{"mandarin", "zh"},
		{"광둥어", "cn"},
		{"tur", "tr"},
		{"xx", "xx"},
		{"", ""},
		{"elvish", ""},
		{"qqq", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToISO2(tt.input); got != tt.expected {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ko", "한국어"},
		{"eng", "영어"},
		{"japanese", "일본어"},
		{"xx", "XX"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.input); got != tt.expected {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestEveryEntryIsIndexed(t *testing.T) {
	for _, e := range languages {
		if ToISO2(e.code3) != e.code2 {
			t.Errorf("code3 %q does not map to %q", e.code3, e.code2)
		}
		for _, w := range e.words {
			if ToISO2(w) != e.code2 {
				t.Errorf("word %q does not map to %q", w, e.code2)
			}
		}
	}
}
