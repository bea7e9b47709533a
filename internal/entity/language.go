package entity

import (
	"strings"

	"golang.org/x/text/language"
)

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

var languageMatcher = language.NewMatcher([]language.Tag{language.English, language.Arabic})

// ParseLanguage matches locale strings ("ar-SA", "en-US,en;q=0.9") onto a supported language.
// Empty input yields the empty Language so callers can tell "unknown" from "English".
func ParseLanguage(raw ...string) Language {
	var inputs []string
	for _, r := range raw {
		if strings.TrimSpace(r) != "" {
			inputs = append(inputs, r)
		}
	}
	if len(inputs) == 0 {
		return ""
	}

	tag, _ := language.MatchStrings(languageMatcher, inputs...)
	base, _ := tag.Base()
	if base.String() == "ar" {
		return LanguageArabic
	}
	return LanguageEnglish
}
