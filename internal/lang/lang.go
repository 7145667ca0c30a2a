// Package lang resolves and detects the assistant's supported languages:
// English, Hindi and Punjabi.
package lang

import (
	"unicode"

	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English,
	language.Hindi,
	language.Punjabi,
}

var matcher = language.NewMatcher(supported)

// Resolve maps an arbitrary language tag to the closest supported one,
// falling back to the default when the tag is unknown or unsupported.
func Resolve(tag, fallback string) string {
	if tag == "" {
		return fallback
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return fallback
	}
	_, idx, conf := matcher.Match(parsed)
	if conf == language.No {
		return fallback
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Detect guesses the language of text by script: Devanagari means Hindi,
// Gurmukhi means Punjabi, otherwise the fallback. Short inputs stay on the
// fallback since there is too little signal.
func Detect(text, fallback string) string {
	letters := 0
	devanagari := 0
	gurmukhi := 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		switch {
		case unicode.Is(unicode.Devanagari, r):
			devanagari++
		case unicode.Is(unicode.Gurmukhi, r):
			gurmukhi++
		}
	}
	if letters < 3 {
		return fallback
	}
	switch {
	case gurmukhi*2 > letters:
		return "pa"
	case devanagari*2 > letters:
		return "hi"
	default:
		return "en"
	}
}
