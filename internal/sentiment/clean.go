package sentiment

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	linkPattern    = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	urlPattern     = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S*`)
)

// Clean reduces raw post text to plain words and basic punctuation. It is
// total and idempotent: Clean(Clean(s)) == Clean(s).
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	text := htmlTagPattern.ReplaceAllString(raw, " ")
	text = linkPattern.ReplaceAllString(text, "$1") // keep only the label
	text = urlPattern.ReplaceAllString(text, "")
	text = strings.Map(keepRune, text)
	// dropping characters can splice a new www. token together
	text = urlPattern.ReplaceAllString(text, "")

	return strings.Join(strings.Fields(text), " ")
}

func keepRune(r rune) rune {
	switch {
	case r == unicode.ReplacementChar:
		return -1
	case unicode.IsLetter(r), unicode.IsDigit(r):
		return r
	case unicode.IsSpace(r):
		return ' '
	}
	switch r {
	case '.', ',', '!', '?', '\'', '"', '-':
		return r
	}
	return -1
}
