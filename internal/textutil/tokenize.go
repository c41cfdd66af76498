package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize trims surrounding whitespace and applies NFC composition so that
// decomposed Hangul jamo and Latin diacritics compare equal to their composed
// forms.
func Normalize(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// Tokenize splits narrative text into distinct candidate keywords. Tokens are
// separated by whitespace, commas, and slashes; surrounding punctuation is
// stripped and duplicates are removed while preserving first-seen order.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '/'
	})
	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		token := strings.TrimFunc(field, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	return tokens
}
