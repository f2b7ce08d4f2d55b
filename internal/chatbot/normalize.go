package chatbot

import (
	"strings"
	"unicode"
)

// Normalize lowercases the message and strips every rune that is not a
// word character or whitespace. The result is the canonical form used
// for reply-cache keys and intent matching.
//
// Word characters are Unicode-aware so non-Latin scripts pass through
// intact. Normalize is pure and idempotent.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}
