// Package slug derives URL-safe identifiers from display text.
package slug

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

const (
	questionSlugWords = 8
	questionHashLen   = 10
)

// Make lowercases text and collapses everything that is not a word character
// into single hyphens.
func Make(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	var builder strings.Builder
	builder.Grow(len(lowered))
	pendingHyphen := false
	for _, r := range lowered {
		switch {
		case unicode.IsSpace(r) || r == '-':
			pendingHyphen = builder.Len() > 0
		case isWordRune(r):
			if pendingHyphen {
				builder.WriteByte('-')
				pendingHyphen = false
			}
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// Question builds the globally unique slug for a question: the first eight
// words slugified plus a short content hash of the full text.
func Question(text string) string {
	words := strings.Fields(text)
	if len(words) > questionSlugWords {
		words = words[:questionSlugWords]
	}
	base := Make(strings.Join(words, " "))
	sum := sha256.Sum256([]byte(text))
	hash := hex.EncodeToString(sum[:])[:questionHashLen]
	if base == "" {
		return hash
	}
	return base + "-" + hash
}

func isWordRune(r rune) bool {
	return r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}
