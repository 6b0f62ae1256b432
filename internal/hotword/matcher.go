package hotword

import (
	"strings"
	"unicode"
)

// Variants accepted as the wake phrase. Speech transcription regularly mangles
// "hey buddy" into near-homophones, so the set carries the common misses.
var variants = []string{
	"hey buddy",
	"hey body",
	"a buddy",
	"hey bud",
	"hey but",
}

// Normalize lower-cases the text, strips punctuation and collapses runs of
// whitespace into single spaces.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastSpace := true
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// Match normalizes the raw transcript and returns the first wake-phrase
// variant contained in it.
func Match(raw string) (string, bool) {
	text := Normalize(raw)
	if text == "" {
		return "", false
	}

	for _, v := range variants {
		if strings.Contains(text, v) {
			return v, true
		}
	}
	return "", false
}
