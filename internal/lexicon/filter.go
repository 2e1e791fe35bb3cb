// Package lexicon loads and indexes the noun table.
package lexicon

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxWordLen bounds the length of an accepted noun in runes.
const maxWordLen = 64

// ValidWord reports whether word looks like a single German noun: letters with
// optional inner hyphens, starting with a letter.
func ValidWord(word string) bool {
	if word == "" || utf8.RuneCountInString(word) > maxWordLen {
		return false
	}
	if strings.HasPrefix(word, "-") || strings.HasSuffix(word, "-") {
		return false
	}
	for _, r := range word {
		if r == '-' {
			continue
		}
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Suffixes returns the lower-case endings of word from length 1 up to maxLen
// runes. maxLen <= 0 returns every suffix.
func Suffixes(word string, maxLen int) []string {
	runes := []rune(strings.ToLower(word))
	n := len(runes)
	if maxLen > 0 && maxLen < n {
		n = maxLen
	}
	out := make([]string, 0, n)
	for l := 1; l <= n; l++ {
		out = append(out, string(runes[len(runes)-l:]))
	}
	return out
}
