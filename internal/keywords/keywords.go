// Package keywords extracts the significant words of a text.
package keywords

import (
	"strings"
)

// MinLength is the shortest token kept as a keyword.
const MinLength = 3

// ExtractKeywords lowercases text, splits it into runs of ASCII letters and
// returns the set of tokens that are neither stopwords nor shorter than MinLength.
// Every other character, including digits and non-ASCII letters, separates tokens.
func ExtractKeywords(text string) Set {
	set := make(Set)
	lower := strings.ToLower(text)

	start := -1
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c >= 'a' && c <= 'z' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			set.addToken(lower[start:i])
			start = -1
		}
	}
	if start >= 0 {
		set.addToken(lower[start:])
	}

	return set
}

func (s Set) addToken(token string) {
	if len(token) < MinLength || IsStopword(token) {
		return
	}
	s[token] = struct{}{}
}
