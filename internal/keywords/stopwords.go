package keywords

import "sort"

// stopwords holds the common English function words dropped during extraction.
// The table is never mutated after package initialization.
var stopwords = map[string]struct{}{
	"and": {}, "or": {}, "the": {}, "a": {}, "an": {},
	"to": {}, "of": {}, "in": {}, "on": {}, "for": {},
	"with": {}, "is": {}, "are": {}, "as": {}, "at": {},
	"by": {}, "this": {}, "that": {}, "from": {},
}

// IsStopword reports whether the lowercase token is a stopword
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// Stopwords returns a sorted copy of the stopword table
func Stopwords() []string {
	words := make([]string, 0, len(stopwords))
	for w := range stopwords {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}
