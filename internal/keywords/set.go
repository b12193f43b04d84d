package keywords

import (
	"encoding/json"
	"sort"
)

// Set is an unordered collection of keywords
type Set map[string]struct{}

// NewSet builds a set from the given words as-is
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Has reports whether word is in the set
func (s Set) Has(word string) bool {
	_, ok := s[word]
	return ok
}

// Len returns the number of keywords
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the keywords in ascending lexicographic order.
// The result is never nil.
func (s Set) Sorted() []string {
	words := make([]string, 0, len(s))
	for w := range s {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Intersect returns the keywords present in both sets
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Set)
	for w := range small {
		if large.Has(w) {
			out[w] = struct{}{}
		}
	}
	return out
}

// Difference returns the keywords of s that are absent from other
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for w := range s {
		if !other.Has(w) {
			out[w] = struct{}{}
		}
	}
	return out
}

// Equal reports whether both sets hold exactly the same keywords
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for w := range s {
		if !other.Has(w) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a JSON array into the set
func (s *Set) UnmarshalJSON(data []byte) error {
	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return err
	}
	*s = NewSet(words...)
	return nil
}
