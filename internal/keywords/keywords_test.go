package keywords

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "empty text",
			text:     "",
			expected: []string{},
		},
		{
			name:     "whitespace only",
			text:     "  \n\t ",
			expected: []string{},
		},
		{
			name:     "stopwords and short words filtered",
			text:     "I am in a good team",
			expected: []string{"good", "team"},
		},
		{
			name:     "duplicates collapse",
			text:     "Go go GO golang golang",
			expected: []string{"golang"},
		},
		{
			name:     "digits split tokens",
			text:     "co2 emissions k8s html5",
			expected: []string{"emissions", "html"},
		},
		{
			name:     "hyphenated words split",
			text:     "machine-learning",
			expected: []string{"learning", "machine"},
		},
		{
			name:     "symbols destroy skill names",
			text:     "C++ 3D C# .NET",
			expected: []string{"net"},
		},
		{
			name:     "accented letters act as separators",
			text:     "café résumé",
			expected: []string{"caf", "sum"},
		},
		{
			name:     "all stopwords",
			text:     "and or the with from this that",
			expected: []string{},
		},
		{
			name:     "three letter words kept",
			text:     "API SQL AWS",
			expected: []string{"api", "aws", "sql"},
		},
		{
			name:     "invalid utf8 treated as separator",
			text:     "python\xffdjango",
			expected: []string{"django", "python"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.text).Sorted()
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestExtractKeywordsCaseInsensitive(t *testing.T) {
	want := NewSet("python")
	for _, text := range []string{"Python", "python", "PYTHON"} {
		if got := ExtractKeywords(text); !got.Equal(want) {
			t.Errorf("ExtractKeywords(%q) = %v, expected %v", text, got.Sorted(), want.Sorted())
		}
	}
}

func TestExtractKeywordsIdempotent(t *testing.T) {
	text := "Senior Go engineer with Kubernetes, Terraform and PostgreSQL experience."
	first := ExtractKeywords(text)
	second := ExtractKeywords(text)
	if !first.Equal(second) {
		t.Errorf("Expected identical sets, got %v and %v", first.Sorted(), second.Sorted())
	}
}

func TestExtractKeywordsInvariants(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog; 42 times, at 3pm, for EVERYONE in the office!"
	for word := range ExtractKeywords(text) {
		if len(word) < MinLength {
			t.Errorf("Keyword %q shorter than %d", word, MinLength)
		}
		if IsStopword(word) {
			t.Errorf("Keyword %q is a stopword", word)
		}
		if strings.ToLower(word) != word {
			t.Errorf("Keyword %q is not lowercase", word)
		}
		for _, c := range word {
			if c < 'a' || c > 'z' {
				t.Errorf("Keyword %q contains non-letter %q", word, c)
			}
		}
	}
}

func TestStopwords(t *testing.T) {
	words := Stopwords()
	if len(words) != 19 {
		t.Errorf("Expected 19 stopwords, got %d", len(words))
	}
	for _, w := range []string{"and", "or", "the", "a", "an", "to", "of", "in", "on", "for",
		"with", "is", "are", "as", "at", "by", "this", "that", "from"} {
		if !IsStopword(w) {
			t.Errorf("Expected %q to be a stopword", w)
		}
	}
	if IsStopword("python") {
		t.Error("Expected python not to be a stopword")
	}

	// mutating the returned copy must not affect the table
	words[0] = "python"
	if IsStopword("python") {
		t.Error("Stopword table was mutated through Stopwords()")
	}
}

func TestSetOperations(t *testing.T) {
	a := NewSet("python", "sql", "docker")
	b := NewSet("python", "sql", "skills", "required")

	if got := a.Intersect(b).Sorted(); !reflect.DeepEqual(got, []string{"python", "sql"}) {
		t.Errorf("Intersect: expected [python sql], got %v", got)
	}
	if got := b.Difference(a).Sorted(); !reflect.DeepEqual(got, []string{"required", "skills"}) {
		t.Errorf("Difference: expected [required skills], got %v", got)
	}
	if !a.Has("docker") || a.Has("required") {
		t.Error("Has returned unexpected result")
	}
	if a.Len() != 3 {
		t.Errorf("Expected Len 3, got %d", a.Len())
	}
}

func TestSetJSON(t *testing.T) {
	data, err := json.Marshal(NewSet("sql", "api", "python"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `["api","python","sql"]` {
		t.Errorf("Expected sorted array, got %s", data)
	}

	var empty Set
	data, err = json.Marshal(empty)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `[]` {
		t.Errorf("Expected empty array for nil set, got %s", data)
	}

	var decoded Set
	if err := json.Unmarshal([]byte(`["go","rust"]`), &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !decoded.Equal(NewSet("go", "rust")) {
		t.Errorf("Unexpected decoded set %v", decoded.Sorted())
	}
}

func BenchmarkExtractKeywords(b *testing.B) {
	text := strings.Repeat("Experienced backend engineer building distributed systems in Go and Python. ", 200)
	for b.Loop() {
		ExtractKeywords(text)
	}
}
