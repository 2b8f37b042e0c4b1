package suggest

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity bounds the prefix table when no capacity is configured
const DefaultCapacity = 10000

// splitPattern separates line text into words for the prefix table.
// Words are delimited by whitespace, '/', '[' and ']' so that paths and
// bracketed fields yield their components.
var splitPattern = regexp.MustCompile(`[\s/\[\]]`)

// Index is a bounded prefix table mapping lowercase prefixes to the
// longest word observed with that prefix. Least-recently-used entries
// are evicted once the capacity is reached.
type Index struct {
	entries *lru.Cache[string, string]
}

// New creates a suggestion index holding at most capacity entries
func New(capacity int) *Index {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	// lru.New only fails for a non-positive size
	entries, _ := lru.New[string, string](capacity)
	return &Index{entries: entries}
}

// Observe records every word of text in the prefix table. Each proper
// prefix of a word maps to that word; a stored word is only replaced by
// a strictly longer one.
func (ix *Index) Observe(text string) {
	for _, word := range splitPattern.Split(text, -1) {
		if len(word) <= 1 {
			continue
		}
		for i := range word {
			if i == 0 {
				continue
			}
			key := strings.ToLower(word[:i])
			if existing, ok := ix.entries.Get(key); ok && len(existing) >= len(word) {
				continue
			}
			ix.entries.Add(key, word)
		}
	}
}

// Suggest completes the trailing word of partial from the prefix table.
// The rest of the input is preserved verbatim. It returns false when
// the trailing word is empty or has no recorded completion.
func (ix *Index) Suggest(partial string) (string, bool) {
	words := splitPattern.Split(partial, -1)
	word := words[len(words)-1]
	if word == "" {
		return "", false
	}

	hit, ok := ix.entries.Get(strings.ToLower(word))
	if !ok {
		return "", false
	}
	return partial[:len(partial)-len(word)] + hit, true
}

// Len returns the number of stored prefixes
func (ix *Index) Len() int {
	return ix.entries.Len()
}
