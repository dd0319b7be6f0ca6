package moderation

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"
)

//go:embed wordlist.txt
var defaultWordlist string

// ProfanityFilter is a static wordlist check. It is loaded once at startup
// and read-only afterwards, shared by all workspaces.
type ProfanityFilter struct {
	words map[string]struct{}
}

// LoadProfanityFilter reads a wordlist from path, or the embedded default
// list when path is empty. One word per line, # comments allowed.
func LoadProfanityFilter(path string) (*ProfanityFilter, error) {
	raw := defaultWordlist
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("profanity wordlist: %w", err)
		}
		raw = string(b)
	}

	words := make(map[string]struct{})
	for _, line := range strings.Split(raw, "\n") {
		word := strings.ToLower(strings.TrimSpace(line))
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		words[word] = struct{}{}
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("profanity wordlist: empty list")
	}

	return &ProfanityFilter{words: words}, nil
}

// ContainsProfanity reports whether any token of content is on the wordlist.
// Tokens are compared whole, so listed words inside longer clean words do not
// trigger.
func (f *ProfanityFilter) ContainsProfanity(content string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		if _, ok := f.words[tok]; ok {
			return true
		}
	}
	return false
}

// Size returns the number of loaded words.
func (f *ProfanityFilter) Size() int {
	return len(f.words)
}
