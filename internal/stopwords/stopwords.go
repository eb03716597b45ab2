// Package stopwords provides the stop-word sets consumed by the fast-fuzzy
// stripper and the more-like-this builder.
package stopwords

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/miyachan/lnx/internal/errors"
)

//go:embed words_en.txt
var embeddedWords string

// Provider exposes a loaded stop-word collection in both the set form used
// for membership checks and the list form the similarity builder consumes.
type Provider struct {
	set  map[string]struct{}
	list []string
}

// Default returns a provider over the embedded English list.
func Default() (*Provider, error) {
	return fromLines(embeddedWords)
}

// FromFile loads one word per line from path. Load failures are propagated,
// never silently replaced with an empty set.
func FromFile(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStopWords, fmt.Errorf("failed to load stop words from %s: %w", path, err))
	}
	return fromLines(string(data))
}

// FromWords builds a provider from an explicit word list.
func FromWords(words []string) (*Provider, error) {
	return build(words)
}

func fromLines(raw string) (*Provider, error) {
	var words []string
	for _, line := range strings.Split(raw, "\n") {
		word := strings.TrimSpace(line)
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		words = append(words, word)
	}
	return build(words)
}

func build(words []string) (*Provider, error) {
	if len(words) == 0 {
		return nil, errors.New(errors.ErrCodeStopWords, "stop word source is empty", nil)
	}

	p := &Provider{set: make(map[string]struct{}, len(words))}
	for _, word := range words {
		word = strings.ToLower(word)
		if _, seen := p.set[word]; seen {
			continue
		}
		p.set[word] = struct{}{}
		p.list = append(p.list, word)
	}
	return p, nil
}

// Contains reports whether word is a stop word.
func (p *Provider) Contains(word string) bool {
	_, ok := p.set[strings.ToLower(word)]
	return ok
}

// Set returns the membership set. Callers must not mutate it.
func (p *Provider) Set() map[string]struct{} {
	return p.set
}

// List returns the words in load order. Callers must not mutate it.
func (p *Provider) List() []string {
	return p.list
}
