// Package correct defines the spelling-correction contract consumed by the
// fast-fuzzy query path and the index-time field corrector. The correction
// algorithm itself lives outside this core.
package correct

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxEditDistance is the edit distance applied everywhere this core
// invokes correction.
const DefaultMaxEditDistance = 1

// Corrector corrects a sentence. Implementations must be deterministic for
// identical input and configuration.
type Corrector func(text string, maxEditDistance int) string

// Noop returns its input unchanged. Useful when correction is disabled.
func Noop(text string, _ int) string {
	return text
}

// Cache configuration constants.
const (
	// DefaultCorrectionCacheSize is the default number of corrected
	// sentences to keep. Queries repeat heavily, so even a small cache
	// absorbs most correction calls.
	DefaultCorrectionCacheSize = 4096
)

// Cached wraps a Corrector with an LRU cache keyed on the sentence and the
// edit distance. Determinism of the inner corrector makes caching safe.
func Cached(inner Corrector, cacheSize int) Corrector {
	if cacheSize <= 0 {
		cacheSize = DefaultCorrectionCacheSize
	}
	cache, _ := lru.New[string, string](cacheSize)

	return func(text string, maxEditDistance int) string {
		key := fmt.Sprintf("%d\x00%s", maxEditDistance, text)
		if corrected, ok := cache.Get(key); ok {
			return corrected
		}
		corrected := inner(text, maxEditDistance)
		cache.Add(key, corrected)
		return corrected
	}
}
