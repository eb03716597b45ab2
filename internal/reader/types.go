// Package reader implements the concurrent query-execution core: query
// construction, bounded execution against index snapshots, and the handler
// facade exposing document lookup and search.
package reader

import (
	"github.com/miyachan/lnx/internal/index"
)

// QueryMode selects the query-construction strategy.
type QueryMode string

const (
	// ModeNormal parses the query source through the configured parser.
	ModeNormal QueryMode = "normal"
	// ModeFuzzy matches terms with typo tolerance (edit distance or
	// precomputed correction, depending on configuration).
	ModeFuzzy QueryMode = "fuzzy"
	// ModeMoreLikeThis finds documents similar to a reference document.
	ModeMoreLikeThis QueryMode = "more-like-this"
)

// Valid reports whether the mode is one of the known variants.
func (m QueryMode) Valid() bool {
	switch m {
	case ModeNormal, ModeFuzzy, ModeMoreLikeThis:
		return true
	default:
		return false
	}
}

// DefaultLimit applies when a payload omits its limit.
const DefaultLimit = 20

// QueryPayload describes one search request. Exactly one of Query/Map is
// meaningful; a non-empty Query wins over a non-empty Map.
type QueryPayload struct {
	// Query is the free-text query source.
	Query *string `json:"query,omitempty" yaml:"query,omitempty"`

	// Map is the per-field query source: field name to query string.
	Map map[string]string `json:"map,omitempty" yaml:"map,omitempty"`

	// Document is the reference document id for similarity queries.
	Document *uint64 `json:"document,omitempty" yaml:"document,omitempty"`

	// Mode selects the construction strategy.
	Mode QueryMode `json:"mode" yaml:"mode"`

	// OrderBy orders results by a fast field instead of relevancy.
	// Unknown fields are ignored, best-effort.
	OrderBy *string `json:"order_by,omitempty" yaml:"order_by,omitempty"`

	// Limit is the maximum number of hits returned.
	Limit uint `json:"limit" yaml:"limit"`

	// Offset skips the first N hits for pagination.
	Offset uint `json:"offset" yaml:"offset"`
}

// source returns the selected query source: free text, or the per-field
// map, or neither.
func (p QueryPayload) source() (*string, map[string]string) {
	if p.Query != nil && *p.Query != "" {
		return p.Query, nil
	}
	if len(p.Map) > 0 {
		return nil, p.Map
	}
	// An explicitly empty query string still counts as a free-text source
	// (the fast-fuzzy path maps it to a match-nothing query).
	if p.Query != nil {
		return p.Query, nil
	}
	return nil, nil
}

// limits returns the effective limit and offset.
func (p QueryPayload) limits() (int, int) {
	limit := int(p.Limit)
	if limit <= 0 {
		limit = DefaultLimit
	}
	return limit, int(p.Offset)
}

// QueryHit is a single ranked result.
type QueryHit struct {
	// DocumentID is the external id as a decimal string; usable for
	// follow-up more-like-this queries.
	DocumentID string `json:"document_id"`

	// Doc carries the document's stored field values.
	Doc index.NamedDocument `json:"doc"`

	// Ratio is the hit's ranking value: the relevancy score, or the
	// ordering field's value when order-by is in effect.
	Ratio any `json:"ratio"`
}

// QueryResults is the overall outcome of one search.
type QueryResults struct {
	// Hits in rank order.
	Hits []QueryHit `json:"hits"`

	// Count is the total number of matching documents, independent of
	// limit and offset.
	Count uint64 `json:"count"`

	// TimeTaken is the elapsed construction+execution time in seconds,
	// filled in by the handler after the dispatched work returns.
	TimeTaken float64 `json:"time_taken"`
}
