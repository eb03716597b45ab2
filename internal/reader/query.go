package reader

import (
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/miyachan/lnx/internal/config"
	"github.com/miyachan/lnx/internal/correct"
	"github.com/miyachan/lnx/internal/errors"
	"github.com/miyachan/lnx/internal/index"
	"github.com/miyachan/lnx/internal/stopwords"
)

// executorGroup is the execution-context surface the reader needs: running
// one blocking task, or fanning a batch across the context's reader
// threads. *pool.Executor satisfies it.
type executorGroup interface {
	Do(fn func() error) error
	Each(fns []func() error) error
}

// QueryBuilder translates a query payload and mode into an executable
// query. Construction is pure aside from reading index statistics for
// similarity queries; any mode/source mismatch is a deterministic
// construction error, never a fallback.
type QueryBuilder struct {
	idx            bleve.Index
	schema         *index.Schema
	parser         *Parser
	searchFields   []config.SearchField
	useFastFuzzy   bool
	stripStopWords bool
	corrector      correct.Corrector
	stopWords      *stopwords.Provider
}

// NewQueryBuilder wires a builder over the pre-built parser and the
// configured search fields. Fast-fuzzy enablement arrives here explicitly
// rather than through ambient state, keeping construction deterministic.
func NewQueryBuilder(
	idx bleve.Index,
	schema *index.Schema,
	parser *Parser,
	searchFields []config.SearchField,
	useFastFuzzy bool,
	stripStopWords bool,
	corrector correct.Corrector,
	stopWords *stopwords.Provider,
) *QueryBuilder {
	return &QueryBuilder{
		idx:            idx,
		schema:         schema,
		parser:         parser,
		searchFields:   searchFields,
		useFastFuzzy:   useFastFuzzy,
		stripStopWords: stripStopWords,
		corrector:      corrector,
		stopWords:      stopWords,
	}
}

// Build constructs the query for the given mode and source. refDocKey is
// the resolved reference document's engine key, empty when absent. exec
// runs the index statistics reads the similarity builder needs.
func (b *QueryBuilder) Build(
	mode QueryMode,
	text *string,
	fieldMap map[string]string,
	refDocKey string,
	exec executorGroup,
) (query.Query, error) {
	switch mode {
	case ModeNormal:
		switch {
		case text != nil:
			return b.parser.Parse(*text)
		case len(fieldMap) > 0:
			return b.buildFieldMapQuery(fieldMap)
		default:
			return nil, errors.ModeMismatch("query mode was `normal` but no query source was given")
		}

	case ModeFuzzy:
		switch {
		case len(fieldMap) > 0:
			return nil, errors.ModeMismatch("query mode was `fuzzy` but the source is a field map, fuzzy only accepts free text")
		case text == nil:
			return nil, errors.ModeMismatch("query mode was `fuzzy` but no query source was given")
		case b.useFastFuzzy:
			return b.buildFastFuzzyQuery(*text)
		default:
			return b.buildFuzzyQuery(*text), nil
		}

	case ModeMoreLikeThis:
		if refDocKey == "" {
			return nil, errors.ModeMismatch("query mode was `more-like-this` but reference document is missing")
		}
		return b.buildMoreLikeThis(refDocKey, exec)

	default:
		return nil, errors.ModeMismatch("unknown query mode " + string(mode))
	}
}

// buildFieldMapQuery combines one conjunctive sub-query per known field
// with AND semantics across fields. Unknown fields are skipped, not
// errors; this asymmetry with reference-document resolution is deliberate.
func (b *QueryBuilder) buildFieldMapQuery(fieldMap map[string]string) (query.Query, error) {
	names := make([]string, 0, len(fieldMap))
	for name := range fieldMap {
		names = append(names, name)
	}
	sort.Strings(names)

	var subQueries []query.Query
	for _, name := range names {
		if !b.schema.HasField(name) {
			continue
		}
		p := NewParser([]config.SearchField{{Field: name}})
		p.SetConjunctionByDefault()
		q, err := p.Parse(fieldMap[name])
		if err != nil {
			return nil, err
		}
		subQueries = append(subQueries, q)
	}

	if len(subQueries) == 0 {
		return query.NewMatchNoneQuery(), nil
	}
	return query.NewConjunctionQuery(subQueries), nil
}

// buildFuzzyQuery matches every term against every search field with edit
// distance 1, and additionally as a prefix, so a partially typed word still
// matches the full indexed term. The most plug-and-play setup: no
// pre-correction required.
func (b *QueryBuilder) buildFuzzyQuery(text string) query.Query {
	var parts []query.Query
	for _, term := range strings.Fields(strings.ToLower(text)) {
		for _, sf := range b.searchFields {
			fq := query.NewFuzzyQuery(term)
			fq.SetField(sf.Field)
			fq.SetFuzziness(1)

			pq := query.NewPrefixQuery(term)
			pq.SetField(sf.Field)

			tq := query.NewDisjunctionQuery([]query.Query{fq, pq})
			applyBoost(tq, sf.Boost)
			parts = append(parts, tq)
		}
	}
	if len(parts) == 0 {
		return query.NewMatchNoneQuery()
	}
	return query.NewDisjunctionQuery(parts)
}

// buildFastFuzzyQuery trades query-time edit distance for index-time
// pre-correction: the whole query is corrected once, then matched with
// exact terms against the corrected shadow fields the search-field
// configuration points at.
func (b *QueryBuilder) buildFastFuzzyQuery(text string) (query.Query, error) {
	if text == "" {
		return query.NewMatchNoneQuery(), nil
	}

	sentence := b.corrector(text, correct.DefaultMaxEditDistance)
	words := strings.Fields(sentence)

	// Strip stop words only when something would survive: a query of
	// nothing but stop words keeps all of them.
	ignoreStopWords := false
	if b.stripStopWords && len(words) > 1 {
		for _, word := range words {
			if !b.stopWords.Contains(word) {
				ignoreStopWords = true
				break
			}
		}
	}

	var parts []query.Query
	for _, word := range words {
		if ignoreStopWords && b.stopWords.Contains(word) {
			continue
		}
		for _, sf := range b.searchFields {
			tq := query.NewTermQuery(word)
			tq.SetField(sf.Field)
			applyBoost(tq, sf.Boost)
			parts = append(parts, tq)
		}
	}
	if len(parts) == 0 {
		return query.NewMatchNoneQuery(), nil
	}
	return query.NewDisjunctionQuery(parts), nil
}
