package reader

import (
	"context"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/search/query"
	bindex "github.com/blevesearch/bleve_index_api"

	"github.com/miyachan/lnx/internal/errors"
)

// Similarity thresholds for more-like-this construction.
const (
	mltMinDocFrequency  = 1
	mltMaxDocFrequency  = 10
	mltMinTermFrequency = 1
	mltMinWordLength    = 2
	mltMaxWordLength    = 18
	mltBoostFactor      = 1.0
)

type mltCandidate struct {
	field string
	term  string
	keep  bool
}

// buildMoreLikeThis builds a similarity query matching documents that share
// significant terms with the reference document. Terms are gathered from
// the document's stored text fields, filtered by frequency and length
// bounds, with the configured stop words excluded. Doc-frequency checks fan
// out across the executor's reader threads.
func (b *QueryBuilder) buildMoreLikeThis(refDocKey string, exec executorGroup) (query.Query, error) {
	doc, err := b.idx.Document(refDocKey)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSearchFailed, err)
	}
	if doc == nil {
		return nil, errors.ErrUnknownDocument
	}

	textFields := make(map[string]struct{})
	for _, name := range b.schema.TextFields() {
		textFields[name] = struct{}{}
	}

	// Term frequencies per (field, term) over the reference document.
	freqs := make(map[string]map[string]int)
	doc.VisitFields(func(field bindex.Field) {
		name := field.Name()
		if _, ok := textFields[name]; !ok {
			return
		}
		for _, term := range mltTokenize(string(field.Value())) {
			if len(term) < mltMinWordLength || len(term) > mltMaxWordLength {
				continue
			}
			if b.stopWords.Contains(term) {
				continue
			}
			if freqs[name] == nil {
				freqs[name] = make(map[string]int)
			}
			freqs[name][term]++
		}
	})

	var candidates []*mltCandidate
	for field, terms := range freqs {
		for term, tf := range terms {
			if tf < mltMinTermFrequency {
				continue
			}
			candidates = append(candidates, &mltCandidate{field: field, term: term})
		}
	}
	if len(candidates) == 0 {
		return query.NewMatchNoneQuery(), nil
	}

	if err := b.filterByDocFrequency(candidates, exec); err != nil {
		return nil, err
	}

	var parts []query.Query
	for _, c := range candidates {
		if !c.keep {
			continue
		}
		tq := query.NewTermQuery(c.term)
		tq.SetField(c.field)
		tq.SetBoost(mltBoostFactor)
		parts = append(parts, tq)
	}
	if len(parts) == 0 {
		return query.NewMatchNoneQuery(), nil
	}
	return query.NewDisjunctionQuery(parts), nil
}

// filterByDocFrequency marks the candidates whose document frequency falls
// inside [mltMinDocFrequency, mltMaxDocFrequency]. Each candidate writes
// only its own slot, so the fan-out needs no locking.
func (b *QueryBuilder) filterByDocFrequency(candidates []*mltCandidate, exec executorGroup) error {
	advanced, err := b.idx.Advanced()
	if err != nil {
		return errors.Wrap(errors.ErrCodeSearchFailed, err)
	}
	ir, err := advanced.Reader()
	if err != nil {
		return errors.Wrap(errors.ErrCodeSearchFailed, err)
	}
	defer func() { _ = ir.Close() }()

	tasks := make([]func() error, 0, len(candidates))
	for _, c := range candidates {
		c := c
		tasks = append(tasks, func() error {
			tfr, err := ir.TermFieldReader(context.Background(), []byte(c.term), c.field, false, false, false)
			if err != nil {
				return errors.Wrap(errors.ErrCodeSearchFailed, err)
			}
			defer func() { _ = tfr.Close() }()

			df := tfr.Count()
			c.keep = df >= mltMinDocFrequency && df <= mltMaxDocFrequency
			return nil
		})
	}
	return exec.Each(tasks)
}

// mltTokenize lowercases and splits text the same way the index analyzer
// does: unicode letter/digit runs.
func mltTokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
