package reader

import (
	"strings"

	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/miyachan/lnx/internal/config"
	"github.com/miyachan/lnx/internal/errors"
)

// Parser is a pre-weighted multi-field query parser. It is built once over
// the configured search fields; the per-field map path builds throwaway
// single-field parsers in conjunctive mode.
type Parser struct {
	fields      []config.SearchField
	conjunction bool
}

// NewParser creates a parser over the given fields and boosts.
func NewParser(fields []config.SearchField) *Parser {
	return &Parser{fields: fields}
}

// SetConjunctionByDefault makes bare terms combine with AND instead of OR.
func (p *Parser) SetConjunctionByDefault() {
	p.conjunction = true
}

// Parse builds a query from the raw string. Quoted sections match as
// phrases, bare terms through the field's analyzer. Syntax problems are
// input errors, reported before any execution.
func (p *Parser) Parse(raw string) (query.Query, error) {
	if len(p.fields) == 0 {
		return nil, errors.BadQuery("no search fields configured")
	}

	terms, phrases, err := tokenizeQuery(raw)
	if err != nil {
		return nil, err
	}
	if len(terms) == 0 && len(phrases) == 0 {
		return query.NewMatchNoneQuery(), nil
	}

	fieldQueries := make([]query.Query, 0, len(p.fields))
	for _, sf := range p.fields {
		var parts []query.Query

		if len(terms) > 0 {
			mq := query.NewMatchQuery(strings.Join(terms, " "))
			mq.SetField(sf.Field)
			if p.conjunction {
				mq.SetOperator(query.MatchQueryOperatorAnd)
			} else {
				mq.SetOperator(query.MatchQueryOperatorOr)
			}
			parts = append(parts, mq)
		}
		for _, phrase := range phrases {
			pq := query.NewMatchPhraseQuery(phrase)
			pq.SetField(sf.Field)
			parts = append(parts, pq)
		}

		var fq query.Query
		switch {
		case len(parts) == 1:
			fq = parts[0]
		case p.conjunction:
			fq = query.NewConjunctionQuery(parts)
		default:
			fq = query.NewDisjunctionQuery(parts)
		}
		applyBoost(fq, sf.Boost)
		fieldQueries = append(fieldQueries, fq)
	}

	if len(fieldQueries) == 1 {
		return fieldQueries[0], nil
	}
	return query.NewDisjunctionQuery(fieldQueries), nil
}

// tokenizeQuery splits a raw query into bare terms and quoted phrases.
// An unbalanced quote is a syntax error.
func tokenizeQuery(raw string) (terms []string, phrases []string, err error) {
	var cur strings.Builder
	inPhrase := false

	flush := func() {
		text := strings.TrimSpace(cur.String())
		cur.Reset()
		if text == "" {
			return
		}
		if inPhrase {
			phrases = append(phrases, text)
		} else {
			terms = append(terms, strings.Fields(text)...)
		}
	}

	for _, r := range raw {
		if r == '"' {
			flush()
			inPhrase = !inPhrase
			continue
		}
		cur.WriteRune(r)
	}
	if inPhrase {
		return nil, nil, errors.BadQuery("unbalanced quote in query").WithDetail("query", raw)
	}
	flush()

	return terms, phrases, nil
}

// applyBoost wraps q with a boost when weight > 0. Weight 0 means no boost.
func applyBoost(q query.Query, boost float64) {
	if boost <= 0 {
		return
	}
	if bq, ok := q.(query.BoostableQuery); ok {
		bq.SetBoost(boost)
	}
}
