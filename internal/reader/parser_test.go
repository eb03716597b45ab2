package reader

import (
	"testing"

	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miyachan/lnx/internal/config"
)

func TestTokenizeQuery(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		terms   []string
		phrases []string
	}{
		{"bare terms", "hello world", []string{"hello", "world"}, nil},
		{"extra spaces", "  hello   world ", []string{"hello", "world"}, nil},
		{"phrase only", `"hello world"`, nil, []string{"hello world"}},
		{"mixed", `greeting "hello world" program`, []string{"greeting", "program"}, []string{"hello world"}},
		{"empty phrase dropped", `"" hello`, []string{"hello"}, nil},
		{"empty", "", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms, phrases, err := tokenizeQuery(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.terms, terms)
			assert.Equal(t, tt.phrases, phrases)
		})
	}
}

func TestTokenizeQuery_UnbalancedQuote(t *testing.T) {
	_, _, err := tokenizeQuery(`hello "world`)
	assert.Error(t, err)
}

func TestParser_NoFieldsRejected(t *testing.T) {
	p := NewParser(nil)
	_, err := p.Parse("hello")
	assert.Error(t, err)
}

func TestParser_EmptyQueryMatchesNothing(t *testing.T) {
	p := NewParser([]config.SearchField{{Field: "title"}})
	q, err := p.Parse("   ")
	require.NoError(t, err)
	assert.IsType(t, &query.MatchNoneQuery{}, q)
}

func TestParser_SingleFieldTerms(t *testing.T) {
	p := NewParser([]config.SearchField{{Field: "title"}})
	q, err := p.Parse("hello world")
	require.NoError(t, err)

	mq, ok := q.(*query.MatchQuery)
	require.True(t, ok)
	assert.Equal(t, "title", mq.Field())
}

func TestParser_MultiFieldDisjunctionWithBoosts(t *testing.T) {
	p := NewParser([]config.SearchField{
		{Field: "title", Boost: 2.0},
		{Field: "overview", Boost: 0},
	})
	q, err := p.Parse("hello")
	require.NoError(t, err)

	dq, ok := q.(*query.DisjunctionQuery)
	require.True(t, ok)
	require.Len(t, dq.Disjuncts, 2)

	boosted, ok := dq.Disjuncts[0].(*query.MatchQuery)
	require.True(t, ok)
	assert.Equal(t, 2.0, boosted.Boost())

	// Boost 0 means untouched: bleve's default boost is 1.
	unboosted, ok := dq.Disjuncts[1].(*query.MatchQuery)
	require.True(t, ok)
	assert.Equal(t, 1.0, unboosted.Boost())
}

func TestParser_PhraseAndTermsCombine(t *testing.T) {
	p := NewParser([]config.SearchField{{Field: "title"}})
	q, err := p.Parse(`greeting "hello world"`)
	require.NoError(t, err)

	dq, ok := q.(*query.DisjunctionQuery)
	require.True(t, ok)
	assert.Len(t, dq.Disjuncts, 2)
}

func TestParser_ConjunctionMode(t *testing.T) {
	p := NewParser([]config.SearchField{{Field: "title"}})
	p.SetConjunctionByDefault()

	q, err := p.Parse(`greeting "hello world"`)
	require.NoError(t, err)
	_, ok := q.(*query.ConjunctionQuery)
	assert.True(t, ok)
}
