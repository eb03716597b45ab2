package reader

import (
	"strings"
	"testing"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/stretchr/testify/require"

	"github.com/miyachan/lnx/internal/config"
	"github.com/miyachan/lnx/internal/index"
	"github.com/miyachan/lnx/internal/pool"
	"github.com/miyachan/lnx/internal/stopwords"
)

func fixtureStopWords() (*stopwords.Provider, error) {
	return stopwords.Default()
}

// fixtureCorrector fixes the misspellings used across the tests.
func fixtureCorrector(text string, _ int) string {
	replacer := strings.NewReplacer("helo", "hello", "wrold", "world", "agian", "again")
	return replacer.Replace(strings.ToLower(text))
}

func fixtureSchema(t *testing.T) *index.Schema {
	t.Helper()
	s, err := index.NewSchema([]index.FieldDecl{
		{Name: "title", Type: index.FieldTypeText, Stored: true},
		{Name: "overview", Type: index.FieldTypeText, Stored: true},
		{Name: index.ShadowField("title"), Type: index.FieldTypeText, Stored: true},
		{Name: "rating", Type: index.FieldTypeF64, Stored: true, Fast: true},
		{Name: "views", Type: index.FieldTypeU64, Stored: true, Fast: true},
		{Name: "delta", Type: index.FieldTypeI64, Stored: true, Fast: true},
		{Name: "release", Type: index.FieldTypeDate, Stored: true, Fast: true},
		{Name: "popularity", Type: index.FieldTypeF64, Stored: true, Fast: false},
	})
	require.NoError(t, err)
	return s
}

func date(year int) index.DateTime {
	return index.DateTime(time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC))
}

// fixtureDocs is a tiny corpus covering every query path: shared similarity
// terms between 1 and 3, a corrected shadow field on 1, and typed fast
// fields for ordering.
func fixtureDocs() map[uint64]index.Document {
	shadow := index.ShadowField("title")
	return map[uint64]index.Document{
		1: {
			"title":    index.Single{Value: index.Text("Helo Wrold")},
			shadow:     index.Single{Value: index.Text("hello world")},
			"overview": index.Single{Value: index.Text("the galactic empire saga begins")},
			"rating":   index.Single{Value: index.F64(8.4)},
			"views":    index.Single{Value: index.U64(1200)},
			"delta":    index.Single{Value: index.I64(-3)},
			"release":  index.Single{Value: date(2011)},
		},
		2: {
			"title":    index.Single{Value: index.Text("Goodbye World")},
			"overview": index.Single{Value: index.Text("a farewell to computing")},
			"rating":   index.Single{Value: index.F64(6.1)},
			"views":    index.Single{Value: index.U64(300)},
			"delta":    index.Single{Value: index.I64(12)},
			"release":  index.Single{Value: date(2005)},
		},
		3: {
			"title":    index.Single{Value: index.Text("Hello Again")},
			"overview": index.Single{Value: index.Text("the galactic empire saga continues")},
			"rating":   index.Single{Value: index.F64(9.2)},
			"views":    index.Single{Value: index.U64(8800)},
			"delta":    index.Single{Value: index.I64(4)},
			"release":  index.Single{Value: date(2019)},
		},
		4: {
			"title":    index.Single{Value: index.Text("Quantum Flux")},
			"overview": index.Single{Value: index.Text("strange physics on the edge")},
			"rating":   index.Single{Value: index.F64(7.7)},
			"views":    index.Single{Value: index.U64(50)},
			"delta":    index.Single{Value: index.I64(0)},
			"release":  index.Single{Value: date(2015)},
		},
	}
}

func fixtureIndex(t *testing.T) (bleve.Index, *index.Schema) {
	t.Helper()
	schema := fixtureSchema(t)
	idx, err := index.Open("", schema)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	require.NoError(t, index.IndexBatch(idx, fixtureDocs()))
	return idx, schema
}

func fixtureConfig() config.ReaderConfig {
	cfg := config.Default()
	cfg.IndexName = "fixtures"
	cfg.MaxConcurrency = 2
	cfg.ReaderThreads = 2
	cfg.SearchFields = []config.SearchField{
		{Field: "title", Boost: 2.0},
		{Field: "overview", Boost: 0},
	}
	return cfg
}

func newTestHandler(t *testing.T, mutate func(*config.ReaderConfig)) (*ReaderHandler, bleve.Index) {
	t.Helper()
	idx, schema := fixtureIndex(t)

	cfg := fixtureConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	h, err := NewReaderHandler(cfg, idx, schema, fixtureCorrector, nil, nil)
	require.NoError(t, err)
	return h, idx
}

// newTestBuilder wires a builder plus a standalone executor for tests that
// target query construction directly.
func newTestBuilder(t *testing.T, mutate func(*config.ReaderConfig)) (*QueryBuilder, executorGroup, bleve.Index, *index.Schema) {
	t.Helper()
	idx, schema := fixtureIndex(t)

	cfg := fixtureConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	sw, err := fixtureStopWords()
	require.NoError(t, err)

	parser := NewParser(cfg.SearchFields)
	builder := NewQueryBuilder(
		idx, schema, parser, cfg.SearchFields,
		cfg.UseFastFuzzy, cfg.StripStopWords,
		fixtureCorrector, sw,
	)

	execPool := pool.NewExecutorPool(1, 2)
	t.Cleanup(execPool.Shutdown)
	lease, err := execPool.Acquire()
	require.NoError(t, err)
	t.Cleanup(lease.Release)

	return builder, lease.Executor(), idx, schema
}

func ptr[T any](v T) *T {
	return &v
}
