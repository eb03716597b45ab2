// Package lnx is the public surface of the reader core: declare a schema,
// open an index, feed it documents, and run searches and lookups under
// bounded concurrency.
package lnx

import (
	"context"
	"log/slog"

	"github.com/blevesearch/bleve/v2"

	"github.com/miyachan/lnx/internal/config"
	"github.com/miyachan/lnx/internal/correct"
	"github.com/miyachan/lnx/internal/index"
	"github.com/miyachan/lnx/internal/logging"
	"github.com/miyachan/lnx/internal/reader"
	"github.com/miyachan/lnx/internal/stopwords"
)

// Aliases so common usage needs only this package.
type (
	Config        = config.ReaderConfig
	SearchField   = config.SearchField
	LoggingConfig = logging.Config

	Schema    = index.Schema
	FieldDecl = index.FieldDecl
	FieldType = index.FieldType

	Document      = index.Document
	DocumentValue = index.DocumentValue
	Single        = index.Single
	Multi         = index.Multi
	Text          = index.Text
	U64           = index.U64
	I64           = index.I64
	F64           = index.F64
	DateTime      = index.DateTime
	NamedDocument = index.NamedDocument

	QueryPayload = reader.QueryPayload
	QueryResults = reader.QueryResults
	QueryHit     = reader.QueryHit
	QueryMode    = reader.QueryMode

	Corrector = correct.Corrector
	StopWords = stopwords.Provider
)

const (
	FieldTypeText = index.FieldTypeText
	FieldTypeU64  = index.FieldTypeU64
	FieldTypeI64  = index.FieldTypeI64
	FieldTypeF64  = index.FieldTypeF64
	FieldTypeDate = index.FieldTypeDate

	ModeNormal       = reader.ModeNormal
	ModeFuzzy        = reader.ModeFuzzy
	ModeMoreLikeThis = reader.ModeMoreLikeThis
)

// DefaultConfig returns the single-node default configuration.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads and validates a yaml configuration file.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// NewSchema builds a schema; the private identifier field is added
// automatically.
func NewSchema(fields []FieldDecl) (*Schema, error) { return index.NewSchema(fields) }

// ShadowField derives the shadow-field name that holds pre-corrected text
// for the given field. Declare it in the schema and point fast-fuzzy search
// fields at it.
func ShadowField(name string) string { return index.ShadowField(name) }

// CachedCorrector wraps a corrector with an LRU cache.
func CachedCorrector(inner Corrector, size int) Corrector {
	return correct.Cached(inner, size)
}

// DefaultStopWords returns the embedded English stop-word list.
func DefaultStopWords() (*StopWords, error) { return stopwords.Default() }

// StopWordsFromWords builds a stop-word list from explicit words.
func StopWordsFromWords(words []string) (*StopWords, error) { return stopwords.FromWords(words) }

type options struct {
	corrector Corrector
	stopWords *StopWords
	logger    *slog.Logger
}

// Option customizes Open.
type Option func(*options)

// WithCorrector installs the spelling corrector used at index time (shadow
// fields) and at fast-fuzzy query time.
func WithCorrector(c Corrector) Option {
	return func(o *options) { o.corrector = c }
}

// WithStopWords replaces the embedded default stop-word list.
func WithStopWords(p *StopWords) Option {
	return func(o *options) { o.stopWords = p }
}

// WithStopWordsFile loads the stop-word list from a file, one word per line.
func WithStopWordsFile(path string) (Option, error) {
	p, err := stopwords.FromFile(path)
	if err != nil {
		return nil, err
	}
	return WithStopWords(p), nil
}

// WithLogger supplies a logger, bypassing the configured logging setup.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Reader is an opened index plus its handler lifecycle. All methods are safe
// for concurrent use; Close at most once.
type Reader struct {
	handler *reader.ReaderHandler
	idx     bleve.Index
	schema  *Schema

	corrector  Corrector
	logCleanup func()
}

// Open builds the full reader for one index: logging per the config, the
// bleve index at the configured path (in-memory when empty), and the handler
// with its gate, executor pool and dispatch pool.
func Open(cfg Config, schema *Schema, opts ...Option) (*Reader, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logCleanup := func() {}
	logger := o.logger
	if logger == nil {
		var err error
		logger, logCleanup, err = logging.Setup(cfg.Logging)
		if err != nil {
			return nil, err
		}
	}

	idx, err := index.Open(cfg.IndexPath, schema)
	if err != nil {
		logCleanup()
		return nil, err
	}

	h, err := reader.NewReaderHandler(cfg, idx, schema, o.corrector, o.stopWords, logger)
	if err != nil {
		_ = idx.Close()
		logCleanup()
		return nil, err
	}

	return &Reader{
		handler:    h,
		idx:        idx,
		schema:     schema,
		corrector:  o.corrector,
		logCleanup: logCleanup,
	}, nil
}

// IndexDocuments writes a batch of documents keyed by external id. When a
// corrector is installed, every declared text field gets a pre-corrected
// shadow entry alongside the original.
func (r *Reader) IndexDocuments(docs map[uint64]Document) error {
	if r.corrector != nil {
		textFields := r.schema.TextFields()
		for _, doc := range docs {
			correct.DocFields(doc, textFields, r.corrector)
		}
	}
	return index.IndexBatch(r.idx, docs)
}

// Search runs one query under the reader's concurrency bound.
func (r *Reader) Search(ctx context.Context, payload QueryPayload) (QueryResults, error) {
	return r.handler.Search(ctx, payload)
}

// GetDocument fetches one document by its external id.
func (r *Reader) GetDocument(ctx context.Context, id uint64) (NamedDocument, error) {
	return r.handler.GetDocument(ctx, id)
}

// Close drains in-flight operations, rejects later calls, and releases the
// index and log file.
func (r *Reader) Close(ctx context.Context) error {
	err := r.handler.Shutdown(ctx)
	if cerr := r.idx.Close(); err == nil {
		err = cerr
	}
	r.logCleanup()
	return err
}
