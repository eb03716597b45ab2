package reader

import (
	"context"
	"log/slog"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/miyachan/lnx/internal/config"
	"github.com/miyachan/lnx/internal/correct"
	"github.com/miyachan/lnx/internal/errors"
	"github.com/miyachan/lnx/internal/index"
	"github.com/miyachan/lnx/internal/pool"
	"github.com/miyachan/lnx/internal/stopwords"
)

// ReaderHandler is the process-lifetime facade over one index: it owns the
// concurrency gate, the dispatch pool and the executor pool, and exposes
// document lookup and search under bounded concurrency.
//
// The gate and the executor pool share the same capacity, so a held permit
// always implies a free executor. Total reader threads spawned is
// max_concurrency * reader_threads; both knobs belong to the operator.
type ReaderHandler struct {
	name      string
	idx       bleve.Index
	schema    *index.Schema
	gate      *pool.Gate
	executors *pool.ExecutorPool
	dispatch  *pool.DispatchPool
	builder   *QueryBuilder
	logger    *slog.Logger

	useFastFuzzy bool
}

// NewReaderHandler creates the facade for an opened index. A nil corrector
// disables correction; a nil stop-word provider loads the default list, and
// a failure to load propagates rather than defaulting to empty.
func NewReaderHandler(
	cfg config.ReaderConfig,
	idx bleve.Index,
	schema *index.Schema,
	corrector correct.Corrector,
	stopWords *stopwords.Provider,
	logger *slog.Logger,
) (*ReaderHandler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if corrector == nil {
		corrector = correct.Noop
	}
	if stopWords == nil {
		var err error
		stopWords, err = stopwords.Default()
		if err != nil {
			return nil, err
		}
	}

	if !schema.HasField(index.PrivateIDField) {
		return nil, errors.ErrMissingPrivateField
	}
	for _, sf := range cfg.SearchFields {
		if !schema.HasField(sf.Field) {
			return nil, errors.Newf(errors.ErrCodeUnknownSearchField, "search field %q is not declared in the schema", sf.Field)
		}
	}

	if cfg.UseFastFuzzy {
		logger.Warn("fast_fuzzy_enabled",
			slog.String("index", cfg.IndexName),
			slog.String("detail", "normal queries behave differently with text fields due to fast-fuzzy"))
	}

	parser := NewParser(cfg.SearchFields)
	builder := NewQueryBuilder(
		idx, schema, parser, cfg.SearchFields,
		cfg.UseFastFuzzy, cfg.StripStopWords,
		corrector, stopWords,
	)

	return &ReaderHandler{
		name:         cfg.IndexName,
		idx:          idx,
		schema:       schema,
		gate:         pool.NewGate(cfg.MaxConcurrency),
		executors:    pool.NewExecutorPool(cfg.MaxConcurrency, cfg.ReaderThreads),
		dispatch:     pool.NewDispatchPool(cfg.MaxConcurrency),
		builder:      builder,
		logger:       logger,
		useFastFuzzy: cfg.UseFastFuzzy,
	}, nil
}

// GetDocument fetches a document by its external id. Counts as one
// concurrent operation; the permit is held for the full round trip.
func (h *ReaderHandler) GetDocument(ctx context.Context, id uint64) (index.NamedDocument, error) {
	release, err := h.gate.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	lease, err := h.executors.Acquire()
	if err != nil {
		release()
		return nil, err
	}

	ch, err := pool.Dispatch(h.dispatch, func() (index.NamedDocument, error) {
		defer release()
		defer lease.Release()

		_, doc, err := lookupByID(ctx, h.idx, lease.Executor(), id)
		return doc, err
	})
	if err != nil {
		lease.Release()
		release()
		return nil, err
	}

	return pool.Await(ctx, ch)
}

// Search runs a query described by the payload. The whole construction and
// execution runs as one unit on the dispatch pool; elapsed wall-clock time
// is recorded around that unit and written into the results afterwards.
func (h *ReaderHandler) Search(ctx context.Context, payload QueryPayload) (QueryResults, error) {
	if !payload.Mode.Valid() {
		return QueryResults{}, errors.ModeMismatch("unknown query mode " + string(payload.Mode))
	}

	release, err := h.gate.Acquire(ctx)
	if err != nil {
		return QueryResults{}, err
	}

	if !h.schema.HasField(index.PrivateIDField) {
		release()
		return QueryResults{}, errors.ErrMissingPrivateField
	}

	// Ordering is best-effort: an unknown field is ignored rather than an
	// error. Surprising at first sight, intentional and documented.
	var orderBy *index.FieldDecl
	if payload.OrderBy != nil {
		if decl, ok := h.schema.Field(*payload.OrderBy); ok {
			orderBy = &decl
		} else {
			h.logger.Debug("ignoring_unknown_order_by",
				slog.String("index", h.name),
				slog.String("field", *payload.OrderBy))
		}
	}

	lease, err := h.executors.Acquire()
	if err != nil {
		release()
		return QueryResults{}, err
	}

	text, fieldMap := payload.source()
	limit, offset := payload.limits()
	refID := payload.Document

	start := time.Now()
	ch, err := pool.Dispatch(h.dispatch, func() (QueryResults, error) {
		defer release()
		defer lease.Release()
		exec := lease.Executor()

		refKey := ""
		if refID != nil {
			key, _, err := lookupByID(ctx, h.idx, exec, *refID)
			if err != nil {
				return QueryResults{}, err
			}
			refKey = key
		}

		q, err := h.builder.Build(payload.Mode, text, fieldMap, refKey, exec)
		if err != nil {
			h.logger.Info("rejecting_query",
				slog.String("index", h.name),
				slog.String("mode", string(payload.Mode)),
				slog.String("error", err.Error()))
			return QueryResults{}, err
		}

		return executeSearch(ctx, h.idx, exec, h.schema, q, limit, offset, orderBy)
	})
	if err != nil {
		lease.Release()
		release()
		return QueryResults{}, err
	}

	res, err := pool.Await(ctx, ch)
	if err != nil {
		return QueryResults{}, err
	}

	elapsed := time.Since(start)
	res.TimeTaken = elapsed.Seconds()

	h.logger.Info("search_complete",
		slog.String("index", h.name),
		slog.String("mode", h.effectiveMode(payload.Mode)),
		slog.Int("limit", limit),
		slog.Uint64("count", res.Count),
		slog.Duration("took", elapsed))

	return res, nil
}

// Shutdown waits for every in-flight operation to finish, closes the gate
// so later calls fail cleanly, then tears down the pools. Call at most once
// in a well-behaved lifecycle.
func (h *ReaderHandler) Shutdown(ctx context.Context) error {
	if err := h.gate.AcquireAll(ctx); err != nil {
		return err
	}
	h.gate.Close()

	h.executors.Shutdown()
	h.dispatch.Stop()

	h.logger.Info("reader_shutdown", slog.String("index", h.name))
	return nil
}

func (h *ReaderHandler) effectiveMode(mode QueryMode) string {
	if mode == ModeFuzzy && h.useFastFuzzy {
		return "fast-fuzzy"
	}
	return string(mode)
}

// lookupByID resolves an external id to its engine key and stored fields
// through an exact match on the private identifier field.
func lookupByID(ctx context.Context, idx bleve.Index, exec executorGroup, id uint64) (string, index.NamedDocument, error) {
	val := float64(id)
	inclusive := true
	q := query.NewNumericRangeInclusiveQuery(&val, &val, &inclusive, &inclusive)
	q.SetField(index.PrivateIDField)

	req := bleve.NewSearchRequestOptions(q, 1, 0, false)
	req.Fields = []string{"*"}

	var res *bleve.SearchResult
	err := exec.Do(func() error {
		var serr error
		res, serr = idx.SearchInContext(ctx, req)
		return serr
	})
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeSearchFailed, err)
	}
	if res.Total == 0 {
		return "", nil, errors.ErrUnknownDocument
	}

	hit := res.Hits[0]
	return hit.ID, index.NamedFromHitFields(hit.Fields), nil
}
