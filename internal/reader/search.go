package reader

import (
	"context"
	"fmt"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/miyachan/lnx/internal/errors"
	"github.com/miyachan/lnx/internal/index"
)

// executeSearch runs a constructed query on the given execution context and
// maps raw matches into ranked hits. With no ordering field the ranking
// value is the relevancy score; with one, results sort on the field's fast
// representation (descending) and the ranking value is the field's typed
// value. TimeTaken is left zero for the handler to fill in.
func executeSearch(
	ctx context.Context,
	idx bleve.Index,
	exec executorGroup,
	schema *index.Schema,
	q query.Query,
	limit int,
	offset int,
	orderBy *index.FieldDecl,
) (QueryResults, error) {
	req := bleve.NewSearchRequestOptions(q, limit, offset, false)
	req.Fields = []string{"*"}

	if orderBy != nil {
		if !orderBy.Sortable() {
			return QueryResults{}, errors.ErrNotFastField
		}
		req.SortBy([]string{"-" + orderBy.Name})
	}

	var res *bleve.SearchResult
	err := exec.Do(func() error {
		var serr error
		res, serr = idx.SearchInContext(ctx, req)
		return serr
	})
	if err != nil {
		return QueryResults{}, errors.Wrap(errors.ErrCodeSearchFailed, err)
	}

	hits := make([]QueryHit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		doc := index.NamedFromHitFields(hit.Fields)

		var ratio any = hit.Score
		if orderBy != nil {
			ratio, err = orderValue(*orderBy, doc)
			if err != nil {
				return QueryResults{}, err
			}
		}

		id, err := schema.ExtractID(doc)
		if err != nil {
			// A match the engine cannot label invalidates the dataset;
			// never continue silently.
			return QueryResults{}, err
		}

		hits = append(hits, QueryHit{
			DocumentID: index.DocKey(id),
			Doc:        doc,
			Ratio:      ratio,
		})
	}

	return QueryResults{Hits: hits, Count: res.Total}, nil
}

// orderValue extracts the ordering field's typed value from a hit. The
// dispatch is closed over the four fast-orderable types. A document that
// simply omits the ordering field reads as the type's zero value, the same
// way a sparse fast-field column reads its default; only a value of the
// wrong shape is an error.
func orderValue(decl index.FieldDecl, doc index.NamedDocument) (any, error) {
	values := doc[decl.Name]
	if len(values) == 0 {
		switch decl.Type {
		case index.FieldTypeU64:
			return uint64(0), nil
		case index.FieldTypeF64:
			return float64(0), nil
		default:
			return int64(0), nil
		}
	}

	switch decl.Type {
	case index.FieldTypeI64:
		f, ok := values[0].(float64)
		if !ok {
			return nil, badOrderValue(decl, values[0])
		}
		return int64(f), nil
	case index.FieldTypeU64:
		f, ok := values[0].(float64)
		if !ok || f < 0 {
			return nil, badOrderValue(decl, values[0])
		}
		return uint64(f), nil
	case index.FieldTypeF64:
		f, ok := values[0].(float64)
		if !ok {
			return nil, badOrderValue(decl, values[0])
		}
		return f, nil
	case index.FieldTypeDate:
		s, ok := values[0].(string)
		if !ok {
			return nil, badOrderValue(decl, values[0])
		}
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, badOrderValue(decl, values[0])
		}
		return ts.Unix(), nil
	default:
		return nil, errors.ErrNotFastField
	}
}

func badOrderValue(decl index.FieldDecl, value any) error {
	return errors.Internal(
		fmt.Sprintf("ordering field %q holds a value incompatible with its declared type %s", decl.Name, decl.Type),
		nil,
	).WithDetail("value", fmt.Sprintf("%v", value))
}
