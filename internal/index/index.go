// Package index owns the schema model and the underlying bleve index:
// mapping construction, open/create, and the write helpers the tests and
// ingestion use.
package index

import (
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// TextAnalyzerName is the analyzer applied to every text field: unicode
// tokenization plus lowercasing, nothing else. Stop-word handling belongs
// to the query layer, not the analyzer.
const TextAnalyzerName = "lnx_text"

// buildMapping creates the bleve index mapping for a schema. Shadow fields
// are not declared; they fall through to the dynamic default mapping, which
// uses the same text analyzer.
func buildMapping(s *Schema) (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()

	err := im.AddCustomAnalyzer(TextAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			lowercase.Name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add text analyzer: %w", err)
	}
	im.DefaultAnalyzer = TextAnalyzerName

	doc := bleve.NewDocumentMapping()
	for _, decl := range s.Fields() {
		var fm *mapping.FieldMapping
		switch decl.Type {
		case FieldTypeText:
			fm = bleve.NewTextFieldMapping()
			fm.Analyzer = TextAnalyzerName
		case FieldTypeDate:
			fm = bleve.NewDateTimeFieldMapping()
		default:
			fm = bleve.NewNumericFieldMapping()
		}
		fm.Store = decl.Stored
		fm.Index = true
		fm.DocValues = decl.Fast
		doc.AddFieldMappingsAt(decl.Name, fm)
	}
	im.DefaultMapping = doc

	return im, nil
}

// Open opens the index at path, creating it with the schema's mapping if it
// does not exist. An empty path creates an in-memory index.
func Open(path string, s *Schema) (bleve.Index, error) {
	im, err := buildMapping(s)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return bleve.NewMemOnly(im)
	}

	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, im)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}
	return idx, nil
}

// DocKey is the engine-level key for a document id.
func DocKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// IndexDocument writes one document under the given id. The private
// identifier field is filled in from id, overwriting any caller value.
func IndexDocument(idx bleve.Index, id uint64, doc Document) error {
	data := toIndexable(doc)
	data[PrivateIDField] = id
	if err := idx.Index(DocKey(id), data); err != nil {
		return fmt.Errorf("failed to index document %d: %w", id, err)
	}
	return nil
}

// IndexBatch writes a set of documents in one engine batch.
func IndexBatch(idx bleve.Index, docs map[uint64]Document) error {
	if len(docs) == 0 {
		return nil
	}

	batch := idx.NewBatch()
	for id, doc := range docs {
		data := toIndexable(doc)
		data[PrivateIDField] = id
		if err := batch.Index(DocKey(id), data); err != nil {
			return fmt.Errorf("failed to batch document %d: %w", id, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}
	return nil
}
