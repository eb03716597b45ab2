package index

import "time"

// DocumentValue is one typed value inside a document. It is a closed sum:
// only the variants below exist.
type DocumentValue interface {
	isDocumentValue()
}

// Text is a free-text value.
type Text string

// U64 is an unsigned integer value.
type U64 uint64

// I64 is a signed integer value.
type I64 int64

// F64 is a floating point value.
type F64 float64

// DateTime is a timestamp value.
type DateTime time.Time

func (Text) isDocumentValue()     {}
func (U64) isDocumentValue()      {}
func (I64) isDocumentValue()      {}
func (F64) isDocumentValue()      {}
func (DateTime) isDocumentValue() {}

// DocumentItem is a field entry: either a single value or an ordered list.
type DocumentItem interface {
	isDocumentItem()
}

// Single holds exactly one value.
type Single struct {
	Value DocumentValue
}

// Multi holds an ordered list of values.
type Multi struct {
	Values []DocumentValue
}

func (Single) isDocumentItem() {}
func (Multi) isDocumentItem()  {}

// Document maps field names to their values. The caller owns the document;
// the field corrector only ever adds shadow entries, never removes originals.
type Document map[string]DocumentItem

// NamedDocument is the externally visible form of a stored document:
// field name to the ordered list of that field's values.
type NamedDocument map[string][]any

// NamedFromHitFields normalizes a search hit's stored fields into a
// NamedDocument. Multi-valued fields arrive as []any, single values as
// bare values.
func NamedFromHitFields(fields map[string]any) NamedDocument {
	doc := make(NamedDocument, len(fields))
	for name, value := range fields {
		if vs, ok := value.([]any); ok {
			doc[name] = vs
			continue
		}
		doc[name] = []any{value}
	}
	return doc
}

// toIndexable converts a document into the generic representation the
// underlying engine indexes.
func toIndexable(doc Document) map[string]any {
	out := make(map[string]any, len(doc))
	for name, item := range doc {
		switch it := item.(type) {
		case Single:
			out[name] = valueToAny(it.Value)
		case Multi:
			vs := make([]any, 0, len(it.Values))
			for _, v := range it.Values {
				vs = append(vs, valueToAny(v))
			}
			out[name] = vs
		}
	}
	return out
}

func valueToAny(v DocumentValue) any {
	switch val := v.(type) {
	case Text:
		return string(val)
	case U64:
		return uint64(val)
	case I64:
		return int64(val)
	case F64:
		return float64(val)
	case DateTime:
		return time.Time(val)
	default:
		return nil
	}
}
