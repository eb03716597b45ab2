package index

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/miyachan/lnx/internal/errors"
)

// PrivateIDField is the well-known private identifier field carried by every
// indexed document. Its absence from a schema is a configuration bug.
const PrivateIDField = "_id"

// FieldType enumerates the declared types this core understands.
type FieldType int

const (
	FieldTypeText FieldType = iota
	FieldTypeU64
	FieldTypeI64
	FieldTypeF64
	FieldTypeDate
)

// String returns the yaml-friendly name of the type.
func (t FieldType) String() string {
	switch t {
	case FieldTypeText:
		return "text"
	case FieldTypeU64:
		return "u64"
	case FieldTypeI64:
		return "i64"
	case FieldTypeF64:
		return "f64"
	case FieldTypeDate:
		return "date"
	default:
		return "unknown"
	}
}

// FieldDecl declares one schema field.
type FieldDecl struct {
	Name   string
	Type   FieldType
	Stored bool

	// Fast marks the field for typed random access (doc values), which
	// result ordering requires.
	Fast bool
}

// Sortable reports whether results can be ordered by this field.
func (d FieldDecl) Sortable() bool {
	return d.Fast && d.Type != FieldTypeText
}

// Schema is an ordered set of field declarations.
type Schema struct {
	fields []FieldDecl
	byName map[string]FieldDecl
}

// NewSchema builds a schema from the given declarations. Duplicate names
// are rejected. The private identifier field is appended automatically
// unless already declared.
func NewSchema(fields []FieldDecl) (*Schema, error) {
	s := &Schema{byName: make(map[string]FieldDecl, len(fields)+1)}
	for _, decl := range fields {
		if decl.Name == "" {
			return nil, fmt.Errorf("schema field name must not be empty")
		}
		if _, exists := s.byName[decl.Name]; exists {
			return nil, fmt.Errorf("duplicate schema field %q", decl.Name)
		}
		s.fields = append(s.fields, decl)
		s.byName[decl.Name] = decl
	}
	if _, exists := s.byName[PrivateIDField]; !exists {
		id := FieldDecl{Name: PrivateIDField, Type: FieldTypeU64, Stored: true, Fast: true}
		s.fields = append(s.fields, id)
		s.byName[PrivateIDField] = id
	}
	return s, nil
}

// Field returns the declaration for name.
func (s *Schema) Field(name string) (FieldDecl, bool) {
	decl, ok := s.byName[name]
	return decl, ok
}

// HasField reports whether name is declared.
func (s *Schema) HasField(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Fields returns the declarations in declaration order.
func (s *Schema) Fields() []FieldDecl {
	return s.fields
}

// TextFields returns the names of all declared text fields, excluding
// shadow fields and the private identifier.
func (s *Schema) TextFields() []string {
	var names []string
	for _, decl := range s.fields {
		if decl.Type == FieldTypeText && decl.Name != PrivateIDField && !isShadowName(decl.Name) {
			names = append(names, decl.Name)
		}
	}
	return names
}

// ExtractID pulls the private identifier out of a named document, removing
// the entry. A missing or mistyped identifier means the dataset is invalid.
func (s *Schema) ExtractID(doc NamedDocument) (uint64, error) {
	values, ok := doc[PrivateIDField]
	if !ok || len(values) == 0 {
		return 0, errors.ErrCorruptDataset
	}
	// The engine hands numerics back as float64.
	f, ok := values[0].(float64)
	if !ok || f < 0 || f != math.Trunc(f) {
		return 0, errors.ErrCorruptDataset
	}
	delete(doc, PrivateIDField)
	return uint64(f), nil
}

// FieldHash returns the stable 64-bit hash of a field name. The same name
// always hashes to the same value across indexing and query configuration.
func FieldHash(name string) uint64 {
	return xxhash.Sum64String(name)
}

// ShadowField derives the shadow-field name holding pre-corrected text for
// the given field.
func ShadowField(name string) string {
	return fmt.Sprintf("_%d", FieldHash(name))
}

func isShadowName(name string) bool {
	if len(name) < 2 || name[0] != '_' {
		return false
	}
	for _, r := range name[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
