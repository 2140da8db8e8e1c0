// Package search implements the full-text index (§4.8, C11): a
// schema-tied inverted index with field-weighted query parsing,
// add-then-commit semantics, and top-k scoring. It is built on
// github.com/blevesearch/bleve/v2 — the Go ecosystem's equivalent of the
// original Rust source's tantivy engine
// (original_source/olympus-server/src/actors/artemis/mod.rs) — since no
// repo in the retrieval pack ships its own full-text engine (see
// DESIGN.md).
package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
)

// FieldKind distinguishes exact-match keyword fields from tokenized text
// fields (§3, "IndexSchema").
type FieldKind string

const (
	FieldKeyword FieldKind = "keyword"
	FieldText    FieldKind = "text"
)

// FieldSpec describes one schema field's kind and whether it is returned
// in search hits.
type FieldSpec struct {
	Name  string
	Kind  FieldKind
	Store bool
}

// Schema is the fixed field set every indexed document conforms to
// (§3, "IndexSchema"). It is not configurable per deployment: the
// runtime ships exactly these seven fields.
var Schema = []FieldSpec{
	{Name: "patient_id", Kind: FieldKeyword, Store: true},
	{Name: "first_name", Kind: FieldText, Store: true},
	{Name: "last_name", Kind: FieldText, Store: true},
	{Name: "birth_date", Kind: FieldKeyword, Store: true},
	{Name: "tags", Kind: FieldText, Store: true},
	{Name: "clinical_history", Kind: FieldText, Store: false},
	{Name: "status", Kind: FieldKeyword, Store: true},
}

// SearchableFields are the text fields Search parses a query against
// (§4.8 step 1).
var SearchableFields = []string{"first_name", "last_name", "clinical_history", "tags"}

func schemaFieldNames() map[string]bool {
	names := make(map[string]bool, len(Schema))
	for _, f := range Schema {
		names[f.Name] = true
	}
	return names
}

// buildMapping constructs the bleve index mapping matching Schema exactly:
// keyword fields use the "keyword" analyzer (exact match, no tokenizing);
// text fields use bleve's default analyzer (Unicode-aware tokenizing and
// case folding); clinical_history is indexed but not stored.
func buildMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	for _, f := range Schema {
		fm := bleve.NewTextFieldMapping()
		fm.Store = f.Store
		fm.IncludeInAll = true
		if f.Kind == FieldKeyword {
			fm.Analyzer = keyword.Name
		}
		doc.AddFieldMappingsAt(f.Name, fm)
	}

	im.DefaultMapping = doc
	return im
}
