package search

import (
	"context"
	"testing"

	"github.com/olympusrt/olympus/olyerr"
)

// S1 / testable property 6: after IndexDocument returns, Search
// containing a tokenized term of the document returns it among hits.
func TestIndexDocumentThenSearchIsImmediatelyVisible(t *testing.T) {
	idx, err := Open("", DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	id, err := idx.IndexDocument(map[string]string{
		"patient_id":       "p1",
		"first_name":       "Juan",
		"last_name":        "Perez",
		"clinical_history": "history of hypertension",
	})
	if err != nil {
		t.Fatal(err)
	}
	if id != "p1" {
		t.Fatalf("id = %q, want p1", id)
	}

	hits, err := idx.Search(context.Background(), "hypertension", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "p1" {
		t.Fatalf("hits = %+v, want exactly p1", hits)
	}
	if hits[0].Fields["patient_id"] != "p1" {
		t.Errorf("stored patient_id = %v, want p1", hits[0].Fields["patient_id"])
	}
	if _, ok := hits[0].Fields["clinical_history"]; ok {
		t.Errorf("clinical_history must not be stored")
	}
}

func TestSearchEmptyQueryReturnsEmptyResultSet(t *testing.T) {
	idx, err := Open("", DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	hits, err := idx.Search(context.Background(), "   ", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %+v, want none", hits)
	}
}

func TestSearchMalformedQueryFailsWithInvalidQuery(t *testing.T) {
	idx, err := Open("", DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	_, err = idx.Search(context.Background(), `(hypertension AND`, 50)
	if err == nil {
		t.Fatal("expected an error for unbalanced operators")
	}
	if olyerr.KindOf(err) != olyerr.KindInvalidQuery {
		t.Errorf("kind = %s, want InvalidQuery", olyerr.KindOf(err))
	}
}

func TestIndexDocumentRejectsUnknownField(t *testing.T) {
	idx, err := Open("", DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	_, err = idx.IndexDocument(map[string]string{"not_a_field": "x"})
	if olyerr.KindOf(err) != olyerr.KindSchemaMismatch {
		t.Errorf("kind = %s, want SchemaMismatch", olyerr.KindOf(err))
	}
}

// Property (a), §4.8: documents containing all query terms outrank a
// document matching only a subset of them.
func TestSearchRanksFullMatchesAboveSubsetMatches(t *testing.T) {
	idx, err := Open("", DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	if _, err := idx.IndexDocument(map[string]string{
		"patient_id": "partial",
		"tags":       "hypertension",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := idx.IndexDocument(map[string]string{
		"patient_id": "full",
		"tags":       "hypertension diabetes",
	}); err != nil {
		t.Fatal(err)
	}

	hits, err := idx.Search(context.Background(), "hypertension diabetes", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) < 2 {
		t.Fatalf("hits = %+v, want at least 2", hits)
	}
	if hits[0].ID != "full" {
		t.Errorf("top hit = %s, want full (matches both terms)", hits[0].ID)
	}
}
