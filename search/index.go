package search

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	bquery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/google/uuid"

	"github.com/olympusrt/olympus/olyerr"
)

// DefaultTopK is the §4.8 default retrieval depth.
const DefaultTopK = 50

// Config holds the §6 index tuning option. WriterHeapBytes is advisory:
// bleve's scorch engine manages its own memory, so this value is recorded
// for observability (exposed via Index.Config) rather than threaded into
// the underlying store, but every IndexDocument call still commits
// immediately regardless of its value, matching the "batch size 1"
// resolution of §9's open commit-policy question.
type Config struct {
	WriterHeapBytes int
}

func DefaultConfig() Config {
	return Config{WriterHeapBytes: 50_000_000}
}

// Index is the committed document store behind Artemis (§4.8). Writes
// are immediately visible to Search once IndexDocument returns, giving a
// committed read-your-write barrier without a separate Commit call.
type Index struct {
	mu     sync.Mutex
	bi     bleve.Index
	cfg    Config
	path   string
	order  map[string]int
	nextID int
}

// Open creates (or reopens) a bleve index at path. An empty path opens
// an in-memory index, used by tests.
func Open(path string, cfg Config) (*Index, error) {
	m := buildMapping()

	var bi bleve.Index
	var err error
	if path == "" {
		bi, err = bleve.NewMemOnly(m)
	} else if _, statErr := os.Stat(path); statErr == nil {
		bi, err = bleve.Open(path)
	} else {
		bi, err = bleve.New(path, m)
	}
	if err != nil {
		return nil, olyerr.Wrap(olyerr.KindSearchError, "", "open index", err)
	}

	return &Index{bi: bi, cfg: cfg, path: path, order: make(map[string]int)}, nil
}

func (idx *Index) Config() Config { return idx.cfg }

// IndexDocument adds fields as a document (§4.8). If fields lacks
// "patient_id" a synthetic id is generated. Unknown schema keys are
// rejected with olyerr.KindSchemaMismatch.
func (idx *Index) IndexDocument(fields map[string]string) (string, error) {
	allowed := schemaFieldNames()
	for key := range fields {
		if !allowed[key] {
			return "", olyerr.New(olyerr.KindSchemaMismatch, "", fmt.Sprintf("unknown index field %q", key))
		}
	}

	id := fields["patient_id"]
	if id == "" {
		id = uuid.NewString()
	}

	doc := make(map[string]any, len(fields))
	for k, v := range fields {
		doc[k] = v
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	// bleve.Index.Index commits the batch of one internally, giving the
	// reference protocol's "commit after every index_document" for free
	// (§4.8).
	if err := idx.bi.Index(id, doc); err != nil {
		return "", olyerr.Wrap(olyerr.KindSearchError, "", "index document", err)
	}
	if _, seen := idx.order[id]; !seen {
		idx.order[id] = idx.nextID
		idx.nextID++
	}
	return id, nil
}

// Hit is one scored search result: the stored fields plus the score used
// to rank it.
type Hit struct {
	ID     string
	Fields map[string]any
	Score  float64
}

// Search parses query against the four searchable text fields and
// returns the top-k hits (§4.8). An empty query returns an empty result
// set; malformed boolean operators fail with olyerr.KindInvalidQuery.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if k <= 0 {
		k = DefaultTopK
	}

	// Validate syntax with bleve's own query-string parser before scoring,
	// so unbalanced operators surface as InvalidQuery rather than a bare
	// search error (§4.8 step 4).
	if _, err := bquery.ParseQuerySyntax(query); err != nil {
		return nil, olyerr.Wrap(olyerr.KindInvalidQuery, "", "malformed search query", err)
	}

	disjunction := bleve.NewDisjunctionQuery()
	for _, field := range SearchableFields {
		mq := bleve.NewMatchQuery(query)
		mq.SetField(field)
		disjunction.AddQuery(mq)
	}

	req := bleve.NewSearchRequestOptions(disjunction, k, 0, false)
	req.Fields = []string{"*"}

	idx.mu.Lock()
	result, err := idx.bi.SearchInContext(ctx, req)
	order := idx.order
	idx.mu.Unlock()
	if err != nil {
		return nil, olyerr.Wrap(olyerr.KindSearchError, "", "execute search", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hits = append(hits, Hit{ID: h.ID, Fields: h.Fields, Score: h.Score})
	}

	// Property (b), §4.8: ties break on insertion order.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return order[hits[i].ID] < order[hits[j].ID]
	})
	return hits, nil
}

func (idx *Index) Close() error {
	return idx.bi.Close()
}
