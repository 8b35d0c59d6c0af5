// Package business stores business records as hashes under an FT vector index.
package business

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/andrewcz-se/vector-rag/internal/db"
	biz "github.com/andrewcz-se/vector-rag/internal/domain/business"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/match"
)

// store is the consumer interface for the business collection (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, schema *db.IndexSchema) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchAll(ctx context.Context, index string, fields []string) (*db.SearchResult, error)
	DropIndex(ctx context.Context, name string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, key string) error
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements usecase/catalog.Repository.
type Repo struct {
	store      store
	collection string
	hnsw       HNSWConfig
}

// New creates a business repository over one collection.
func New(s store, collection string) *Repo {
	return &Repo{store: s, collection: collection, hnsw: HNSWConfig{M: 16, EFConstruct: 200}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Collection returns the collection name the repository is bound to.
func (r *Repo) Collection() string {
	return r.collection
}

// EnsureIndex creates the collection index unless it already exists.
// Returns true when a new index was created.
func (r *Repo) EnsureIndex(ctx context.Context, vectorDim int) (bool, error) {
	name := IndexName(r.collection)

	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return false, nil
	}

	if err := r.store.CreateIndex(ctx, indexSchema(r.collection, vectorDim, r.hnsw)); err != nil {
		// lost a creation race with another instance
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", name, err)
	}
	return true, nil
}

// DropIndex removes the collection index. Stored hashes are kept, so a
// following EnsureIndex re-indexes them. A missing index is not an error.
func (r *Repo) DropIndex(ctx context.Context) error {
	name := IndexName(r.collection)
	if err := r.store.DropIndex(ctx, name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", name, err)
	}
	return nil
}

// Prune deletes every stored record whose id is not in keep.
// Returns the number of deleted records.
func (r *Repo) Prune(ctx context.Context, keep []string) (int, error) {
	keys, err := r.store.Scan(ctx, KeyPrefix(r.collection)+"*")
	if err != nil {
		return 0, fmt.Errorf("scan businesses %s: %w", r.collection, err)
	}

	wanted := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		wanted[recordKey(r.collection, id)] = struct{}{}
	}

	deleted := 0
	for _, key := range keys {
		if _, ok := wanted[key]; ok {
			continue
		}
		if err := r.store.Del(ctx, key); err != nil {
			return deleted, fmt.Errorf("delete %s: %w", key, err)
		}
		deleted++
	}
	return deleted, nil
}

// Put upserts records with their vectors in one pipelined round-trip.
// vectors[i] belongs to records[i].
func (r *Repo) Put(ctx context.Context, records []biz.Record, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("put: %d records but %d vectors", len(records), len(vectors))
	}
	if len(records) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(records))
	for i, rec := range records {
		items[i] = db.HashSetItem{
			Key:    recordKey(r.collection, rec.ID()),
			Fields: recordToHash(rec, string(db.EncodeVector(vectors[i]))),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset businesses %s: %w", r.collection, err)
	}
	return nil
}

// List returns every stored record with its document, sorted by id.
// Listing carries no similarity, so every score is zero.
func (r *Repo) List(ctx context.Context) ([]match.Match, error) {
	sr, err := r.store.SearchAll(ctx, IndexName(r.collection), ReturnFields)
	if err != nil {
		return nil, fmt.Errorf("list businesses %s: %w", r.collection, err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return []match.Match{}, nil
	}

	out := make([]match.Match, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		rec, doc := Decode(r.collection, entry.Key, entry.Fields)
		out = append(out, match.New(rec, doc, 0))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return lessID(out[i].Record().ID(), out[j].Record().ID())
	})
	return out, nil
}

// lessID orders numeric ids numerically ("2" < "10") and everything else lexically.
func lessID(a, b string) bool {
	if len(a) != len(b) && isDigits(a) && isDigits(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
