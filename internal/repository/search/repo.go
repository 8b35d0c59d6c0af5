// Package search runs vector similarity queries against a business collection.
package search

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/andrewcz-se/vector-rag/internal/db"
	"github.com/andrewcz-se/vector-rag/internal/domain"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/filter"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/match"
	"github.com/andrewcz-se/vector-rag/internal/repository/business"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/retrieval.Repository.
type Repo struct {
	store      store
	collection string
}

// New creates a search repository over one collection.
func New(s store, collection string) *Repo {
	return &Repo{store: s, collection: collection}
}

// SearchKNN performs a KNN (vector similarity) search with filter pre-filtering.
// Matches come back nearest first; an empty result is an empty slice. A missing
// index or an unreachable server yields domain.ErrIndexUnavailable.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, filters filter.Expression, topK int,
) ([]match.Match, error) {
	returnFields := make([]string, 0, len(business.ReturnFields)+1)
	returnFields = append(returnFields, business.ReturnFields...)
	returnFields = append(returnFields, "__vector_score")

	q := &db.KNNQuery{
		IndexName:    business.IndexName(r.collection),
		Filters:      filters,
		Vector:       vector,
		K:            topK,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if errors.Is(err, db.ErrIndexNotFound) || errors.Is(err, db.ErrUnavailable) {
		return nil, fmt.Errorf("search knn %s: %w: %w", r.collection, domain.ErrIndexUnavailable, err)
	}
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.collection, err)
	}

	return parseKNNResults(sr, r.collection), nil
}

// parseKNNResults converts db.SearchResult into matches, most similar first.
// Equal scores keep store order.
func parseKNNResults(sr *db.SearchResult, collection string) []match.Match {
	if sr == nil || len(sr.Entries) == 0 {
		return []match.Match{}
	}

	results := make([]match.Match, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		rec, doc := business.Decode(collection, entry.Key, entry.Fields)
		results = append(results, match.New(rec, doc, entry.Score))
	}
	slices.SortStableFunc(results, func(a, b match.Match) int {
		return cmp.Compare(b.Score(), a.Score())
	})
	return results
}
