package search

import (
	"context"
	"slices"
	"testing"

	"github.com/andrewcz-se/vector-rag/internal/db"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/filter"
)

// knnStore answers SearchKNN through an optional hook; without one it finds nothing.
type knnStore struct {
	onSearch func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (s *knnStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if s.onSearch == nil {
		return &db.SearchResult{}, nil
	}
	return s.onSearch(ctx, q)
}

func newTestRepo(t *testing.T) (*Repo, *knnStore) {
	t.Helper()
	s := &knnStore{}
	return New(s, "businesses"), s
}

func testVector() []float32 { return slices.Repeat([]float32{0.1}, 4) }

func categoryIs(t *testing.T, category string) filter.Expression {
	t.Helper()
	c, err := filter.NewMatch("category", category)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	expr, err := filter.NewExpression(c)
	if err != nil {
		t.Fatalf("expression: %v", err)
	}
	return expr
}
