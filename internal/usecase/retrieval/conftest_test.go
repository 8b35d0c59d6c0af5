package retrieval

import (
	"context"

	"github.com/andrewcz-se/vector-rag/internal/domain"
	biz "github.com/andrewcz-se/vector-rag/internal/domain/business"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/filter"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/match"
)

// --- Mocks ---

type mockDetector struct {
	category string
	ok       bool
}

func (m *mockDetector) Detect(_ string) (string, bool) { return m.category, m.ok }

type mockRepo struct {
	searchFn func(ctx context.Context, vector []float32, filters filter.Expression, topK int) ([]match.Match, error)
}

func (m *mockRepo) SearchKNN(
	ctx context.Context, vector []float32, filters filter.Expression, topK int,
) ([]match.Match, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, vector, filters, topK)
	}
	return nil, nil
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	texts  []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	return m.result, m.err
}

func testMatch(id, name, category string, score float64) match.Match {
	rec := biz.Reconstruct(biz.Fields{ID: id, Name: name, Category: category})
	return match.New(rec, rec.Document(), score)
}
