package catalog

import (
	"context"

	"github.com/andrewcz-se/vector-rag/internal/domain"
	biz "github.com/andrewcz-se/vector-rag/internal/domain/business"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/match"
)

// --- Mocks ---

type mockRepo struct {
	ensureCreated bool
	ensureErr     error
	ensureDim     int
	putErr        error
	listErr       error
	stored        map[string]biz.Record
	vectors       map[string][]float32
	putCalls      int
	dropCalls     int
	dropErr       error
	pruneKeep     []string
	pruneN        int
	pruneErr      error
	events        []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{stored: map[string]biz.Record{}, vectors: map[string][]float32{}}
}

func (m *mockRepo) DropIndex(context.Context) error {
	m.dropCalls++
	m.events = append(m.events, "drop")
	return m.dropErr
}

func (m *mockRepo) Prune(_ context.Context, keep []string) (int, error) {
	m.pruneKeep = keep
	m.events = append(m.events, "prune")
	return m.pruneN, m.pruneErr
}

func (m *mockRepo) EnsureIndex(_ context.Context, dim int) (bool, error) {
	m.ensureDim = dim
	m.events = append(m.events, "ensure")
	return m.ensureCreated, m.ensureErr
}

func (m *mockRepo) Put(_ context.Context, records []biz.Record, vectors [][]float32) error {
	m.putCalls++
	if m.putErr != nil {
		return m.putErr
	}
	for i, r := range records {
		m.stored[r.ID()] = r
		m.vectors[r.ID()] = vectors[i]
	}
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]match.Match, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]match.Match, 0, len(m.stored))
	for _, id := range []string{"1", "2", "3"} {
		if r, ok := m.stored[id]; ok {
			out = append(out, match.New(r, r.Document(), 0))
		}
	}
	return out, nil
}

// mockEmbedder supports only single-text embedding.
type mockEmbedder struct {
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text))}, TotalTokens: 2}, nil
}

// mockBatchEmbedder records BatchEmbed calls.
type mockBatchEmbedder struct {
	mockEmbedder
	batches int
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batches++
	out := domain.BatchEmbeddingResult{TotalTokens: 10}
	for _, t := range texts {
		out.Embeddings = append(out.Embeddings, []float32{float32(len(t))})
	}
	return out, nil
}
