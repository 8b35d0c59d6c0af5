package retrieval

import (
	"context"

	"github.com/andrewcz-se/vector-rag/internal/domain"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/filter"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/match"
)

// CategoryDetector finds a known category mentioned in a query.
type CategoryDetector interface {
	Detect(query string) (string, bool)
}

// Repository defines the storage contract for nearest-neighbour search.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, filters filter.Expression, topK int) ([]match.Match, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
