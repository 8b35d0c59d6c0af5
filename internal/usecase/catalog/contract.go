package catalog

import (
	"context"

	"github.com/andrewcz-se/vector-rag/internal/domain"
	biz "github.com/andrewcz-se/vector-rag/internal/domain/business"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/match"
)

// Repository defines the storage contract for the business collection.
type Repository interface {
	EnsureIndex(ctx context.Context, vectorDim int) (bool, error)
	DropIndex(ctx context.Context) error
	Prune(ctx context.Context, keep []string) (int, error)
	Put(ctx context.Context, records []biz.Record, vectors [][]float32) error
	List(ctx context.Context) ([]match.Match, error)
}

// Embedder vectorizes text into embeddings. BatchEmbed is used when the
// implementation also satisfies domain.BatchEmbedder.
type Embedder = domain.Embedder
