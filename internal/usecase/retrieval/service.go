// Package retrieval plans and executes nearest-neighbour lookups for user queries.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/andrewcz-se/vector-rag/internal/domain"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/match"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/request"
	"github.com/andrewcz-se/vector-rag/internal/metrics"
)

// Service executes retrieval requests against the semantic index.
type Service struct {
	repo  Repository
	embed Embedder
}

// New creates a retrieval service.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// Retrieve embeds the query text and returns up to TopK matches, nearest first.
// Zero matches is an empty slice, not an error. Index failures wrap
// domain.ErrIndexUnavailable when the index is missing or unreachable and
// domain.ErrRetrieval otherwise.
func (s *Service) Retrieve(ctx context.Context, req request.Request) ([]match.Match, error) {
	filtered := strconv.FormatBool(!req.Filters().IsEmpty())

	embResult, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues(filtered, "embedding_error").Inc()
		return nil, fmt.Errorf("vectorize query: %w: %w", domain.ErrEmbeddingProviderError, err)
	}

	domain.UsageFrom(ctx).Add(embResult.TotalTokens)

	matches, err := s.repo.SearchKNN(ctx, embResult.Embedding, req.Filters(), req.TopK())
	if errors.Is(err, domain.ErrIndexUnavailable) {
		metrics.RetrievalRequestsTotal.WithLabelValues(filtered, "unavailable").Inc()
		return nil, fmt.Errorf("search knn: %w", err)
	}
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues(filtered, "error").Inc()
		return nil, fmt.Errorf("search knn: %w: %w", domain.ErrRetrieval, err)
	}

	if matches == nil {
		matches = []match.Match{}
	}
	metrics.RetrievalRequestsTotal.WithLabelValues(filtered, "ok").Inc()
	metrics.RetrievalMatches.Observe(float64(len(matches)))
	return matches, nil
}
