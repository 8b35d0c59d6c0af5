// Package catalog seeds and lists the indexed business collection.
package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/andrewcz-se/vector-rag/internal/domain"
	biz "github.com/andrewcz-se/vector-rag/internal/domain/business"
	"github.com/andrewcz-se/vector-rag/internal/logger"
	"github.com/andrewcz-se/vector-rag/internal/usecase/assembly"
)

// SeedReport summarizes a seeding run.
type SeedReport struct {
	IndexCreated bool
	Indexed      int
	Tokens       int
	Pruned       int
}

// Service manages the business collection.
type Service struct {
	repo      Repository
	embed     Embedder
	vectorDim int
	rebuild   bool
	prune     bool
}

// New creates a catalog service.
func New(repo Repository, embed Embedder, vectorDim int) *Service {
	return &Service{repo: repo, embed: embed, vectorDim: vectorDim}
}

// WithRebuild drops the index before seeding so it is recreated with the
// current vector dimensions and HNSW parameters.
func (s *Service) WithRebuild(on bool) *Service {
	s.rebuild = on
	return s
}

// WithPrune deletes stored records that are absent from the seed input.
func (s *Service) WithPrune(on bool) *Service {
	s.prune = on
	return s
}

// Seed makes sure the index exists and upserts the given businesses.
// Records are keyed by id, so seeding the same input twice leaves identical data.
func (s *Service) Seed(ctx context.Context, fields []biz.Fields) (SeedReport, error) {
	records := make([]biz.Record, 0, len(fields))
	for i, f := range fields {
		rec, err := biz.New(f)
		if err != nil {
			return SeedReport{}, fmt.Errorf("record [%d]: %w: %w", i, domain.ErrInvalidRecord, err)
		}
		records = append(records, rec)
	}

	if s.rebuild {
		if err := s.repo.DropIndex(ctx); err != nil {
			return SeedReport{}, fmt.Errorf("rebuild index: %w: %w", domain.ErrIndexUnavailable, err)
		}
	}

	created, err := s.repo.EnsureIndex(ctx, s.vectorDim)
	if err != nil {
		return SeedReport{}, fmt.Errorf("ensure index: %w: %w", domain.ErrIndexUnavailable, err)
	}
	report := SeedReport{IndexCreated: created}

	if len(records) == 0 {
		return report, nil
	}

	docs := make([]string, len(records))
	for i, rec := range records {
		docs[i] = rec.Document()
	}

	embs, err := domain.EmbedAll(ctx, s.embed, docs)
	if err != nil {
		return SeedReport{}, fmt.Errorf("vectorize documents: %w: %w", domain.ErrEmbeddingProviderError, err)
	}

	if err := s.repo.Put(ctx, records, embs.Embeddings); err != nil {
		return SeedReport{}, fmt.Errorf("store records: %w", err)
	}

	report.Indexed = len(records)
	report.Tokens = embs.TotalTokens

	if s.prune {
		ids := make([]string, len(records))
		for i, rec := range records {
			ids[i] = rec.ID()
		}
		n, err := s.repo.Prune(ctx, ids)
		if err != nil {
			return report, fmt.Errorf("prune stale records: %w", err)
		}
		report.Pruned = n
	}

	logger.FromContext(ctx).Info("catalog seeded",
		zap.Bool("index_created", created),
		zap.Int("records", report.Indexed),
		zap.Int("tokens", report.Tokens),
		zap.Int("pruned", report.Pruned),
	)
	return report, nil
}

// List returns every indexed business as display records, ordered by id.
func (s *Service) List(ctx context.Context) ([]assembly.Record, error) {
	matches, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w: %w", domain.ErrRetrieval, err)
	}
	records, _ := assembly.Assemble(matches)
	return records, nil
}
