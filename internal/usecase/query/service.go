// Package query answers a user question: plan, retrieve, assemble, summarize.
package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/andrewcz-se/vector-rag/internal/domain"
	"github.com/andrewcz-se/vector-rag/internal/logger"
	"github.com/andrewcz-se/vector-rag/internal/usecase/assembly"
	"github.com/andrewcz-se/vector-rag/internal/usecase/retrieval"
)

// Result is the answer to a single query.
type Result struct {
	Records []assembly.Record
	// Summary is nil when nothing was retrieved and the summarizer was skipped.
	Summary *string
}

// Service runs the query pipeline.
type Service struct {
	planner    Planner
	retriever  Retriever
	summarizer Summarizer
}

// New creates a query service.
func New(planner Planner, retriever Retriever, summarizer Summarizer) *Service {
	return &Service{planner: planner, retriever: retriever, summarizer: summarizer}
}

// Answer runs the pipeline for one query. Retrieval failures abort; summarizer
// failures are reported inside Summary.
func (s *Service) Answer(ctx context.Context, query string) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, domain.ErrEmptyQuery
	}
	log := logger.FromContext(ctx)

	req, err := s.planner.Plan(query)
	if err != nil {
		return Result{}, fmt.Errorf("plan query: %w", err)
	}
	if cat, ok := req.Filters().Value(retrieval.CategoryField); ok {
		log.Debug("category detected", zap.String("category", cat))
	}

	matches, err := s.retriever.Retrieve(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("retrieve: %w", err)
	}

	records, entries := assembly.Assemble(matches)
	log.Debug("context assembled", zap.Int("matches", len(records)))

	if len(records) == 0 {
		return Result{Records: records}, nil
	}

	res := s.summarizer.Summarize(ctx, query, entries)
	if !res.IsOK() {
		log.Warn("summary unavailable", zap.String("kind", string(res.Kind())))
	}
	text := res.Text()
	return Result{Records: records, Summary: &text}, nil
}
