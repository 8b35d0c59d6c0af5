package query

import (
	"context"

	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/match"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/request"
	"github.com/andrewcz-se/vector-rag/internal/domain/summary"
)

// Planner turns a raw query into a retrieval request.
type Planner interface {
	Plan(query string) (request.Request, error)
}

// Retriever executes a retrieval request.
type Retriever interface {
	Retrieve(ctx context.Context, req request.Request) ([]match.Match, error)
}

// Summarizer produces a natural-language answer from context entries.
type Summarizer interface {
	Summarize(ctx context.Context, query string, entries []string) summary.Result
}
