package query

import (
	"context"

	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/match"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/request"
	"github.com/andrewcz-se/vector-rag/internal/domain/summary"
)

// --- Mocks ---

type mockPlanner struct {
	planFn func(query string) (request.Request, error)
}

func (m *mockPlanner) Plan(query string) (request.Request, error) {
	if m.planFn != nil {
		return m.planFn(query)
	}
	return request.New(query, request.DefaultTopK, filterNone)
}

type mockRetriever struct {
	matches []match.Match
	err     error
	calls   int
}

func (m *mockRetriever) Retrieve(_ context.Context, _ request.Request) ([]match.Match, error) {
	m.calls++
	return m.matches, m.err
}

type mockSummarizer struct {
	result  summary.Result
	calls   int
	query   string
	entries []string
}

func (m *mockSummarizer) Summarize(_ context.Context, query string, entries []string) summary.Result {
	m.calls++
	m.query = query
	m.entries = entries
	return m.result
}
