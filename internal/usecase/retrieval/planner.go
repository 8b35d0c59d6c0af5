package retrieval

import (
	"fmt"
	"strings"

	"github.com/andrewcz-se/vector-rag/internal/domain"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/filter"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/request"
	"github.com/andrewcz-se/vector-rag/internal/metrics"
)

// CategoryField is the indexed metadata field the planner filters on.
const CategoryField = "category"

// Planner turns a raw query into a retrieval request.
type Planner struct {
	detector CategoryDetector
	topK     int
}

// NewPlanner creates a planner. A non-positive topK falls back to request.DefaultTopK.
func NewPlanner(detector CategoryDetector, topK int) *Planner {
	if topK <= 0 {
		topK = request.DefaultTopK
	}
	return &Planner{detector: detector, topK: topK}
}

// Plan builds a request carrying the raw query text. When the query names a known
// category the request is restricted to it; otherwise the search is unfiltered.
func (p *Planner) Plan(query string) (request.Request, error) {
	if strings.TrimSpace(query) == "" {
		return request.Request{}, domain.ErrEmptyQuery
	}

	var filters filter.Expression
	if cat, ok := p.detector.Detect(query); ok {
		cond, err := filter.NewMatch(CategoryField, cat)
		if err != nil {
			return request.Request{}, fmt.Errorf("category filter: %w", err)
		}
		if filters, err = filter.NewExpression(cond); err != nil {
			return request.Request{}, fmt.Errorf("category filter: %w", err)
		}
		metrics.CategoryDetectionsTotal.WithLabelValues(cat).Inc()
	} else {
		metrics.CategoryDetectionsTotal.WithLabelValues("none").Inc()
	}

	req, err := request.New(query, p.topK, filters)
	if err != nil {
		return request.Request{}, fmt.Errorf("build request: %w", err)
	}
	return req, nil
}
