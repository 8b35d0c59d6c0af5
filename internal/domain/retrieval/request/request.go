// Package request holds the structured retrieval request built by the planner.
package request

import (
	"fmt"
	"strings"

	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/filter"
)

// DefaultTopK is the number of matches requested per query.
const DefaultTopK = 3

// MaxTopK bounds the result-count limit.
const MaxTopK = 100

// Request is a retrieval request (immutable value object).
type Request struct {
	query   string
	topK    int
	filters filter.Expression
}

// New validates and creates a Request. Query must not be blank; topK is 1..MaxTopK.
func New(query string, topK int, filters filter.Expression) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if topK <= 0 || topK > MaxTopK {
		return Request{}, fmt.Errorf("top_k must be between 1 and %d, got %d", MaxTopK, topK)
	}
	return Request{query: query, topK: topK, filters: filters}, nil
}

// Query returns the raw query text.
func (r Request) Query() string { return r.query }

// TopK returns the result-count limit.
func (r Request) TopK() int { return r.topK }

// Filters returns the metadata pre-filter; empty means unfiltered search.
func (r Request) Filters() filter.Expression { return r.filters }
