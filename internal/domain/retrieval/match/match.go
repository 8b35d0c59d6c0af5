// Package match holds a single retrieval hit.
package match

import "github.com/andrewcz-se/vector-rag/internal/domain/business"

// Match is one nearest-neighbour hit. Its rank is its position in the result slice.
type Match struct {
	record   business.Record
	document string
	score    float64
}

// New creates a Match.
func New(record business.Record, document string, score float64) Match {
	return Match{record: record, document: document, score: score}
}

// Record returns the matched business metadata.
func (m Match) Record() business.Record { return m.record }

// Document returns the indexed document text as stored.
func (m Match) Document() string { return m.document }

// Score returns cosine similarity (higher is closer).
func (m Match) Score() float64 { return m.score }
