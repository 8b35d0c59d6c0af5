package db

import "github.com/andrewcz-se/vector-rag/internal/domain/retrieval/filter"

// KNNQuery asks for the K nearest vectors, optionally pre-filtered by TAG matches.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string // empty returns every stored field
}

// SearchResult holds hits in server order. For KNN queries that is nearest first.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is one matched hash. Score is the cosine similarity in [0, 1]
// for KNN hits and zero for listings.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
