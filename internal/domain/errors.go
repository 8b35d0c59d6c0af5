package domain

import "errors"

var (
	// ErrEmptyQuery signals a missing or blank query.
	ErrEmptyQuery = errors.New("no query provided")
	// ErrRetrieval signals a failure of the semantic index during retrieval.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrIndexUnavailable signals that the index could not be created or reached.
	ErrIndexUnavailable = errors.New("index unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals that the embedding token budget is spent.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrInvalidRecord signals a business record that cannot be indexed.
	ErrInvalidRecord = errors.New("invalid business record")
)
