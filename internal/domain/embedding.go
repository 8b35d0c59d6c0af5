package domain

import (
	"context"
	"fmt"
)

// Embedder maps one text to a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder is implemented by embedders that can vectorize many texts per
// provider round trip. Embeddings[i] belongs to texts[i].
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// EmbeddingResult is a vector plus the tokens the provider billed for it.
// Cache hits report zero tokens.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult holds vectors in input order and the summed token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// EmbedAll vectorizes texts through e, in one call when e is a BatchEmbedder.
// The result always has exactly len(texts) vectors.
func EmbedAll(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	be, ok := e.(BatchEmbedder)
	if !ok {
		return embedEach(ctx, e, texts)
	}
	res, err := be.BatchEmbed(ctx, texts)
	if err != nil {
		return BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	if got := len(res.Embeddings); got != len(texts) {
		return BatchEmbeddingResult{}, fmt.Errorf("%w: %d vectors for %d texts",
			ErrEmbeddingProviderError, got, len(texts))
	}
	return res, nil
}

func embedEach(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	var out BatchEmbeddingResult
	out.Embeddings = make([][]float32, 0, len(texts))
	for i, text := range texts {
		res, err := e.Embed(ctx, text)
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("embed text %d: %w", i, err)
		}
		out.Embeddings = append(out.Embeddings, res.Embedding)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}
	return out, nil
}

// Instructed prefixes a task instruction to each text, e.g. "query: " for
// searches and "passage: " for stored documents.
type Instructed struct {
	inner  Embedder
	prefix string
}

// WithInstruction wraps inner. An empty instruction still forwards unchanged.
func WithInstruction(inner Embedder, instruction string) *Instructed {
	return &Instructed{inner: inner, prefix: instruction}
}

func (e *Instructed) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	res, err := e.inner.Embed(ctx, e.prefix+text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instructed embed: %w", err)
	}
	return res, nil
}

func (e *Instructed) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	withPrefix := make([]string, 0, len(texts))
	for _, t := range texts {
		withPrefix = append(withPrefix, e.prefix+t)
	}
	res, err := EmbedAll(ctx, e.inner, withPrefix)
	if err != nil {
		return BatchEmbeddingResult{}, fmt.Errorf("instructed batch: %w", err)
	}
	return res, nil
}
