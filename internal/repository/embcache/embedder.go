// Package embcache memoizes embedding vectors in the key-value store, keyed by
// model and text hash.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/andrewcz-se/vector-rag/internal/db"
	"github.com/andrewcz-se/vector-rag/internal/domain"
)

type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Embedder serves vectors from the cache and falls through to inner on a miss.
// A hit reports zero tokens.
type Embedder struct {
	inner   domain.Embedder
	kv      kv
	prefix  string
	ttl     time.Duration
	lookups *prometheus.CounterVec
	logger  *zap.Logger
}

// New caches inner's vectors under vrag:emb:{model}:. lookups, when non-nil,
// is incremented with result "hit" or "miss".
func New(inner domain.Embedder, store kv, model string, lookups *prometheus.CounterVec, logger *zap.Logger) *Embedder {
	return &Embedder{
		inner:   inner,
		kv:      store,
		prefix:  domain.KeyPrefix + "emb:" + model + ":",
		lookups: lookups,
		logger:  logger,
	}
}

// WithTTL expires cached vectors after ttl. Zero keeps them forever.
func (e *Embedder) WithTTL(ttl time.Duration) *Embedder {
	e.ttl = ttl
	return e
}

// Embed returns the cached vector for text or embeds and stores it.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := e.key(text)
	if vec, ok := e.lookup(ctx, key); ok {
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	res, err := e.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	e.store(ctx, key, res.Embedding)
	return res, nil
}

// BatchEmbed resolves hits from the cache and sends only the misses to inner,
// in one call. Token counts cover the misses.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	keys := make([]string, len(texts))
	var pending []int

	for i, text := range texts {
		keys[i] = e.key(text)
		if vec, ok := e.lookup(ctx, keys[i]); ok {
			out.Embeddings[i] = vec
		} else {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return out, nil
	}

	misses := make([]string, len(pending))
	for j, i := range pending {
		misses[j] = texts[i]
	}
	res, err := domain.EmbedAll(ctx, e.inner, misses)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed %d uncached texts: %w", len(misses), err)
	}

	for j, i := range pending {
		out.Embeddings[i] = res.Embeddings[j]
		e.store(ctx, keys[i], res.Embeddings[j])
	}
	out.PromptTokens = res.PromptTokens
	out.TotalTokens = res.TotalTokens
	return out, nil
}

func (e *Embedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return e.prefix + hex.EncodeToString(sum[:])
}

// lookup treats every read or decode failure as a miss.
func (e *Embedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	vec, err := e.read(ctx, key)
	switch {
	case err == nil && len(vec) > 0:
		e.count("hit")
		return vec, true
	case err != nil && !errors.Is(err, db.ErrKeyNotFound):
		e.logger.Warn("Embedding cache read failed", zap.String("key", key), zap.Error(err))
	}
	e.count("miss")
	return nil, false
}

func (e *Embedder) read(ctx context.Context, key string) ([]float32, error) {
	blob, err := e.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return db.DecodeVector(blob)
}

// store is best effort: a failed write only costs a future miss.
func (e *Embedder) store(ctx context.Context, key string, vec []float32) {
	blob := db.EncodeVector(vec)
	var err error
	if e.ttl > 0 {
		err = e.kv.SetWithTTL(ctx, key, blob, e.ttl)
	} else {
		err = e.kv.Set(ctx, key, blob)
	}
	if err != nil {
		e.logger.Warn("Embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (e *Embedder) count(result string) {
	if e.lookups != nil {
		e.lookups.WithLabelValues(result).Inc()
	}
}
