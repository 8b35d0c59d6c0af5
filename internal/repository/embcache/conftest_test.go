package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/andrewcz-se/vector-rag/internal/db"
	"github.com/andrewcz-se/vector-rag/internal/domain"
)

const testModel = "text-embedding-3-small"

// stubEmbedder returns vec for every text, charging tokens per text.
type stubEmbedder struct {
	vec    []float32
	tokens int
	err    error
	calls  int
	seen   []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	s.calls++
	s.seen = append(s.seen, text)
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	return domain.EmbeddingResult{Embedding: s.vec, PromptTokens: s.tokens, TotalTokens: s.tokens}, nil
}

func (s *stubEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	s.calls++
	s.seen = append(s.seen, texts...)
	if s.err != nil {
		return domain.BatchEmbeddingResult{}, s.err
	}
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i := range texts {
		out.Embeddings[i] = s.vec
	}
	out.PromptTokens = s.tokens * len(texts)
	out.TotalTokens = s.tokens * len(texts)
	return out, nil
}

// memKV is an in-memory kv that records writes and their TTLs.
type memKV struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Set(ctx context.Context, key string, value []byte) error {
	return m.SetWithTTL(ctx, key, value, 0)
}

func (m *memKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func newTestEmbedder(t *testing.T, inner *stubEmbedder) (*Embedder, *memKV) {
	t.Helper()
	kv := newMemKV()
	return New(inner, kv, testModel, nil, zap.NewNop()), kv
}

// prime stores vec for text the way the cache itself would.
func prime(e *Embedder, kv *memKV, text string, vec []float32) {
	kv.data[e.key(text)] = db.EncodeVector(vec)
}
