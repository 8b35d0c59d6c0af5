package embcache

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func TestEmbed_MissStoresVector(t *testing.T) {
	inner := &stubEmbedder{vec: []float32{0.1, 0.2}, tokens: 7}
	e, kv := newTestEmbedder(t, inner)

	res, err := e.Embed(context.Background(), "cheap coffee")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if res.TotalTokens != 7 || inner.calls != 1 {
		t.Errorf("tokens=%d calls=%d, want 7/1", res.TotalTokens, inner.calls)
	}

	key := e.key("cheap coffee")
	if !strings.HasPrefix(key, "vrag:emb:"+testModel+":") {
		t.Errorf("unexpected key %q", key)
	}
	if _, ok := kv.data[key]; !ok {
		t.Error("vector not cached")
	}
}

func TestEmbed_HitSkipsProvider(t *testing.T) {
	inner := &stubEmbedder{vec: []float32{9}}
	e, kv := newTestEmbedder(t, inner)
	prime(e, kv, "cheap coffee", []float32{0.4, 0.5})

	res, err := e.Embed(context.Background(), "cheap coffee")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !slices.Equal(res.Embedding, []float32{0.4, 0.5}) {
		t.Errorf("got %v", res.Embedding)
	}
	if res.TotalTokens != 0 || inner.calls != 0 {
		t.Errorf("hit must cost nothing: tokens=%d calls=%d", res.TotalTokens, inner.calls)
	}
}

func TestEmbed_KeyDependsOnModel(t *testing.T) {
	kv := newMemKV()
	a := New(&stubEmbedder{}, kv, "model-a", nil, zap.NewNop())
	b := New(&stubEmbedder{}, kv, "model-b", nil, zap.NewNop())

	if a.key("same text") == b.key("same text") {
		t.Error("different models must not share cache entries")
	}
}

func TestEmbed_StoreFailuresDegradeToMiss(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*memKV, *Embedder)
	}{
		{"read error", func(kv *memKV, _ *Embedder) { kv.getErr = errors.New("timeout") }},
		{"corrupt blob", func(kv *memKV, e *Embedder) { kv.data[e.key("q")] = []byte{1, 2, 3} }},
		{"write error", func(kv *memKV, _ *Embedder) { kv.setErr = errors.New("readonly") }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inner := &stubEmbedder{vec: []float32{1}}
			e, kv := newTestEmbedder(t, inner)
			tc.setup(kv, e)

			res, err := e.Embed(context.Background(), "q")
			if err != nil {
				t.Fatalf("Embed: %v", err)
			}
			if inner.calls != 1 || len(res.Embedding) != 1 {
				t.Errorf("expected provider fallthrough, calls=%d", inner.calls)
			}
		})
	}
}

func TestEmbed_InnerError(t *testing.T) {
	boom := errors.New("provider down")
	e, kv := newTestEmbedder(t, &stubEmbedder{err: boom})

	if _, err := e.Embed(context.Background(), "q"); !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if len(kv.data) != 0 {
		t.Error("failed embedding must not be cached")
	}
}

func TestEmbed_TTL(t *testing.T) {
	e, kv := newTestEmbedder(t, &stubEmbedder{vec: []float32{1}})
	e.WithTTL(24 * time.Hour)

	if _, err := e.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if got := kv.ttls[e.key("q")]; got != 24*time.Hour {
		t.Errorf("ttl = %v, want 24h", got)
	}
}

func TestBatchEmbed_OnlyMissesReachProvider(t *testing.T) {
	inner := &stubEmbedder{vec: []float32{0.7}, tokens: 3}
	e, kv := newTestEmbedder(t, inner)
	prime(e, kv, "b", []float32{0.2})

	res, err := e.BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}

	if inner.calls != 1 || !slices.Equal(inner.seen, []string{"a", "c"}) {
		t.Errorf("provider saw %v in %d calls, want [a c] in 1", inner.seen, inner.calls)
	}
	want := [][]float32{{0.7}, {0.2}, {0.7}}
	for i := range want {
		if !slices.Equal(res.Embeddings[i], want[i]) {
			t.Errorf("vector %d = %v, want %v", i, res.Embeddings[i], want[i])
		}
	}
	if res.TotalTokens != 6 {
		t.Errorf("tokens = %d, want 6", res.TotalTokens)
	}
	if len(kv.data) != 3 {
		t.Errorf("cached %d vectors, want 3", len(kv.data))
	}
}

func TestBatchEmbed_AllHits(t *testing.T) {
	inner := &stubEmbedder{}
	e, kv := newTestEmbedder(t, inner)
	prime(e, kv, "a", []float32{1})
	prime(e, kv, "b", []float32{2})

	res, err := e.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}
	if inner.calls != 0 || res.TotalTokens != 0 || len(res.Embeddings) != 2 {
		t.Errorf("calls=%d tokens=%d vectors=%d", inner.calls, res.TotalTokens, len(res.Embeddings))
	}
}

func TestBatchEmbed_Empty(t *testing.T) {
	inner := &stubEmbedder{}
	e, _ := newTestEmbedder(t, inner)

	res, err := e.BatchEmbed(context.Background(), nil)
	if err != nil || len(res.Embeddings) != 0 || inner.calls != 0 {
		t.Errorf("res=%+v err=%v calls=%d", res, err, inner.calls)
	}
}

func TestBatchEmbed_InnerError(t *testing.T) {
	boom := errors.New("rate limited")
	e, _ := newTestEmbedder(t, &stubEmbedder{err: boom})

	if _, err := e.BatchEmbed(context.Background(), []string{"a"}); !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestLookupsCounter(t *testing.T) {
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "lookups"}, []string{"result"})
	kv := newMemKV()
	e := New(&stubEmbedder{vec: []float32{1}}, kv, testModel, lookups, zap.NewNop())

	for range 2 {
		if _, err := e.Embed(context.Background(), "q"); err != nil {
			t.Fatalf("Embed: %v", err)
		}
	}

	if got := testutil.ToFloat64(lookups.WithLabelValues("miss")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(lookups.WithLabelValues("hit")); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
}
