package embedding

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/andrewcz-se/vector-rag/internal/domain"
	"github.com/andrewcz-se/vector-rag/internal/metrics"
)

// MaxChunk caps the number of texts sent to the provider in one request.
const MaxChunk = 256

// BudgetChecker admits embedding calls and accounts for the tokens they consume.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// Metered guards an embedder with a token budget and logs every provider call.
// Request, latency and token counters live in the transport; this layer only
// publishes the remaining-budget gauges.
type Metered struct {
	inner    domain.Embedder
	provider string
	model    string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewMetered wraps inner. A nil budget disables admission checks.
func NewMetered(inner domain.Embedder, provider, model string, budget BudgetChecker, logger *zap.Logger) *Metered {
	return &Metered{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		logger:   logger.With(zap.String("provider", provider), zap.String("model", model)),
	}
}

// Embed vectorizes one text.
func (m *Metered) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := m.admit(ctx, 1); err != nil {
		return domain.EmbeddingResult{}, err
	}

	start := time.Now()
	res, err := m.inner.Embed(ctx, text)
	if err != nil {
		m.logger.Error("Embedding failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	m.settle(res.TotalTokens)

	m.logger.Debug("Embedded text",
		zap.Duration("duration", time.Since(start)),
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

// BatchEmbed vectorizes texts in chunks of at most MaxChunk. The budget is
// checked before every chunk and charged after it, so a long seed stops at the
// first chunk that would run over.
func (m *Metered) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	var out domain.BatchEmbeddingResult
	offset := 0
	for chunk := range slices.Chunk(texts, MaxChunk) {
		if err := m.admit(ctx, len(chunk)); err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("chunk at %d: %w", offset, err)
		}

		res, err := domain.EmbedAll(ctx, m.inner, chunk)
		if err != nil {
			m.logger.Error("Batch embedding failed",
				zap.Int("offset", offset),
				zap.Int("chunk", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed at %d: %w", offset, err)
		}
		m.settle(res.TotalTokens)

		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
		offset += len(chunk)
	}

	m.logger.Debug("Embedded batch",
		zap.Duration("duration", time.Since(start)),
		zap.Int("texts", len(texts)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

func (m *Metered) admit(ctx context.Context, texts int) error {
	if m.budget == nil {
		return nil
	}
	if err := m.budget.Check(ctx); err != nil {
		m.logger.Warn("Embedding budget exhausted", zap.Int("texts", texts), zap.Error(err))
		return fmt.Errorf("budget: %w", err)
	}
	return nil
}

func (m *Metered) settle(tokens int) {
	if m.budget == nil || tokens <= 0 {
		return
	}
	m.budget.Record(int64(tokens))
	metrics.EmbeddingBudgetTokensRemaining.WithLabelValues(m.provider, "daily").Set(float64(m.budget.RemainingDaily()))
	metrics.EmbeddingBudgetTokensRemaining.WithLabelValues(m.provider, "monthly").Set(float64(m.budget.RemainingMonthly()))
}
