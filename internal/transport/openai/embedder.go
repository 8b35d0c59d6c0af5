// Package openai vectorizes text through an OpenAI-compatible embeddings API.
package openai

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/andrewcz-se/vector-rag/internal/domain"
	"github.com/andrewcz-se/vector-rag/internal/metrics"
)

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string // empty uses api.openai.com
	Model      string
	Dimensions int // 0 keeps the model's native size
	User       string
	Provider   string // metrics label
	Logger     *zap.Logger
}

// Embedder calls the embeddings endpoint of any OpenAI-compatible provider.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	user       string
	provider   string
	logger     *zap.Logger
}

// NewEmbedder creates the provider client. No request is made until first use.
func NewEmbedder(cfg *Config) *Embedder {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	return &Embedder{
		client:     openai.NewClientWithConfig(cc),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		user:       cfg.User,
		provider:   cfg.Provider,
		logger:     cmp.Or(cfg.Logger, zap.NewNop()),
	}
}

// Embed vectorizes a single text.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vecs, usage, err := e.call(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: vecs[0], PromptTokens: usage.PromptTokens, TotalTokens: usage.TotalTokens}, nil
}

// BatchEmbed vectorizes texts in one request, returning vectors in input order.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	vecs, usage, err := e.call(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	return domain.BatchEmbeddingResult{Embeddings: vecs, PromptTokens: usage.PromptTokens, TotalTokens: usage.TotalTokens}, nil
}

// HealthCheck lists models, which is free, to prove the key and endpoint work.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// call sends one request and returns exactly one vector per input, sorted by
// the index the API reports.
func (e *Embedder) call(ctx context.Context, inputs []string) ([][]float32, openai.Usage, error) {
	req := openai.EmbeddingRequest{
		Input:          inputs,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
		Dimensions:     e.dimensions,
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		e.failed(classify(err))
		e.logger.Debug("Embedding request failed",
			zap.String("provider", e.provider),
			zap.Int("inputs", len(inputs)),
			zap.Error(err),
		)
		return nil, openai.Usage{}, providerError(err)
	}
	if len(resp.Data) != len(inputs) {
		e.failed("count_mismatch")
		return nil, openai.Usage{}, fmt.Errorf("provider returned %d vectors for %d inputs: %w",
			len(resp.Data), len(inputs), domain.ErrEmbeddingProviderError)
	}
	e.succeeded(time.Since(start), resp.Usage)

	slices.SortFunc(resp.Data, func(a, b openai.Embedding) int { return cmp.Compare(a.Index, b.Index) })
	vecs := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vecs[i] = d.Embedding
	}
	return vecs, resp.Usage, nil
}

func (e *Embedder) succeeded(d time.Duration, u openai.Usage) {
	model := string(e.model)
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, model).Observe(d.Seconds())
	metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, model, "prompt").Add(float64(u.PromptTokens))
	metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, model, "total").Add(float64(u.TotalTokens))
}

func (e *Embedder) failed(kind string) {
	model := string(e.model)
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, model, kind).Inc()
}

// classify buckets a client error for the error_type label.
func classify(err error) string {
	switch status(err) {
	case 0:
		return "transport"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "auth"
	default:
		return "api_error"
	}
}

func status(err error) int {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	return 0
}

// providerError keeps the provider's message and marks the error as
// domain.ErrEmbeddingProviderError, which the HTTP layer answers with 502.
func providerError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, domain.ErrEmbeddingProviderError)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		// Some compatible providers answer {"detail": "..."} instead of {"error": {...}}.
		var body struct {
			Detail string `json:"detail"`
		}
		msg := string(reqErr.Body)
		if json.Unmarshal(reqErr.Body, &body) == nil && body.Detail != "" {
			msg = body.Detail
		}
		return fmt.Errorf("embedding API %d: %s: %w", reqErr.HTTPStatusCode, msg, domain.ErrEmbeddingProviderError)
	}
	return fmt.Errorf("embedding request: %w: %w", domain.ErrEmbeddingProviderError, err)
}
