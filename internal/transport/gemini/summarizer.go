// Package gemini summarizes retrieved business context with Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/andrewcz-se/vector-rag/internal/domain/summary"
	"github.com/andrewcz-se/vector-rag/internal/metrics"
)

// DefaultModel is used when the configuration names none.
const DefaultModel = "gemini-2.5-flash-lite"

// SystemInstruction frames every summarization request.
const SystemInstruction = "You are a helpful local assistant. Based on the provided context of local " +
	"businesses, answer the user's question. It is OK to make common-sense inferences " +
	"(e.g., 'car repair' or 'auto shop' can help a user 'fix their car'). If the provided " +
	"context does not contain a relevant answer, simply state that you cannot find a " +
	"relevant business in the provided information."

// Config holds the summarizer settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds the single generate call; zero means the caller's context only.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Summarizer answers a query from context entries using the Gemini API.
// Without an API key it never touches the network.
type Summarizer struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewSummarizer creates a summarizer. An empty API key yields a summarizer that
// reports a configuration error on every call.
func NewSummarizer(ctx context.Context, cfg *Config) (*Summarizer, error) {
	s := &Summarizer{
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
	if s.model == "" {
		s.model = DefaultModel
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if cfg.APIKey == "" {
		return s, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	s.client = client
	return s, nil
}

// Configured reports whether an API key was supplied.
func (s *Summarizer) Configured() bool { return s.client != nil }

// Model returns the model name requests are sent to.
func (s *Summarizer) Model() string { return s.model }

// Summarize makes exactly one generate call. Every failure is folded into the result.
func (s *Summarizer) Summarize(ctx context.Context, query string, entries []string) summary.Result {
	if s.client == nil {
		metrics.SummarizerRequestsTotal.WithLabelValues(s.model, string(summary.KindConfigError)).Inc()
		return summary.ConfigError()
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: SystemInstruction}}},
	}

	start := time.Now()
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(BuildPrompt(query, entries)), cfg)
	metrics.SummarizerRequestDuration.WithLabelValues(s.model).Observe(time.Since(start).Seconds())

	res := interpret(resp, err)
	metrics.SummarizerRequestsTotal.WithLabelValues(s.model, string(res.Kind())).Inc()

	if !res.IsOK() {
		s.logger.Warn("summarization failed",
			zap.String("model", s.model),
			zap.String("kind", string(res.Kind())),
			zap.String("detail", res.Detail()),
		)
	}
	return res
}

// BuildPrompt renders the user turn sent to the model.
func BuildPrompt(query string, entries []string) string {
	return "User Question: " + query + "\n\nContext:\n" + strings.Join(entries, "\n")
}

func interpret(resp *genai.GenerateContentResponse, err error) summary.Result {
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return summary.APIError(apiErr.Message)
		}
		var apiErrPtr *genai.APIError
		if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
			return summary.APIError(apiErrPtr.Message)
		}
		return summary.TransportError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return summary.UnknownResponse()
	}

	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 ||
		cand.Content.Parts[0] == nil || cand.Content.Parts[0].Text == "" {
		return summary.ParseError()
	}
	return summary.OK(cand.Content.Parts[0].Text)
}
