// Package metrics holds the service's Prometheus collectors. Every metric
// lives under the "vrag" namespace.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vrag"

func counter(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
}

func histogram(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: name, Help: help, Buckets: buckets}, labels)
}

// Embedding provider, cache and budget.
var (
	EmbeddingRequestsTotal = counter("embedding_requests_total",
		"Embedding provider calls by outcome", "provider", "model", "status")
	EmbeddingRequestDuration = histogram("embedding_request_duration_seconds",
		"Embedding provider call latency", []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, "provider", "model")
	EmbeddingTokensTotal = counter("embedding_tokens_total",
		"Tokens billed by the embedding provider", "provider", "model", "type")
	EmbeddingErrorsTotal = counter("embedding_errors_total",
		"Embedding provider failures by class", "provider", "model", "error_type")
	EmbeddingCacheTotal = counter("embedding_cache_total",
		"Embedding cache lookups", "result")
	EmbeddingBudgetTokensRemaining = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "embedding_budget_tokens_remaining",
		Help:      "Tokens left in the embedding budget (-1 when unlimited)",
	}, []string{"provider", "period"})
)

// Query pipeline.
var (
	CategoryDetectionsTotal = counter("category_detections_total",
		`Queries by detected category ("none" when nothing matched)`, "category")
	RetrievalRequestsTotal = counter("retrieval_requests_total",
		"Index retrievals by filter use and outcome", "filtered", "status")
	RetrievalMatches = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "retrieval_matches",
		Help:      "Matches returned per retrieval",
		Buckets:   []float64{0, 1, 2, 3, 5, 10},
	})
	SummarizerRequestsTotal = counter("summarizer_requests_total",
		"Summarization attempts by outcome", "model", "status")
	SummarizerRequestDuration = histogram("summarizer_request_duration_seconds",
		"Summarizer call latency", []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}, "model")
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Later calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration, httpRequestsTotal, httpInFlight,
			EmbeddingRequestsTotal, EmbeddingRequestDuration, EmbeddingTokensTotal,
			EmbeddingErrorsTotal, EmbeddingCacheTotal, EmbeddingBudgetTokensRemaining,
			CategoryDetectionsTotal, RetrievalRequestsTotal, RetrievalMatches,
			SummarizerRequestsTotal, SummarizerRequestDuration,
		)
	})
}
