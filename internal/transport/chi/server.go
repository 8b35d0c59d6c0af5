// Package chi exposes the query pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/andrewcz-se/vector-rag/internal/domain"
	"github.com/andrewcz-se/vector-rag/internal/usecase/assembly"
	healthuc "github.com/andrewcz-se/vector-rag/internal/usecase/health"
	queryuc "github.com/andrewcz-se/vector-rag/internal/usecase/query"
)

// maxQueryBody caps the POST /api/query request body.
const maxQueryBody = 64 << 10

// Catalog lists every indexed business.
type Catalog interface {
	List(ctx context.Context) ([]assembly.Record, error)
}

// Answerer runs the query pipeline.
type Answerer interface {
	Answer(ctx context.Context, query string) (queryuc.Result, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the catalog and query endpoints.
type Server struct {
	catalog       Catalog
	query         Answerer
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(catalog Catalog, query Answerer, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		catalog: catalog,
		query:   query,
		health:  health,
		logger:  logger,
	}
	// order matters: a quota error is also an embedding provider error
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, "No query provided"),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded, http.StatusTooManyRequests,
			domain.ErrEmbeddingQuotaExceeded.Error()),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway,
			domain.ErrEmbeddingProviderError.Error()),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable,
			domain.ErrIndexUnavailable.Error()),
		sentinelHandler(domain.ErrRetrieval, http.StatusInternalServerError, domain.ErrRetrieval.Error()),
	}
	return s
}

// headerEmbeddingTokens reports the embedding tokens a query consumed.
const headerEmbeddingTokens = "X-Embedding-Tokens"

type recordsResponse struct {
	Results []assembly.Record `json:"results"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Results   []assembly.Record `json:"results"`
	AISummary *string           `json:"ai_summary"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status  healthuc.Status                 `json:"status"`
	Version string                          `json:"version,omitempty"`
	Checks  map[string]healthuc.CheckResult `json:"checks"`
}

// ListAll handles GET /api/all.
func (s *Server) ListAll(w http.ResponseWriter, r *http.Request) {
	records, err := s.catalog.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordsResponse{Results: nonNil(records)})
}

// Query handles POST /api/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, usage := domain.WithUsage(r.Context())
	res, err := s.query.Answer(ctx, req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, queryResponse{Results: nonNil(res.Records), AISummary: res.Summary})
}

// HealthCheck handles GET /health. Only an unreachable index store answers 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: report.Status, Version: report.Version, Checks: report.Checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func nonNil(records []assembly.Record) []assembly.Record {
	if records == nil {
		return []assembly.Record{}
	}
	return records
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.Usage) {
	if usage.Embedded() {
		w.Header().Set(headerEmbeddingTokens, strconv.FormatInt(usage.Tokens(), 10))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client only ever sees msg, never the wrapped chain.
func sentinelHandler(sentinel error, status int, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger.With(zap.String("request_id", chiMiddleware.GetReqID(r.Context())))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
