package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/andrewcz-se/vector-rag/internal/metrics"
)

// RouterConfig holds HTTP boundary settings.
type RouterConfig struct {
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
	// Timeout is the context deadline of an /api request, summarizer call
	// included. It never changes the response status. Zero disables it.
	Timeout time.Duration
}

// NewRouter mounts the handlers of s:
//
//	GET  /api/all     every indexed business
//	POST /api/query   answer a natural-language query
//	GET  /health      component health
//	GET  /metrics     Prometheus exposition
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
		recoverJSON(s.logger),
		accessLog(s.logger),
		corsHandler(cfg.AllowedOrigins),
		metrics.Middleware(),
	)

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(api chi.Router) {
		if cfg.Timeout > 0 {
			api.Use(deadline(cfg.Timeout))
		}
		api.Get("/all", s.ListAll)
		api.Post("/query", s.Query)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{chiMiddleware.RequestIDHeader, headerEmbeddingTokens},
		MaxAge:         300,
	})
}
