// Package health aggregates readiness of the index store and external providers.
package health

import (
	"context"
	"sync"
	"time"
)

// DefaultProbeTimeout bounds each network probe.
const DefaultProbeTimeout = 3 * time.Second

// DBPinger checks index store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// SummarizerChecker reports whether the summarizer has credentials.
type SummarizerChecker interface {
	Configured() bool
}

// Status is the aggregated verdict.
type Status string

const (
	Healthy Status = "ok"
	// Degraded means queries still run but answers may be incomplete.
	Degraded Status = "degraded"
	// Unhealthy means the index store is unreachable and no query can succeed.
	Unhealthy Status = "error"
)

// CheckResult is the outcome of one component check.
type CheckResult string

const (
	CheckOK            CheckResult = "ok"
	CheckError         CheckResult = "error"
	CheckNotConfigured CheckResult = "not_configured"
)

// Component names used as Report.Checks keys.
const (
	CheckDatabase   = "database"
	CheckEmbedding  = "embedding"
	CheckSummarizer = "summarizer"
)

// Report is the result of one Check.
type Report struct {
	Status  Status
	Version string
	Checks  map[string]CheckResult
}

// Service runs the component checks.
type Service struct {
	db         DBPinger
	embedding  EmbeddingChecker
	summarizer SummarizerChecker
	timeout    time.Duration
	version    string
}

// New creates a Service. embedding and summarizer may be nil; their checks are
// then left out of the report.
func New(db DBPinger, embedding EmbeddingChecker, summarizer SummarizerChecker) *Service {
	return &Service{db: db, embedding: embedding, summarizer: summarizer, timeout: DefaultProbeTimeout}
}

// WithVersion sets the build version reported alongside the checks.
func (s *Service) WithVersion(v string) *Service {
	s.version = v
	return s
}

// WithTimeout overrides DefaultProbeTimeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	s.timeout = d
	return s
}

// Check probes the database and the embedding provider in parallel. Only an
// unreachable database makes the service unhealthy; any other failed or
// unconfigured component degrades it.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	probes := map[string]func(context.Context) error{CheckDatabase: s.db.Ping}
	if s.embedding != nil {
		probes[CheckEmbedding] = s.embedding.HealthCheck
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(probes)+1)
	)
	for name, probe := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := CheckOK
			if probe(ctx) != nil {
				res = CheckError
			}
			mu.Lock()
			checks[name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	if s.summarizer != nil {
		checks[CheckSummarizer] = CheckNotConfigured
		if s.summarizer.Configured() {
			checks[CheckSummarizer] = CheckOK
		}
	}

	return Report{Status: verdict(checks), Version: s.version, Checks: checks}
}

func verdict(checks map[string]CheckResult) Status {
	if checks[CheckDatabase] != CheckOK {
		return Unhealthy
	}
	for _, c := range checks {
		if c != CheckOK {
			return Degraded
		}
	}
	return Healthy
}
