package config

import (
	"errors"
	"fmt"
	"slices"
)

var (
	drivers       = []string{"valkey", "redis"}
	budgetActions = []string{"", "warn", "reject"}
)

// ApplyDefaults fills every unset field that has a default.
func (c *Config) ApplyDefaults() {
	orDefault(&c.HTTP.Port, 5000)
	orDefault(&c.HTTP.ReadTimeoutSec, 10)
	orDefault(&c.HTTP.WriteTimeoutSec, 60)
	orDefault(&c.HTTP.ShutdownSec, 10)
	orDefault(&c.Database.Driver, "valkey")
	orDefault(&c.Database.ReadinessTimeout, 10)
	orDefault(&c.Index.HNSWM, 16)
	orDefault(&c.Index.HNSWEFConstruct, 200)
	orDefault(&c.Embedding.Vectorizer.Dimensions, 1536)
	orDefault(&c.Summarizer.Model, "gemini-2.5-flash-lite")
	orDefault(&c.Retrieval.Collection, "local_businesses")
	orDefault(&c.Retrieval.TopK, 3)
}

func orDefault[T comparable](field *T, def T) {
	var zero T
	if *field == zero {
		*field = def
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.HTTP.Port > 0 && c.HTTP.Port <= 65535,
		"http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	check(slices.Contains(drivers, c.Database.Driver),
		`database.driver must be "valkey" or "redis", got %q`, c.Database.Driver)
	check(len(c.Database.Addrs) > 0, "database.addrs is required")

	for name, p := range c.Embedding.Providers {
		check(slices.Contains(budgetActions, p.Budget.Action),
			`embedding.providers.%s.budget.action must be "warn" or "reject", got %q`, name, p.Budget.Action)
	}
	if vp := c.Embedding.Vectorizer.Provider; vp != "" {
		_, ok := c.Embedding.Providers[vp]
		check(ok, "embedding.vectorizer.provider %q is not among embedding.providers", vp)
	}
	check(c.Embedding.CacheTTLHours >= 0,
		"embedding.cache_ttl_hours must not be negative, got %d", c.Embedding.CacheTTLHours)
	check(c.Retrieval.TopK <= 100, "retrieval.top_k must be at most 100, got %d", c.Retrieval.TopK)
	check(c.Summarizer.TimeoutSec >= 0,
		"summarizer.timeout_sec must not be negative, got %d", c.Summarizer.TimeoutSec)

	return errors.Join(errs...)
}
