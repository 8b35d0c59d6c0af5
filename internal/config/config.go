// Package config loads the service configuration from config/{env}.yaml.
package config

import "time"

// Config holds the vector-rag service configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Index      IndexConfig      `yaml:"index"`
	Seed       SeedConfig       `yaml:"seed"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port              int      `yaml:"port"`
	ReadTimeoutSec    int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec   int      `yaml:"write_timeout_sec"`
	ShutdownSec       int      `yaml:"shutdown_timeout_sec"`
	RequestTimeoutSec int      `yaml:"request_timeout_sec"`
	CORSOrigins       []string `yaml:"cors_origins"`
}

// DatabaseConfig holds index store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds HNSW index settings.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
}

// EmbeddingConfig holds embedding settings.
type EmbeddingConfig struct {
	Providers  map[string]ProviderConfig `yaml:"providers"`
	Vectorizer VectorizerConfig          `yaml:"vectorizer"`
	// Cache stores vectors in the index store keyed by text hash.
	Cache         bool `yaml:"cache"`
	CacheTTLHours int  `yaml:"cache_ttl_hours"` // 0 = entries never expire
}

// CacheTTL returns the lifetime of a cached embedding.
func (e EmbeddingConfig) CacheTTL() time.Duration {
	return time.Duration(e.CacheTTLHours) * time.Hour
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// ProviderConfig holds embedding provider settings.
type ProviderConfig struct {
	APIKey  string       `yaml:"api_key"`
	BaseURL string       `yaml:"base_url"`
	Budget  BudgetConfig `yaml:"budget"`
}

// VectorizerConfig selects the provider and model used for embeddings.
type VectorizerConfig struct {
	Provider            string `yaml:"provider"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
}

// SummarizerConfig holds Gemini settings. An empty APIKey disables summaries.
type SummarizerConfig struct {
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"` // 0 = bounded by the request only
}

// Timeout returns the per-call summarizer timeout.
func (s SummarizerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// RetrievalConfig holds query pipeline settings.
type RetrievalConfig struct {
	Collection string   `yaml:"collection"`
	TopK       int      `yaml:"top_k"`
	Categories []string `yaml:"categories"`
}

// SeedConfig controls startup seeding of the business collection.
type SeedConfig struct {
	Enabled *bool  `yaml:"enabled"` // default true
	Path    string `yaml:"path"`    // empty = built-in data set
	// Rebuild drops and recreates the index before seeding.
	Rebuild bool `yaml:"rebuild"`
	// Prune deletes stored businesses that are missing from the seed data.
	Prune bool `yaml:"prune"`
}

// IsEnabled reports whether seeding runs at startup.
func (s SeedConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}
