package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/andrewcz-se/vector-rag/internal/config"
	"github.com/andrewcz-se/vector-rag/internal/db"
	dbRedis "github.com/andrewcz-se/vector-rag/internal/db/redis"
	dbValkey "github.com/andrewcz-se/vector-rag/internal/db/valkey"
	"github.com/andrewcz-se/vector-rag/internal/domain"
	"github.com/andrewcz-se/vector-rag/internal/metrics"
	budgetrepo "github.com/andrewcz-se/vector-rag/internal/repository/budget"
	businessrepo "github.com/andrewcz-se/vector-rag/internal/repository/business"
	"github.com/andrewcz-se/vector-rag/internal/repository/embcache"
	searchrepo "github.com/andrewcz-se/vector-rag/internal/repository/search"
	"github.com/andrewcz-se/vector-rag/internal/seed"
	chiTransport "github.com/andrewcz-se/vector-rag/internal/transport/chi"
	"github.com/andrewcz-se/vector-rag/internal/transport/gemini"
	openaiEmb "github.com/andrewcz-se/vector-rag/internal/transport/openai"
	catalogUC "github.com/andrewcz-se/vector-rag/internal/usecase/catalog"
	"github.com/andrewcz-se/vector-rag/internal/usecase/category"
	embeddinguc "github.com/andrewcz-se/vector-rag/internal/usecase/embedding"
	healthuc "github.com/andrewcz-se/vector-rag/internal/usecase/health"
	queryuc "github.com/andrewcz-se/vector-rag/internal/usecase/query"
	"github.com/andrewcz-se/vector-rag/internal/usecase/retrieval"
	"github.com/andrewcz-se/vector-rag/internal/version"
)

// Retention of the persisted budget counters: a day window is read for one
// day, a month window for one month, both with slack for clock skew.
const (
	dailyBudgetTTL   = 48 * time.Hour
	monthlyBudgetTTL = 62 * 24 * time.Hour
)

type app struct {
	store   db.Store
	catalog *catalogUC.Service
	router  http.Handler
}

func (a *app) close() { a.store.Close() }

func (a *app) seed(ctx context.Context, path string) error {
	records, err := seed.Load(path)
	if err != nil {
		return fmt.Errorf("load seed data: %w", err)
	}
	if _, err := a.catalog.Seed(ctx, records); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}

func wire(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	store, err := openStore(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database")

	vec := cfg.Embedding.Vectorizer
	prov := cfg.Embedding.Providers[vec.Provider]
	provider := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     prov.APIKey,
		BaseURL:    prov.BaseURL,
		Model:      vec.Model,
		Dimensions: vec.Dimensions,
		Provider:   vec.Provider,
		Logger:     logger,
	})

	chain := embedderChain{
		provider: provider,
		name:     vec.Provider,
		model:    vec.Model,
		budget:   newBudget(ctx, vec.Provider, prov.Budget, store, logger),
		logger:   logger,
	}
	if cfg.Embedding.Cache {
		chain.cache = store
		chain.cacheTTL = cfg.Embedding.CacheTTL()
	}
	docEmbedder := chain.build(vec.DocumentInstruction)
	queryEmbedder := chain.build(vec.QueryInstruction)
	logger.Info("Embedders ready",
		zap.String("provider", vec.Provider),
		zap.String("model", vec.Model),
		zap.Int("dimensions", vec.Dimensions),
		zap.Bool("cache", cfg.Embedding.Cache),
		zap.Duration("cache_ttl", chain.cacheTTL),
		zap.Bool("budget", chain.budget != nil),
	)

	summarizer, err := gemini.NewSummarizer(ctx, &gemini.Config{
		APIKey:  cfg.Summarizer.APIKey,
		Model:   cfg.Summarizer.Model,
		BaseURL: cfg.Summarizer.BaseURL,
		Timeout: cfg.Summarizer.Timeout(),
		Logger:  logger,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("summarizer: %w", err)
	}
	if !summarizer.Configured() {
		logger.Warn("GEMINI_API_KEY is not set; summaries will report a configuration error")
	}

	collection := cfg.Retrieval.Collection
	businesses := businessrepo.New(store, collection).WithHNSW(businessrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	catalog := catalogUC.New(businesses, docEmbedder, vec.Dimensions).
		WithRebuild(cfg.Seed.Rebuild).
		WithPrune(cfg.Seed.Prune)

	vocab := cfg.Retrieval.Categories
	if len(vocab) == 0 {
		vocab = category.DefaultVocabulary
	}
	planner := retrieval.NewPlanner(category.New(vocab), cfg.Retrieval.TopK)
	answers := queryuc.New(planner, retrieval.New(searchrepo.New(store, collection), queryEmbedder), summarizer)
	health := healthuc.New(store, provider, summarizer).WithVersion(version.String())

	server := chiTransport.NewServer(catalog, answers, health, logger)
	router := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		AllowedOrigins: cfg.HTTP.CORSOrigins,
		Timeout:        time.Duration(cfg.HTTP.RequestTimeoutSec) * time.Second,
	})

	return &app{store: store, catalog: catalog, router: router}, nil
}

func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case "valkey":
		store, err = dbValkey.NewStore(dbValkey.Config{Addrs: cfg.Addrs, Username: cfg.Username, Password: cfg.Password})
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{Addrs: cfg.Addrs, Username: cfg.Username, Password: cfg.Password})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	return store, nil
}

// newBudget returns nil when neither limit is set. One budget is shared by
// the document and query embedders.
func newBudget(ctx context.Context, provider string, cfg config.BudgetConfig, store db.KVStore, logger *zap.Logger) embeddinguc.BudgetChecker {
	if cfg.DailyTokenLimit <= 0 && cfg.MonthlyTokenLimit <= 0 {
		return nil
	}
	limits := embeddinguc.Limits{
		Daily:   cfg.DailyTokenLimit,
		Monthly: cfg.MonthlyTokenLimit,
		Policy:  embeddinguc.PolicyWarn,
	}
	if cfg.Action == string(embeddinguc.PolicyReject) {
		limits.Policy = embeddinguc.PolicyReject
	}
	return embeddinguc.NewBudget(provider, limits, logger).
		Persist(ctx, budgetrepo.New(store, dailyBudgetTTL, monthlyBudgetTTL))
}

// embedderChain decorates the provider as provider -> cache -> metered -> instruction.
type embedderChain struct {
	provider domain.Embedder
	name     string
	model    string
	cache    db.KVStore
	cacheTTL time.Duration
	budget   embeddinguc.BudgetChecker
	logger   *zap.Logger
}

func (c embedderChain) build(instruction string) domain.Embedder {
	e := c.provider
	if c.cache != nil {
		e = embcache.New(e, c.cache, c.model, metrics.EmbeddingCacheTotal, c.logger).WithTTL(c.cacheTTL)
	}
	e = embeddinguc.NewMetered(e, c.name, c.model, c.budget, c.logger)
	// outermost, so cache keys cover the instructed text
	if instruction != "" {
		e = domain.WithInstruction(e, instruction)
	}
	return e
}
