package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-estimator/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-estimator/internal/adapters/driven/memory"
	"github.com/custodia-labs/sercha-estimator/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/sercha-estimator/internal/adapters/driven/redis"
	"github.com/custodia-labs/sercha-estimator/internal/config"
	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-estimator/internal/core/services"
	"github.com/custodia-labs/sercha-estimator/internal/extractors"
	"github.com/custodia-labs/sercha-estimator/internal/postprocessors"
	"github.com/custodia-labs/sercha-estimator/internal/runtime"
)

// app holds the wired services of one process
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	runtime  *runtime.Services
	docs     *services.DocumentStore
	index    *services.ContextIndex
	estimate driving.EstimateService
	chat     driving.ChatService
	status   driving.StatusService
}

// loadConfig reads configuration and installs the process logger
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger := config.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// newApp runs the startup phase: connect backends, create AI services,
// load documents and, when buildIndex is set, build the context index.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, buildIndex bool) (*app, error) {
	rt := runtime.NewServices(domain.NewRuntimeConfig(cfg.Storage.VectorBackend))
	a := &app{cfg: cfg, logger: logger, runtime: rt}

	if err := a.connectAI(ctx); err != nil {
		rt.Close()
		return nil, err
	}

	store := a.connectStorage(ctx)

	files := extractors.DefaultRegistry()
	a.docs = services.NewDocumentStore(os.DirFS(cfg.Documents.DataDir), files, services.DocumentStoreConfig{
		Files:            cfg.Documents.Files,
		PrimaryReference: cfg.Documents.PrimaryReference,
		ExamplesDocument: cfg.Documents.ExamplesDocument,
		Logger:           logger,
	})
	if _, err := a.docs.Load(ctx); err != nil {
		rt.Close()
		return nil, fmt.Errorf("load documents: %w", err)
	}
	logger.Info("reference documents loaded",
		"dir", cfg.Documents.DataDir,
		"documents", a.docs.Len(),
		"primary_reference", a.docs.PrimaryReference() != "")

	a.index = services.NewContextIndex(store, rt, services.ContextIndexConfig{
		Pipeline: postprocessors.PassagePipeline(postprocessors.ChunkConfig{
			MaxChunkSize:       cfg.Index.PassageSize,
			Overlap:            cfg.Index.PassageOverlap,
			PreserveSentences:  true,
			PreserveParagraphs: true,
		}),
		BatchSize:   cfg.Index.BatchSize,
		Concurrency: cfg.Index.Concurrency,
		Logger:      logger,
	})
	if buildIndex && cfg.Index.Enabled && rt.EmbeddingService() != nil {
		// Build failures leave the index unavailable; keyword scoring takes over
		_ = a.index.Build(ctx, a.docs.All())
	}

	aggregator := services.NewContextAggregator(a.docs, a.index, logger)
	extractor := services.NewExtractor(rt, aggregator, a.docs, logger)
	narrative := services.NewNarrativeGenerator(rt, aggregator, a.docs, logger)
	a.estimate = services.NewEstimateService(
		extractor,
		services.NewReconciler(cfg.Estimate.BufferPercentage),
		narrative,
		files,
		a.docs,
		services.EstimateServiceConfig{DefaultHourlyRate: cfg.Estimate.DefaultHourlyRate, Logger: logger},
	)
	a.chat = services.NewChatService(rt, aggregator, a.docs, a.estimate, logger)
	a.status = services.NewStatusService(version, rt, a.docs, a.index)

	cfgRT := rt.Config()
	logger.Info("runtime config",
		"vector_backend", cfgRT.VectorBackend,
		"llm", cfgRT.LLMAvailable(),
		"embedding", cfgRT.EmbeddingAvailable(),
		"index", cfgRT.IndexAvailable())
	return a, nil
}

// connectAI creates the LLM and embedding services. An unconfigured or
// unreachable provider leaves that capability off.
func (a *app) connectAI(ctx context.Context) error {
	factory := ai.NewFactory()

	llm, err := factory.CreateLLMService(ctx, &a.cfg.LLM)
	if err != nil {
		return fmt.Errorf("create llm service: %w", err)
	}
	if llm == nil {
		a.logger.Warn("no language model configured, using fallback estimates", "provider", a.cfg.LLM.Provider)
	} else {
		a.runtime.SetLLMService(llm)
		a.logger.Info("language model configured", "provider", a.cfg.LLM.Provider, "model", llm.Model())
	}

	embedder, err := factory.CreateEmbeddingService(ctx, &a.cfg.Embedding)
	if err != nil {
		return fmt.Errorf("create embedding service: %w", err)
	}
	if embedder == nil {
		return nil
	}
	if err := a.runtime.ValidateAndSetEmbedding(ctx, embedder); err != nil {
		a.logger.Warn("embedding service unavailable, keyword context only", "provider", a.cfg.Embedding.Provider, "error", err)
	}
	return nil
}

// connectStorage picks the vector store and the optional cache and lock.
// Redis provides both the embedding cache and the rebuild lock; without it
// a postgres backend uses advisory locks. An unreachable backend is logged
// and skipped: redis leaves the cache and lock off, postgres falls back to
// the in-memory store.
func (a *app) connectStorage(ctx context.Context) driven.VectorStore {
	redisClient := a.connectRedis(ctx)
	if redisClient != nil {
		a.runtime.AddCloser("redis", redisClient)
		a.runtime.SetEmbeddingCache(redisadapter.NewEmbeddingCache(redisClient, a.cfg.Storage.EmbeddingCacheTTL))
		a.runtime.SetLock(redisadapter.NewLock(redisClient))
		a.logger.Info("redis connected, embedding cache and rebuild lock enabled")
	}

	if a.cfg.Storage.VectorBackend != domain.VectorBackendPostgres {
		return memory.NewVectorStore()
	}

	db, err := a.connectPostgres(ctx)
	if err != nil {
		a.logger.Warn("postgres unavailable, using in-memory vector store", "error", err)
		a.runtime.Config().VectorBackend = domain.VectorBackendMemory
		return memory.NewVectorStore()
	}
	a.runtime.AddCloser("postgres", db)
	if redisClient == nil {
		a.runtime.SetLock(postgres.NewAdvisoryLock(db))
	}
	a.logger.Info("postgres vector store connected")
	return postgres.NewVectorStore(db)
}

// connectRedis returns a live client, or nil when redis is not configured
// or cannot be reached
func (a *app) connectRedis(ctx context.Context) *redis.Client {
	if a.cfg.Storage.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(a.cfg.Storage.RedisURL)
	if err != nil {
		a.logger.Warn("invalid redis url, embedding cache and rebuild lock disabled", "error", err)
		return nil
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		a.logger.Warn("redis unavailable, embedding cache and rebuild lock disabled", "error", err)
		return nil
	}
	return client
}

func (a *app) connectPostgres(ctx context.Context) (*postgres.DB, error) {
	db, err := postgres.Connect(ctx, postgres.DefaultConfig(a.cfg.Storage.DatabaseURL))
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return db, nil
}

// Close releases every backend connection
func (a *app) Close() error {
	return a.runtime.Close()
}
