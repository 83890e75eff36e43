package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/presswire-ai/presswire/internal/agents"
	"github.com/presswire-ai/presswire/internal/api"
	"github.com/presswire-ai/presswire/internal/cache"
	"github.com/presswire-ai/presswire/internal/comments"
	"github.com/presswire-ai/presswire/internal/config"
	"github.com/presswire-ai/presswire/internal/database"
	"github.com/presswire-ai/presswire/internal/embedding"
	"github.com/presswire-ai/presswire/internal/eval"
	"github.com/presswire-ai/presswire/internal/events"
	"github.com/presswire-ai/presswire/internal/llm"
	"github.com/presswire-ai/presswire/internal/mailer"
	"github.com/presswire-ai/presswire/internal/memory"
	"github.com/presswire-ai/presswire/internal/middleware"
	"github.com/presswire-ai/presswire/internal/profiles"
	"github.com/presswire-ai/presswire/internal/rag"
	iredis "github.com/presswire-ai/presswire/internal/redis"
	"github.com/presswire-ai/presswire/internal/search"
	"github.com/presswire-ai/presswire/internal/server"
	"github.com/presswire-ai/presswire/internal/vectorstore"
	"github.com/presswire-ai/presswire/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS events (constructs disabled when not configured)
	publisher, err := events.NewPublisher(ctx, cfg.NATS)
	if err != nil {
		slog.Error("connecting to NATS", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	// LLM and embeddings. A missing Voyage key leaves store nil, which
	// constructs memory and RAG disabled.
	llmClient := llm.NewAnthropic(cfg.LLM)
	var store vectorstore.Store
	if cfg.Embedding.APIKey != "" {
		embedder := embedding.NewVoyageClient(cfg.Embedding.APIKey, cfg.Embedding.Model)
		store = vectorstore.NewPostgresStore(pool, embedder)
	}

	// Subsystems
	memoryMgr := memory.NewManager(cfg.Memory, store)
	augmenter := rag.NewAugmenter(cfg.RAG, store)
	evaluator := eval.NewEvaluator(cfg.Evaluation, llmClient)

	// Profiles
	profileRepo := profiles.NewPostgresRepository(pool)
	profileMgr := profiles.NewManager(ctx, cfg.Profiles, profileRepo)

	// Agents
	searchCache := cache.New(redisClient, cfg.Cache.Enabled)
	searchClient := search.NewSerperClient(cfg.Search, searchCache)
	mediaResearcher := agents.NewMediaResearcher(llmClient, searchClient)
	dataResearcher := agents.NewDataResearcher(llmClient, searchClient)
	drafter := agents.NewDrafter(llmClient, cfg.LLM.Temperature)
	humanizer := agents.NewHumanizer(llmClient, cfg.LLM.HumanizerTemperature)

	// Workflow engine
	engine := workflow.NewEngine(workflow.Deps{
		Profiles:  profileMgr,
		Memory:    memoryMgr,
		RAG:       augmenter,
		Media:     mediaResearcher,
		Data:      dataResearcher,
		Drafter:   drafter,
		Humanizer: humanizer,
		Evaluator: evaluator,
		Mailer:    mailer.New(cfg.Email),
		Events:    publisher,
	})

	// HTTP
	handler := comments.NewHandler(engine, memoryMgr, augmenter, evaluator, profileMgr, profileRepo)
	limiter := middleware.NewRateLimiter(redisClient, 10, 60)

	router := api.NewRouter(pool, api.RouterConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		GenerateLimiter:    limiter.Middleware,
	}, api.HandlerSet{
		GenerateComment: handler.Generate,
		EvaluateBatch:   handler.EvaluateBatch,
		MemoryStats:     handler.MemoryStats,
		RAGStats:        handler.RAGStats,
		SessionHistory:  handler.SessionHistory,
		ClearSession:    handler.ClearSession,
		StoreKnowledge:  handler.StoreKnowledge,
		StoreExample:    handler.StoreExample,
		ListProfiles:    handler.ListProfiles,
		UpsertProfile:   handler.UpsertProfile,
		EventsHealthy:   publisher.Healthy,
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
