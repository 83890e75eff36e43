package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/presswire-ai/presswire/internal/database"
	mw "github.com/presswire-ai/presswire/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	GenerateComment http.HandlerFunc
	EvaluateBatch   http.HandlerFunc
	MemoryStats     http.HandlerFunc
	RAGStats        http.HandlerFunc
	SessionHistory  http.HandlerFunc
	ClearSession    http.HandlerFunc
	StoreKnowledge  http.HandlerFunc
	StoreExample    http.HandlerFunc
	ListProfiles    http.HandlerFunc
	UpsertProfile   http.HandlerFunc

	// EventsHealthy reports NATS connectivity for readiness.
	EventsHealthy func() bool
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	GenerateLimiter    func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe: always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe: checks DB and NATS
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"nats":     "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if h.EventsHealthy != nil {
			if !h.EventsHealthy() {
				health["nats"] = "unhealthy"
				health["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		} else {
			health["nats"] = "not configured"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/v1", func(r chi.Router) {
		// Generation fans out into several LLM calls per request, so it
		// gets its own rate limit.
		r.Group(func(r chi.Router) {
			if cfg.GenerateLimiter != nil {
				r.Use(cfg.GenerateLimiter)
			}
			r.Post("/comments", h.GenerateComment)
		})

		r.Post("/evaluations", h.EvaluateBatch)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/history", h.SessionHistory)
			r.Delete("/", h.ClearSession)
		})

		r.Get("/memory/stats", h.MemoryStats)

		r.Route("/rag", func(r chi.Router) {
			r.Get("/stats", h.RAGStats)
			r.Post("/knowledge", h.StoreKnowledge)
			r.Post("/examples", h.StoreExample)
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", h.ListProfiles)
			r.Post("/", h.UpsertProfile)
		})
	})

	return r
}
