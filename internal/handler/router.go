package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	chatHandler "github.com/dpetrov/infracopilot/backend/internal/handler/chat"
	"github.com/dpetrov/infracopilot/backend/internal/handler/dashboard"
	healthHandler "github.com/dpetrov/infracopilot/backend/internal/handler/health"
	metricsHandler "github.com/dpetrov/infracopilot/backend/internal/handler/metrics"
	aiService "github.com/dpetrov/infracopilot/backend/internal/service/ai"
	"github.com/dpetrov/infracopilot/backend/internal/service/chatops"
	healthService "github.com/dpetrov/infracopilot/backend/internal/service/health"
	metricsService "github.com/dpetrov/infracopilot/backend/internal/service/metrics"
	"github.com/dpetrov/infracopilot/backend/pkg/utils"
)

const healthStreamInterval = 15 * time.Second

// Deps bundles what the router needs. ChatOps is nil when model credentials
// are missing; the chat endpoints then answer with a descriptive error.
type Deps struct {
	Aggregator     *healthService.Aggregator
	Metrics        *metricsService.Service
	ChatOps        *chatops.Service
	Models         *aiService.ModelLister
	AllowedOrigins []string
	StaticDir      string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", healthHandler.Liveness)

	r.Route("/api", func(api chi.Router) {
		healthHandler.New(deps.Aggregator).RegisterRoutes(api)
		metricsHandler.New(deps.Metrics).RegisterRoutes(api)
		chatHandler.New(deps.ChatOps, deps.Models).RegisterRoutes(api)

		api.Get("/stream/health", func(w http.ResponseWriter, r *http.Request) {
			handleHealthStream(w, r, deps.Aggregator)
		})

		dashboardHandler := dashboard.New(deps.Aggregator, deps.AllowedOrigins)
		api.Get("/ws/dashboard", dashboardHandler.HandleFeed)
	})

	registerStatic(r, deps.StaticDir)

	return r
}

// handleHealthStream pushes the aggregated summary over SSE for dashboard
// consumers that cannot hold a websocket.
func handleHealthStream(w http.ResponseWriter, r *http.Request, aggregator *healthService.Aggregator) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)

	ctx := r.Context()
	ticker := time.NewTicker(healthStreamInterval)
	defer ticker.Stop()

	send := func() {
		snapshot := aggregator.Aggregate(ctx)
		utils.SendSSEChunk(w, flusher, map[string]any{
			"event":     "health",
			"timestamp": snapshot.Timestamp.Format(time.RFC3339),
			"summary":   snapshot.Summary,
			"warnings":  snapshot.Warnings,
		})
	}

	send()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			send()
		}
	}
}

// registerStatic serves the dashboard UI when the static directory exists.
func registerStatic(r chi.Router, dir string) {
	index := filepath.Join(dir, "index.html")

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		if _, err := os.Stat(index); err != nil {
			utils.RespondError(w, http.StatusNotFound, "UI not available: static directory missing")
			return
		}
		http.ServeFile(w, req, index)
	})

	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(dir)))
		r.Get("/static/*", fileServer.ServeHTTP)
	}
}
