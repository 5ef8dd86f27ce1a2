package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/joho/godotenv"

	"github.com/dpetrov/infracopilot/backend/internal/config"
	"github.com/dpetrov/infracopilot/backend/internal/handler"
	"github.com/dpetrov/infracopilot/backend/internal/model/endpoint"
	aiService "github.com/dpetrov/infracopilot/backend/internal/service/ai"
	"github.com/dpetrov/infracopilot/backend/internal/service/chatops"
	healthService "github.com/dpetrov/infracopilot/backend/internal/service/health"
	metricsService "github.com/dpetrov/infracopilot/backend/internal/service/metrics"
	"github.com/dpetrov/infracopilot/backend/internal/service/planner"
	"github.com/dpetrov/infracopilot/backend/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Cloud credential singleton, built once and injected.
	var azureCred azcore.TokenCredential
	if cfg.Azure.Configured() {
		azureCred, err = azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			log.Printf("warning: failed to initialize Azure credential: %v", err)
			log.Println("Azure checks will report auth_failed until credentials are available")
		} else {
			log.Println("Azure credential initialized")
		}
	} else {
		log.Println("Azure identifiers not configured, cloud checks disabled")
	}

	endpointStore := endpoint.NewMemoryStore(cfg.Endpoints.Entries)

	aggregator := healthService.NewAggregator(
		healthService.NewLocalCollector(cfg.Local),
		healthService.NewAzureCollector(cfg.Azure, azureCred),
		healthService.NewProber(endpointStore, cfg.Endpoints.Timeout),
	)
	metricsSvc := metricsService.NewService()
	sessions := session.NewStore(cfg.Session.TTL, cfg.Session.MaxTurns)

	// Model-backed services; chat stays disabled without credentials.
	var chatOps *chatops.Service
	if cfg.AI.Enabled() {
		chatOps, err = buildChatOps(ctx, cfg, sessions, aggregator, metricsSvc)
		if err != nil {
			log.Printf("warning: failed to initialize model services: %v", err)
			log.Println("continuing without chat functionality")
		} else {
			log.Println("model services initialized")
		}
	} else {
		log.Println("model credentials not configured, chat endpoints disabled")
	}

	router := handler.NewRouter(handler.Deps{
		Aggregator:     aggregator,
		Metrics:        metricsSvc,
		ChatOps:        chatOps,
		Models:         aiService.NewModelLister(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		StaticDir:      cfg.Server.StaticDir,
	})

	startServer(ctx, cfg.Server, router)
}

func buildChatOps(
	ctx context.Context,
	cfg *config.Config,
	sessions *session.Store,
	aggregator *healthService.Aggregator,
	metricsSvc *metricsService.Service,
) (*chatops.Service, error) {
	composerModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		return nil, err
	}
	plannerModel, err := cfg.AI.NewPlannerModel(ctx)
	if err != nil {
		return nil, err
	}

	generator, err := aiService.NewService(ctx, composerModel, cfg.AI.Model)
	if err != nil {
		return nil, err
	}

	return chatops.NewService(sessions, planner.New(plannerModel), generator, aggregator, metricsSvc), nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("InfraCopilot Lite backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
