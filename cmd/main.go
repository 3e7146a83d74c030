package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	ollama "hermes/internal/adapters/assistant"
	"hermes/internal/adapters/config"
	"hermes/internal/adapters/errors/noop"
	"hermes/internal/adapters/errors/sentry"
	guardian "hermes/internal/adapters/news"
	"hermes/internal/adapters/quotes"
	"hermes/internal/api"
	"hermes/internal/api/dashboard"
	"hermes/internal/api/health"
	"hermes/internal/domain/market"
	domainnews "hermes/internal/domain/news"
	"hermes/internal/metrics"
	approvalservice "hermes/internal/services/approval"
	"hermes/internal/services/assistant"
	newsservice "hermes/internal/services/news"
	quoteservice "hermes/internal/services/quotes"
	"hermes/internal/workers"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := initLogger(cfg); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Register metrics
	metrics.Init()

	// Shared state: one store per collection, services are the only writers
	quoteStore := market.NewStore()
	newsStore := domainnews.NewStore()

	// Services
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	quoteSvc := initQuoteService(cfg, quoteStore, rng, log)
	newsSvc := initNewsService(cfg, newsStore, rng)
	engine := ollama.NewClient(
		cfg.Assistant.BaseURL,
		cfg.Assistant.Model,
		cfg.Assistant.Temperature,
		cfg.Assistant.MaxTokens,
		cfg.Assistant.RequestTimeout,
		cfg.Assistant.HealthTimeout,
	)
	assistantSvc := assistant.NewService(engine, quoteStore, newsStore)
	approvalSvc := approvalservice.NewService(cfg.Approval.ManagerName, cfg.Approval.ManagerTitle)

	log.Info("System initialized successfully")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background refresh workers
	scheduler := initWorkers(cfg, quoteSvc, newsSvc)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	// Probe the inference endpoint once at boot so the UI shows a state
	// before the first chat message
	assistantSvc.CheckStatus(ctx)

	// HTTP server
	server := initServer(cfg, engine, quoteStore, newsStore, assistantSvc, approvalSvc, log)
	go func() {
		if err := server.Start(); err != nil {
			log.Errorf("HTTP server error: %v", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	waitForShutdown(ctx, cancel, server, scheduler, assistantSvc, errorTracker, cfg.Server.ShutdownTimeout, log)
}

// loadConfig loads application configuration from environment
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// initLogger initializes structured logging
func initLogger(cfg *config.Config) error {
	return logger.Init(cfg.App.LogLevel, cfg.App.Env)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initQuoteService wires the provider fallback chain into the fetch service
func initQuoteService(cfg *config.Config, store *market.Store, rng *rand.Rand, log *logger.Logger) *quoteservice.Service {
	providers := []quotes.Provider{
		quotes.NewYahooProvider(cfg.Quotes.YahooRelayURL, cfg.Quotes.YahooChartURL, cfg.Quotes.RequestTimeout),
		quotes.NewAlphaVantageProvider(cfg.Quotes.AlphaVantageURL, cfg.Quotes.AlphaVantageKey, cfg.Quotes.RequestTimeout),
		quotes.NewFMPProvider(cfg.Quotes.FMPBaseURL, cfg.Quotes.FMPKey, cfg.Quotes.RequestTimeout),
	}

	validator := market.NewValidator(cfg.Quotes.MaxPrice, cfg.Quotes.MaxChangeRatio)
	chain := quotes.NewChain(providers, validator, cfg.Quotes.RequestDelay)

	log.Infow("Quote chain configured",
		"providers", len(providers),
		"symbols", cfg.Quotes.Symbols,
		"delay", cfg.Quotes.RequestDelay,
	)

	return quoteservice.NewService(chain, store, cfg.Quotes.Symbols, rng)
}

// initNewsService wires the news search client into the classify-and-publish service
func initNewsService(cfg *config.Config, store *domainnews.Store, rng *rand.Rand) *newsservice.Service {
	client := guardian.NewClient(cfg.News.BaseURL, cfg.News.APIKey, cfg.News.RequestTimeout)

	return newsservice.NewService(client, store, newsservice.Config{
		Query:     cfg.News.Query,
		Section:   cfg.News.Section,
		MaxItems:  cfg.News.MaxItems,
		MaxAge:    cfg.News.MaxAge,
		MaxFuture: cfg.News.MaxFutureAge,
	}, rng)
}

// initWorkers registers the background refresh workers with the scheduler
func initWorkers(cfg *config.Config, quoteSvc *quoteservice.Service, newsSvc *newsservice.Service) *workers.Scheduler {
	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewQuoteRefresher(quoteSvc, cfg.Workers.QuoteRefreshInterval, cfg.Workers.QuoteRefreshEnabled))
	scheduler.RegisterWorker(workers.NewNewsRefresher(newsSvc, cfg.Workers.NewsRefreshInterval, cfg.Workers.NewsRefreshEnabled))
	return scheduler
}

// initServer assembles the HTTP surface: probes, metrics, dashboard API
func initServer(
	cfg *config.Config,
	engine *ollama.Client,
	quoteStore *market.Store,
	newsStore *domainnews.Store,
	assistantSvc *assistant.Service,
	approvalSvc *approvalservice.Service,
	log *logger.Logger,
) *api.Server {
	// A snapshot older than a few refresh intervals means the workers
	// have stopped making progress
	maxStale := 3 * cfg.Workers.NewsRefreshInterval

	healthHandler := health.New(log, engine, quoteStore, newsStore, maxStale, cfg.App.Name, cfg.App.Version)
	dashboardHandler := dashboard.New(quoteStore, newsStore, assistantSvc, approvalSvc)

	return api.NewServer(api.ServerConfig{
		Port:        cfg.Server.Port,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	}, healthHandler, dashboardHandler, log)
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	server *api.Server,
	scheduler *workers.Scheduler,
	assistantSvc *assistant.Service,
	errorTracker errors.Tracker,
	timeout time.Duration,
	log *logger.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Info("Shutting down...")

	// Stop accepting requests, cut any in-flight inference call, then
	// drain the workers
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP shutdown: %v", err)
	}

	assistantSvc.Abort()
	cancel()

	if err := scheduler.Stop(); err != nil {
		log.Warnf("Worker shutdown: %v", err)
	}

	// Flush error tracker
	if errorTracker != nil {
		if err := errorTracker.Flush(shutdownCtx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
