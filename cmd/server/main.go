package main

import (
	"fmt"
	"os"

	"adsync/internal/delivery"
	"adsync/internal/infrastructure"
	"adsync/internal/usecase"
	"adsync/pkg/config"
	"adsync/pkg/logger"
	"adsync/pkg/metrics"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	m := metrics.New()

	tokens := infrastructure.NewTokenProvider(cfg.Upstream.TokenURL, cfg.Sync.RequestTimeout, log, m)
	api := infrastructure.NewAdsClient(cfg.Upstream.APIBaseURL, cfg.Sync.RequestTimeout, cfg.Sync.RateLimitPerSecond, log, m)
	results := infrastructure.NewResultRepository(log)

	orchestrator := usecase.NewOrchestrator(api, log, m, cfg.Sync.SubmitDelay)
	poller := usecase.NewPoller(api, log, m, cfg.Sync.PollInterval, cfg.Sync.MaxPollIterations)
	syncService := usecase.NewSyncService(
		tokens, api, results, orchestrator, poller,
		log, m, cfg.Sync.Deadline, cfg.Sync.DefaultDaysBack,
	)
	resultService := usecase.NewResultService(results, log)

	handlers := delivery.NewHTTPHandlers(syncService, resultService, log, m)
	router := delivery.NewHTTPRouter(handlers, log, m, cfg.Server.RequestTimeout)

	log.WithField("port", cfg.Server.Port).Info("Starting server")
	if err := router.SetupRoutes().Run(":" + cfg.Server.Port); err != nil {
		log.WithError(err).Fatal("Server exited")
	}
}
