package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pyra-workspace/config"
	pgStorage "pyra-workspace/internal/adapter/storage/postgres"
	"pyra-workspace/internal/service"
	"pyra-workspace/pkg/logger"
)

const sweepInterval = 30 * time.Second

// The worker owns the webhook retry sweep: every tick it redelivers due
// retrying deliveries. The API exposes the same sweep at
// POST /admin/webhooks/retries/run for manual operation.
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Msg("Starting Pyra Workspace worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	webhookRepo := pgStorage.NewWebhookRepo(pool)
	deliveryRepo := pgStorage.NewWebhookDeliveryRepo(pool)
	activityRepo := pgStorage.NewActivityRepo(pool)

	sigSvc := service.NewHMACSignatureService()
	activitySvc := service.NewActivityService(activityRepo, log)
	webhookSvc := service.NewWebhookService(webhookRepo, deliveryRepo, sigSvc, activitySvc,
		&http.Client{Timeout: cfg.Webhook.Timeout}, cfg.Webhook.Timeout, cfg.Webhook.MaxAttempts, log)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Dur("interval", sweepInterval).Msg("Retry sweep running")

	for {
		select {
		case <-ticker.C:
			attempted, err := webhookSvc.ProcessRetries(ctx)
			if err != nil {
				log.Error().Err(err).Msg("retry sweep failed")
				continue
			}
			if attempted > 0 {
				log.Info().Int("attempted", attempted).Msg("retry sweep completed")
			}
		case <-quit:
			log.Info().Msg("Worker shutting down")
			cancel()
			return
		}
	}
}
