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
	httpHandler "pyra-workspace/internal/adapter/http/handler"
	pgStorage "pyra-workspace/internal/adapter/storage/postgres"
	redisStorage "pyra-workspace/internal/adapter/storage/redis"
	s3Storage "pyra-workspace/internal/adapter/storage/s3"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/internal/service"
	"pyra-workspace/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Pyra Workspace API")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize S3 object store
	objectStore, err := s3Storage.NewObjectStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize object store")
	}

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	clientRepo := pgStorage.NewClientRepo(pool)
	projectRepo := pgStorage.NewProjectRepo(pool)
	docRepo := pgStorage.NewDocumentRepo(pool)
	fileRepo := pgStorage.NewFileRepo(pool)
	articleRepo := pgStorage.NewArticleRepo(pool)
	notificationRepo := pgStorage.NewNotificationRepo(pool)
	activityRepo := pgStorage.NewActivityRepo(pool)
	webhookRepo := pgStorage.NewWebhookRepo(pool)
	deliveryRepo := pgStorage.NewWebhookDeliveryRepo(pool)
	settingsRepo := pgStorage.NewSettingsRepo(pool)

	// Initialize Redis stores
	sessionStore := redisStorage.NewSessionStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	sequenceSvc := service.NewSequenceService(docRepo, settingsRepo,
		cfg.Sequence.QuotePrefix, cfg.Sequence.InvoicePrefix, log)

	// Initialize business services
	activitySvc := service.NewActivityService(activityRepo, log)
	webhookSvc := service.NewWebhookService(webhookRepo, deliveryRepo, sigSvc, activitySvc,
		&http.Client{Timeout: cfg.Webhook.Timeout}, cfg.Webhook.Timeout, cfg.Webhook.MaxAttempts, log)
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc, sessionStore, cfg.JWT.Expiry)
	billingSvc := service.NewBillingService(docRepo, sequenceSvc, webhookSvc, activitySvc, log)
	projectSvc := service.NewProjectService(projectRepo, clientRepo, webhookSvc, activitySvc)
	clientSvc := service.NewClientService(clientRepo, activitySvc)
	articleSvc := service.NewArticleService(articleRepo, webhookSvc, activitySvc)
	notificationSvc := service.NewNotificationService(notificationRepo)
	fileSvc := service.NewFileService(fileRepo, objectStore, webhookSvc, activitySvc, log)
	settingsSvc := service.NewSettingsService(settingsRepo, activitySvc)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:         authSvc,
		ClientSvc:       clientSvc,
		ProjectSvc:      projectSvc,
		BillingSvc:      billingSvc,
		FileSvc:         fileSvc,
		ArticleSvc:      articleSvc,
		NotificationSvc: notificationSvc,
		ActivitySvc:     activitySvc,
		SettingsSvc:     settingsSvc,
		WebhookSvc:      webhookSvc,
		TokenSvc:        tokenSvc,
		Sessions:        sessionStore,
		UserRepo:        userRepo,
		RateLimiter:     rateLimitStore,
		HealthCheckers:  []ports.HealthChecker{pgHealth, redisHealth},
		Logger:          log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
