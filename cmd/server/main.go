package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/notsocj/SmartExam/internal/config"
	"github.com/notsocj/SmartExam/internal/database"
	"github.com/notsocj/SmartExam/internal/handler"
	"github.com/notsocj/SmartExam/internal/logger"
	"github.com/notsocj/SmartExam/internal/repository"
	"github.com/notsocj/SmartExam/internal/router"
	"github.com/notsocj/SmartExam/internal/service"
	"github.com/notsocj/SmartExam/internal/session"
	"github.com/notsocj/SmartExam/internal/validator"
	"github.com/notsocj/SmartExam/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting SmartExam Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	resourceRepo := repository.NewResourceRepository(pool)
	progressRepo := repository.NewProgressRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	attemptStore := session.NewRedisStore(rdb, cfg.AttemptTTL)
	auditor := service.NewQueueAuditor(rdb, log)
	proctorService := service.NewProctorService(rdb, log)

	authService := service.NewAuthService(cfg, userRepo, attemptStore, rdb)
	testService := service.NewTestService(testRepo, questionRepo)
	attemptService := service.NewAttemptService(testRepo, questionRepo, resultRepo, attemptStore, auditor, proctorService, log)
	resultService := service.NewResultService(resultRepo, userRepo, testRepo)
	resourceService := service.NewResourceService(cfg, resourceRepo, progressRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, userRepo),
		Test:      handler.NewTestHandler(testService),
		Portal:    handler.NewPortalHandler(testService, attemptService),
		Telemetry: handler.NewTelemetryHandler(attemptService),
		Result:    handler.NewResultHandler(resultService),
		Resource:  handler.NewResourceHandler(resourceService),
		Monitor:   handler.NewMonitorHandler(testService, proctorService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	auditWorker := worker.NewAuditWorker(pool, rdb, log)
	go auditWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, attemptService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the audit worker and let it flush its buffer.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
