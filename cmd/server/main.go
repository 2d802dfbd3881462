package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/istanbulinstitute/educrm-exam/internal/cache"
	"github.com/istanbulinstitute/educrm-exam/internal/config"
	"github.com/istanbulinstitute/educrm-exam/internal/database"
	"github.com/istanbulinstitute/educrm-exam/internal/handler"
	"github.com/istanbulinstitute/educrm-exam/internal/i18n"
	"github.com/istanbulinstitute/educrm-exam/internal/logger"
	"github.com/istanbulinstitute/educrm-exam/internal/middleware"
	"github.com/istanbulinstitute/educrm-exam/internal/notify"
	"github.com/istanbulinstitute/educrm-exam/internal/repository"
	"github.com/istanbulinstitute/educrm-exam/internal/router"
	"github.com/istanbulinstitute/educrm-exam/internal/service"
	"github.com/istanbulinstitute/educrm-exam/internal/validator"
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
		Str("locale", cfg.DefaultLocale).
		Msg("Starting EduCRM exam service")

	// ─── Initialize Validator & Translations ───────────────────────────
	validator.Setup()

	bundle, err := i18n.New(cfg.DefaultLocale)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load translations")
	}

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
	courseRepo := repository.NewCourseRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewExamResultRepository(pool)
	personRepo := repository.NewPersonRepository(pool)
	registrationRepo := repository.NewRegistrationRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo)

	owner, err := authService.ResolveSystemOwner(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("email", cfg.SystemOwnerEmail).Msg("System owner account is required; run create-admin first")
	}

	publicCache := cache.NewPublicExamCache(rdb, cfg.PublicExamCacheTTL)
	publisher := notify.NewResultPublisher(rdb)

	eligibility := service.NewEligibility(personRepo, registrationRepo, resultRepo)
	examService := service.NewExamService(
		examRepo, questionRepo, courseRepo, publicCache, eligibility,
		service.RandomCode(cfg.ExamCodeLength), cfg.ExamCodeMaxAttempts, log,
	)
	questionService := service.NewQuestionService(questionRepo, examRepo, publicCache, log)
	submissionService := service.NewSubmissionService(
		examRepo, questionRepo, personRepo, resultRepo, publisher, owner.ID,
		service.DeadlinePolicy{Enforce: cfg.EnforceSubmissionDeadline, Grace: cfg.SubmissionGrace},
		log,
	)
	resultService := service.NewResultService(resultRepo, examRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	health := map[string]handler.HealthCheck{
		"postgres": pool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}

	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Exam:       handler.NewExamHandler(examService),
		Question:   handler.NewQuestionHandler(questionService, cfg.MaxImportBytes),
		Result:     handler.NewResultHandler(resultService),
		PublicExam: handler.NewPublicExamHandler(examService, submissionService),
		WS:         handler.NewWSHandler(resultService, publisher, log, cfg.AllowedOrigins),
		System:     handler.NewSystemHandler(health, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	limiter := middleware.NewRateLimiter(cfg.PublicRateLimit, time.Minute)
	defer limiter.Stop()

	r := router.SetupRouter(authService, handlers, bundle, limiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Hijacked result streams are not tracked by Shutdown; they end with ctx.
	cancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
