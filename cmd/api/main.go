package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/healthconsult/telehealth-platform/internal/api/router"
	"github.com/healthconsult/telehealth-platform/internal/appointments"
	"github.com/healthconsult/telehealth-platform/internal/catalog"
	appconfig "github.com/healthconsult/telehealth-platform/internal/config"
	"github.com/healthconsult/telehealth-platform/internal/fees"
	"github.com/healthconsult/telehealth-platform/internal/intake"
	"github.com/healthconsult/telehealth-platform/internal/notify"
	obsmetrics "github.com/healthconsult/telehealth-platform/internal/observability/metrics"
	"github.com/healthconsult/telehealth-platform/internal/professionals"
	"github.com/healthconsult/telehealth-platform/internal/reporting"
	"github.com/healthconsult/telehealth-platform/pkg/logging"
)

func main() {
	// Load .env when present (local development)
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting telehealth-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"public_base_url", cfg.PublicBaseURL,
	)

	ctx := context.Background()

	// Postgres connection pool for the domain repositories
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// database/sql handle for the reporting queries
	sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sql db", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	redisClient := buildRedisClient(ctx, cfg, logger)

	metricsHandler, consultationMetrics := setupMetrics()

	// Repositories
	catalogRepo := catalog.NewPostgresRepository(pool)
	professionalsRepo := professionals.NewPostgresRepository(pool)
	feesRepo := fees.NewPostgresRepository(pool)
	intakeRepo := intake.NewPostgresRepository(pool)
	appointmentsRepo := appointments.NewPostgresRepository(pool)

	questionSource := catalog.NewQuestionCache(redisClient, catalogRepo, cfg.QuestionCacheTTL, logger)

	// Email notifications (stub sender when SendGrid is not configured)
	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	} else {
		emailSender = notify.NewStubEmailSender(logger)
	}
	notifier := notify.NewService(emailSender, professionalsRepo, logger)

	// Services
	feeDefaults := &defaultFeeSource{repo: professionalsRepo, fallback: cfg.DefaultConsultationFee}
	feesService := fees.NewService(feesRepo, feeDefaults, consultationMetrics, logger)
	intakeService := intake.NewService(intakeRepo, questionSource, professionalsRepo, appointmentsRepo, consultationMetrics, logger)
	appointmentsService := appointments.NewService(appointmentsRepo, feesService, professionalsRepo, intakeRepo, notifier, consultationMetrics, logger, cfg.MeetingBaseURL, cfg.PlatformFee)

	// Handlers
	catalogHandler := catalog.NewHandler(catalogRepo, logger)
	professionalsHandler := professionals.NewHandler(professionalsRepo, logger)
	feesHandler := fees.NewHandler(feesService, professionalsRepo, logger)
	intakeHandler := intake.NewHandler(intakeService, logger)
	appointmentsHandler := appointments.NewHandler(appointmentsService, professionalsRepo, logger)
	reportingHandler := reporting.NewHandler(sqlDB, professionalsRepo, cfg.PlatformFee, cfg.CommissionRate, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:               logger,
		CatalogHandler:       catalogHandler,
		ProfessionalsHandler: professionalsHandler,
		FeesHandler:          feesHandler,
		IntakeHandler:        intakeHandler,
		AppointmentsHandler:  appointmentsHandler,
		ReportingHandler:     reportingHandler,
		ChatHistoryHandler:   intakeHandler.ChatHistory(professionalsRepo),
		AdminAuthSecret:      cfg.AdminJWTSecret,
		MetricsHandler:       metricsHandler,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		RateLimitPerSecond:   50,
		RateLimitBurst:       100,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics builds an isolated registry and its scrape handler.
func setupMetrics() (http.Handler, *obsmetrics.ConsultationMetrics) {
	registry := prometheus.NewRegistry()
	m := obsmetrics.NewConsultationMetrics(registry)
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return handler, m
}

// buildRedisClient returns a verified Redis client or nil when disabled
// or unreachable. The question cache degrades to direct reads on nil.
func buildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// defaultFeeSource resolves a professional's base consultation fee,
// falling back to the configured platform default when the profile
// carries none.
type defaultFeeSource struct {
	repo     *professionals.PostgresRepository
	fallback int
}

func (f *defaultFeeSource) DefaultFee(ctx context.Context, professionalID string) (int, error) {
	fee, err := f.repo.DefaultFee(ctx, professionalID)
	if err != nil {
		return 0, err
	}
	if fee <= 0 {
		return f.fallback, nil
	}
	return fee, nil
}
