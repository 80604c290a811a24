package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"feedback-backend/internal/auth"
	"feedback-backend/internal/config"
	"feedback-backend/internal/database"
	"feedback-backend/internal/handlers"
	"feedback-backend/internal/logger"
	"feedback-backend/internal/metrics"
	"feedback-backend/internal/notify"
	"feedback-backend/internal/repository"
	"feedback-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.AppEnv)

	if err := cfg.ValidateServer(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	db, err := database.Connect(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.Disconnect(shutdownCtx, db); err != nil {
			log.Error().Err(err).Msg("disconnect MongoDB")
		}
	}()

	// Initialize repositories
	feedbackRepo := repository.NewFeedbackRepo(db)
	adminRepo := repository.NewAdminRepo(db)

	// Ensure indexes
	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := feedbackRepo.EnsureIndexes(indexCtx); err != nil {
		log.Warn().Err(err).Msg("failed to create feedback indexes")
	}
	if err := adminRepo.EnsureIndexes(indexCtx); err != nil {
		log.Warn().Err(err).Msg("failed to create admin indexes")
	}
	cancel()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	// Initialize services
	authService := auth.NewService(adminRepo, auth.NewTokenManager(cfg.Session.Secret, cfg.Session.TTL))
	feedbackService := service.NewFeedbackService(feedbackRepo, newNotifier(cfg, log), log)
	statsService := service.NewStatsService(feedbackRepo, cfg.StatsIncludeDeleted)

	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:   log,
		Feedback: feedbackService,
		Stats:    statsService,
		Auth:     authService,
		Cookie: handlers.CookieOptions{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		},
		CORSOrigins: cfg.CORSOrigins,
		Ping:        func(ctx context.Context) error { return database.Ping(ctx, db) },
		Metrics:     promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("env", cfg.AppEnv).
			Dur("session_ttl", authService.TokenTTL()).
			Msg("feedback backend starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// newNotifier emails new feedback through Resend when it is configured and
// falls back to logging otherwise.
func newNotifier(cfg config.Config, log zerolog.Logger) notify.Notifier {
	if cfg.Notify.ResendAPIKey == "" {
		log.Warn().Msg("RESEND_API_KEY not set, feedback notifications go to the log")
		return notify.NewLogNotifier(log)
	}
	n, err := notify.NewResendNotifier(cfg.Notify.ResendAPIKey, cfg.Notify.FromEmail, cfg.Notify.Recipients)
	if err != nil {
		log.Warn().Err(err).Msg("resend notifier misconfigured, feedback notifications go to the log")
		return notify.NewLogNotifier(log)
	}
	return n
}
