package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"feedback-backend/internal/logger"
	customMiddleware "feedback-backend/internal/middleware"
)

// AuthService is what the router needs from authentication: logging in and
// resolving presented tokens.
type AuthService interface {
	Authenticator
	customMiddleware.SessionResolver
}

type RouterConfig struct {
	Logger      zerolog.Logger
	Feedback    FeedbackService
	Stats       StatsService
	Auth        AuthService
	Cookie      CookieOptions
	CORSOrigins []string
	Ping        func(ctx context.Context) error
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Timeout time.Duration
}

// NewRouter wires every route and the shared middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	feedbackHandler := NewFeedbackHandler(cfg.Feedback)
	statsHandler := NewStatsHandler(cfg.Stats)
	authHandler := NewAuthHandler(cfg.Auth, cfg.Cookie)
	pageHandler := NewPageHandler(cfg.Feedback, cfg.Stats)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(customMiddleware.Metrics)
	r.Use(middleware.Timeout(cfg.Timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(customMiddleware.Session(cfg.Auth, cfg.Cookie.Name))

	// Health check
	if cfg.Ping != nil {
		r.Get("/health", Health(cfg.Ping))
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	// Public routes (no session required)
	r.Post("/feedback", feedbackHandler.SubmitFeedback)
	r.Get("/feedback", feedbackHandler.ListFeedback)
	r.Get("/feedback/form", pageHandler.FeedbackForm)
	r.Post("/feedback/form", pageHandler.SubmitFeedbackForm)

	r.Post("/auth/login", authHandler.Login)
	r.Post("/auth/logout", authHandler.Logout)
	r.Get("/auth/session", authHandler.CurrentSession)

	// Protected routes (session required)
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.RequireSession)

		r.Get("/stats", statsHandler.GetStats)
	})

	// Admin pages
	r.Route("/admin", func(r chi.Router) {
		r.Use(customMiddleware.AdminGuard(LoginPath, DashboardPath))

		r.Get("/", pageHandler.AdminIndex)
		r.Get("/login", pageHandler.Login)
		r.Get("/dashboard", pageHandler.Dashboard)
	})

	return r
}
