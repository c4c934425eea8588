package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/flowdash/flowdash/internal/adapter/http/handler"
	"github.com/flowdash/flowdash/internal/adapter/http/middleware"
	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/infrastructure/auth"
	"github.com/flowdash/flowdash/internal/infrastructure/metrics"
	"github.com/flowdash/flowdash/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler    *handler.AccountHandler
	LedgerHandler     *handler.LedgerHandler
	ClosingHandler    *handler.ClosingHandler
	FeeHandler        *handler.FeeHandler
	CommissionHandler *handler.CommissionHandler
	UserHandler       *handler.UserHandler
	HealthHandler     *handler.HealthHandler

	JWTManager  *auth.JWTManager
	AuthEnabled bool
	// Users resolves token subjects to their current record. Required when
	// AuthEnabled is true.
	Users middleware.UserSource

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	// RateLimit is requests per second per client IP; zero disables limiting.
	RateLimit float64
	RateBurst int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)

	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	if cfg.RateLimit > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.Metrics).Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", cfg.UserHandler.Login)

		r.Group(func(r chi.Router) {
			if cfg.AuthEnabled {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager, cfg.Users))
			} else {
				// With auth disabled every request acts as the system
				// administrator. Development convenience only.
				r.Use(middleware.StaticUser(&domain.User{
					ID:     "system",
					Email:  "system@flowdash.local",
					Role:   domain.RoleAdministrator,
					Active: true,
				}))
			}

			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
			}

			r.Get("/me", cfg.UserHandler.Me)

			// Accounts
			r.Route("/accounts", func(r chi.Router) {
				r.Post("/", cfg.AccountHandler.Create)
				r.Get("/", cfg.AccountHandler.List)
				r.Get("/{id}", cfg.AccountHandler.Get)
				r.Delete("/{id}", cfg.AccountHandler.Deactivate)
				r.Get("/{id}/transactions", cfg.LedgerHandler.ListByAccount)
				r.Get("/{id}/balance/history", cfg.AccountHandler.BalanceHistory)
				r.Get("/{id}/closings", cfg.ClosingHandler.ListByAccount)
				r.Get("/{id}/closings/status", cfg.ClosingHandler.Status)
				r.Get("/{id}/verification", cfg.ClosingHandler.VerifyAccount)
			})

			// Ledger
			r.Route("/transactions", func(r chi.Router) {
				r.Post("/entries", cfg.LedgerHandler.PostEntry)
				r.Post("/exits", cfg.LedgerHandler.PostExit)
				r.Post("/transfers", cfg.LedgerHandler.PostTransfer)
				r.Get("/", cfg.LedgerHandler.ListByBusinessDate)
				r.Get("/{id}", cfg.LedgerHandler.Get)
				r.Post("/{id}/reverse", cfg.LedgerHandler.Reverse)
			})

			// Daily closings
			r.Route("/closings", func(r chi.Router) {
				r.Post("/", cfg.ClosingHandler.Close)
				r.Post("/{id}/correction", cfg.ClosingHandler.ApproveCorrection)
			})

			r.Get("/verification", cfg.ClosingHandler.VerifyAll)

			// Fee schedule
			r.Route("/fees", func(r chi.Router) {
				r.Post("/", cfg.FeeHandler.Register)
				r.Get("/", cfg.FeeHandler.List)
				r.Get("/resolve", cfg.FeeHandler.Resolve)
				r.Delete("/{id}", cfg.FeeHandler.Delete)
			})

			// Goals and commissions
			r.Put("/goals", cfg.CommissionHandler.UpsertGoal)
			r.Get("/commissions/{sellerID}", cfg.CommissionHandler.Compute)

			// Users
			r.Route("/users", func(r chi.Router) {
				r.Post("/", cfg.UserHandler.Create)
				r.Get("/", cfg.UserHandler.List)
				r.Get("/{id}", cfg.UserHandler.Get)
				r.Patch("/{id}", cfg.UserHandler.Update)
			})
		})
	})

	return r
}
