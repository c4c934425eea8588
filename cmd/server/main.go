package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/flowdash/flowdash/internal/adapter/http"
	"github.com/flowdash/flowdash/internal/adapter/http/handler"
	postgresRepo "github.com/flowdash/flowdash/internal/adapter/repository/postgres"
	redisRepo "github.com/flowdash/flowdash/internal/adapter/repository/redis"
	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/infrastructure/auth"
	"github.com/flowdash/flowdash/internal/infrastructure/config"
	"github.com/flowdash/flowdash/internal/infrastructure/eventpublisher"
	"github.com/flowdash/flowdash/internal/infrastructure/logger"
	"github.com/flowdash/flowdash/internal/infrastructure/metrics"
	"github.com/flowdash/flowdash/internal/infrastructure/postgres"
	"github.com/flowdash/flowdash/internal/infrastructure/redis"
	"github.com/flowdash/flowdash/internal/usecase"
)

const migrationsPath = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if cfg.AuthEnabled && cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required when AUTH_ENABLED is set")
	}

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("migrations applied")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	appMetrics := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	closingRepo := postgresRepo.NewClosingRepository(pool)
	feeRuleRepo := postgresRepo.NewFeeRuleRepository(pool)
	goalRepo := postgresRepo.NewGoalRepository(pool)
	balanceAuditRepo := postgresRepo.NewBalanceAuditRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Initialize use cases
	balances := usecase.NewBalanceStore(accountRepo, balanceAuditRepo, idGen)
	feeUC := usecase.NewFeeUseCase(feeRuleRepo, cache, idGen, cfg.FeeCacheTTL)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, balanceAuditRepo, outboxRepo, auditRepo, idGen, appMetrics)
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, txnRepo, closingRepo, outboxRepo, auditRepo, balances, feeUC, idGen, retrier, cfg.FeeOnExits, appMetrics)
	closingUC := usecase.NewClosingUseCase(txManager, accountRepo, txnRepo, closingRepo, auditRepo, balanceAuditRepo, outboxRepo, balances, idGen, retrier, cfg.ClosingTolerance, appMetrics)
	commissionUC := usecase.NewCommissionUseCase(goalRepo, txnRepo, appMetrics)
	userUC := usecase.NewUserUseCase(userRepo, auditRepo, idGen, appMetrics)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	bootstrapAdmin(ctx, cfg, userUC)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountUC)
	ledgerHandler := handler.NewLedgerHandler(ledgerUC)
	closingHandler := handler.NewClosingHandler(closingUC)
	feeHandler := handler.NewFeeHandler(feeUC)
	commissionHandler := handler.NewCommissionHandler(commissionUC)
	userHandler := handler.NewUserHandler(userUC, jwtManager)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:    accountHandler,
		LedgerHandler:     ledgerHandler,
		ClosingHandler:    closingHandler,
		FeeHandler:        feeHandler,
		CommissionHandler: commissionHandler,
		UserHandler:       userHandler,
		HealthHandler:     healthHandler,
		JWTManager:        jwtManager,
		AuthEnabled:       cfg.AuthEnabled,
		Users:             userRepo,
		IdempotencyStore:  idempotencyStore,
		IdempotencyTTL:    cfg.IdempotencyTTL,
		Logger:            log.Logger,
		Metrics:           appMetrics,
		RateLimit:         cfg.RateLimitRPS,
		RateBurst:         cfg.RateLimitBurst,
	})

	// Outbox drain worker
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(nil),
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// bootstrapAdmin creates the configured administrator account when it does
// not exist yet. Runs as the synthetic system user so the audit trail still
// records an actor.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, userUC *usecase.UserUseCase) {
	if cfg.AdminEmail == "" {
		return
	}

	systemCtx := domain.ContextWithUser(ctx, &domain.User{
		ID:     "system",
		Email:  "system@flowdash.local",
		Role:   domain.RoleAdministrator,
		Active: true,
	})

	_, err := userUC.CreateUser(systemCtx, usecase.CreateUserInput{
		Email:    cfg.AdminEmail,
		Name:     "Administrator",
		Password: cfg.AdminPassword,
		Role:     domain.RoleAdministrator,
	})
	switch {
	case err == nil:
		log.Info().Str("email", cfg.AdminEmail).Msg("bootstrap administrator created")
	case errors.Is(err, domain.ErrEmailTaken):
		// Already provisioned on a previous start.
	default:
		log.Fatal().Err(err).Msg("failed to bootstrap administrator")
	}
}
