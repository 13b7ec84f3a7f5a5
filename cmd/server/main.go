package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/kitabu/ledger/internal/adapter/http"
	"github.com/kitabu/ledger/internal/adapter/http/handler"
	"github.com/kitabu/ledger/internal/adapter/http/middleware"
	"github.com/kitabu/ledger/internal/adapter/repository/memory"
	postgresRepo "github.com/kitabu/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/kitabu/ledger/internal/adapter/repository/redis"
	"github.com/kitabu/ledger/internal/infrastructure/config"
	"github.com/kitabu/ledger/internal/infrastructure/logging"
	"github.com/kitabu/ledger/internal/infrastructure/metrics"
	"github.com/kitabu/ledger/internal/infrastructure/postgres"
	"github.com/kitabu/ledger/internal/infrastructure/redis"
	"github.com/kitabu/ledger/internal/lock"
	"github.com/kitabu/ledger/internal/usecase"

	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// The migrator and the posting retrier log through slog.
	slog.SetDefault(logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat).Logger)

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis when configured; fall back to the in-process
	// idempotency cache otherwise.
	var (
		redisClient      *goredis.Client
		idempotencyCache usecase.IdempotencyCache
		reportCache      usecase.ReportCache
	)

	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		idempotencyCache = redisRepo.NewIdempotencyCache(redisClient)
		reportCache = redisRepo.NewCache(redisClient)
	} else {
		idempotencyCache = memory.NewIdempotencyCache(cfg.IdempotencyEntries, cfg.IdempotencyTTL)
		log.Info().Msg("redis not configured, using in-process idempotency cache")
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	loanRepo := postgresRepo.NewLoanRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()
	locker := lock.NewManager(cfg.LockTimeout)
	m := metrics.New()

	// Initialize use cases
	transactionUC := usecase.NewTransactionUseCase(
		txManager, transactionRepo, entryRepo, accountRepo,
		locker, idempotencyCache, reportCache, retrier, idGen, m,
	)
	accountUC := usecase.NewAccountUseCase(accountRepo, entryRepo, idGen, m)
	loanUC := usecase.NewLoanUseCase(loanRepo, accountRepo, transactionUC, idGen, m)
	reportingUC := usecase.NewReportingUseCase(accountRepo, entryRepo, loanRepo, reportCache, m)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		LoanHandler:        handler.NewLoanHandler(loanUC),
		ReportingHandler:   handler.NewReportingHandler(reportingUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		Logging:            middleware.NewLoggingMiddleware(log.Logger),
		Metrics:            middleware.NewMetricsMiddleware(m),
	})

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

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
