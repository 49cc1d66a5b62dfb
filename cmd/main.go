package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/selivandex/news-relay/internal/adapters/config"
	"github.com/selivandex/news-relay/internal/adapters/database"
	"github.com/selivandex/news-relay/internal/adapters/provider"
	redisAdapter "github.com/selivandex/news-relay/internal/adapters/redis"
	"github.com/selivandex/news-relay/internal/cache"
	"github.com/selivandex/news-relay/internal/enrich"
	"github.com/selivandex/news-relay/internal/health"
	"github.com/selivandex/news-relay/internal/relay"
	"github.com/selivandex/news-relay/internal/server"
	"github.com/selivandex/news-relay/internal/workers"
	"github.com/selivandex/news-relay/pkg/logger"
	"github.com/selivandex/news-relay/pkg/worker"
)

func main() {
	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// .env is optional; envconfig reads the real environment either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("news relay starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("provider", cfg.NewsAPI.BaseURL),
	)

	db, err := initDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, lockFactory, err := initMergeLocks(cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	providerClient := provider.NewClient(&cfg.NewsAPI)
	enricher := enrich.NewOpenAIEnricher(&cfg.Sentiment)
	store := cache.NewRepository(db.DB())

	relaySvc := relay.NewService(providerClient, enricher, store, lockFactory, &cfg.Relay)

	apiServer := server.New(&cfg.Server, relaySvc)
	healthServer := health.NewServer(cfg.Server.HealthPort, db, redisClient)

	go func() {
		if err := healthServer.Start(); err != nil {
			logger.Error("health server error", zap.Error(err))
		}
	}()

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("API server error", zap.Error(err))
		}
	}()

	var refreshWorker *worker.PeriodicWorker
	if cfg.Relay.RefreshEnabled {
		refreshWorker = worker.RunBackground(
			ctx,
			workers.NewRefreshWorker(providerClient, relaySvc),
			cfg.Relay.RefreshInterval,
		)
	}

	healthServer.SetReady(true)
	logger.Info("news relay ready",
		zap.Int("api_port", cfg.Server.Port),
		zap.Int("health_port", cfg.Server.HealthPort),
		zap.Bool("refresh_worker", cfg.Relay.RefreshEnabled),
	)

	<-ctx.Done()

	return performGracefulShutdown(apiServer, healthServer, refreshWorker)
}

// initDatabase connects to Postgres and applies pending migrations
func initDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(db.Conn(), "./migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// initMergeLocks picks the per-date lock implementation: Redis-backed when
// enabled, in-process otherwise
func initMergeLocks(cfg *config.Config) (*redisAdapter.Client, redisAdapter.LockFactory, error) {
	if !cfg.Redis.Enabled {
		logger.Info("redis disabled, using in-process merge locks")
		return nil, redisAdapter.NewLocalLockFactory(), nil
	}

	redisClient, err := redisAdapter.New(&cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if err := redisClient.Health(); err != nil {
		redisClient.Close()
		return nil, nil, fmt.Errorf("redis health check failed: %w", err)
	}

	return redisClient, redisClient.LockFactory(), nil
}

func performGracefulShutdown(
	apiServer *server.Server,
	healthServer *health.Server,
	refreshWorker *worker.PeriodicWorker,
) error {
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if refreshWorker != nil {
		refreshWorker.Stop(5 * time.Second)
	}

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop API server", zap.Error(err))
	}

	if err := healthServer.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop health server", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}
