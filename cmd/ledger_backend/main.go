package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/SscSPs/core_banking_ledger/cmd/docs"
	"github.com/SscSPs/core_banking_ledger/internal/core/ports"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/core_banking_ledger/internal/core/services"
	"github.com/SscSPs/core_banking_ledger/internal/handlers"
	"github.com/SscSPs/core_banking_ledger/internal/middleware"
	"github.com/SscSPs/core_banking_ledger/internal/platform/clock"
	"github.com/SscSPs/core_banking_ledger/internal/platform/config"
	"github.com/SscSPs/core_banking_ledger/internal/platform/events"
	"github.com/SscSPs/core_banking_ledger/internal/platform/lock"
	"github.com/SscSPs/core_banking_ledger/internal/platform/metrics"
	"github.com/SscSPs/core_banking_ledger/internal/platform/scheduler"
	"github.com/SscSPs/core_banking_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/core_banking_ledger/internal/repositories/memory"
	"github.com/SscSPs/core_banking_ledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	memstore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"golang.org/x/sync/errgroup"
)

// @title Core Banking Ledger API
// @version 1.0
// @description Accounts, postings, batches, standing orders, loans and fixed deposits.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	publisher := newPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close event publisher", slog.String("error", err.Error()))
		}
	}()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = lock.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		defer redisClient.Close()
	}

	sysClock := clock.System{}
	svc := services.NewServiceContainer(store,
		services.WithClock(sysClock),
		services.WithEventPublisher(publisher),
		services.WithMetricsRecorder(metrics.NewPrometheusRecorder("ledger", registry)),
	)

	rateLimiter, err := newRateLimiter(cfg, redisClient)
	if err != nil {
		return err
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
		corsCfg.AddAllowHeaders("Authorization")
		r.Use(cors.New(corsCfg))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}

	handlers.RegisterRoutes(r, cfg, svc, handlers.RouteDeps{
		Clock:         sysClock,
		Gatherer:      registry,
		APIMiddleware: []gin.HandlerFunc{middleware.RateLimit(rateLimiter)},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 15*time.Second)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.SchedulerEnabled {
		var locker ports.RunLocker = lock.NewLocalLocker()
		if redisClient != nil {
			locker = lock.NewRedisLocker(redisClient, "ledger")
		}
		runner := scheduler.NewRunner(svc, sysClock, locker, logger, cfg.SchedulerInterval)
		g.Go(func() error {
			return runner.Start(gctx)
		})
	}

	return g.Wait()
}

// openStore selects the persistence backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.Store, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		dbPool.Close()
		return nil, nil, err
	}

	return pgsql.NewStore(dbPool), dbPool.Close, nil
}

func newPublisher(cfg *config.Config, logger *slog.Logger) ports.EventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NoopPublisher{}
	}
	logger.Info("Publishing ledger events", slog.Any("brokers", cfg.KafkaBrokers), slog.String("topic", cfg.KafkaTopic))
	return events.NewKafkaPublisher(events.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic}, logger)
}

// newRateLimiter shares counters through Redis when it is configured so the
// limit holds across instances.
func newRateLimiter(cfg *config.Config, client *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return limiter.New(memstore.NewStore(), rate), nil
	}
	store, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "ledger:ratelimit"})
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}
