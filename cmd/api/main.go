package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/stallpos/api/routes"
	"github.com/angelmondragon/stallpos/internal/orders"
	"github.com/angelmondragon/stallpos/internal/store"
	"github.com/angelmondragon/stallpos/pkg/config"
	"github.com/angelmondragon/stallpos/pkg/db"
	"github.com/angelmondragon/stallpos/pkg/enums"
	"github.com/angelmondragon/stallpos/pkg/instance"
	"github.com/angelmondragon/stallpos/pkg/logger"
	"github.com/angelmondragon/stallpos/pkg/metrics"
	"github.com/angelmondragon/stallpos/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Instance:    instance.GetID(),
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	}

	persister, closePersister, err := openPersister(ctx, cfg, logg, redisClient)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, closePersister())
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	st, err := store.New(persister, store.Options{
		Engine:   orders.NewEngine(orders.FlowFor(cfg.Store.OrderFlow), nil),
		Logger:   logg,
		Recorder: metrics.NewOrderMetrics(registry),
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	if err := st.Load(ctx); err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"backend": string(cfg.Store.Backend),
		"flow":    string(cfg.Store.OrderFlow),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, st, redisClient, metrics.NewHTTPMetrics(registry), registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logg.Info(logCtx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openPersister builds the state persister for the configured backend and
// returns a func releasing whatever it opened.
func openPersister(ctx context.Context, cfg *config.Config, logg *logger.Logger, redisClient *redis.Client) (store.Persister, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Backend {
	case enums.StoreBackendSQLite, enums.StoreBackendPostgres:
		dbClient, err := db.New(ctx, cfg.Store.Backend, cfg.DB, logg)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap database: %w", err)
		}
		p, err := store.NewSQLPersister(ctx, dbClient, cfg.Store.SnapshotKey)
		if err != nil {
			return nil, nil, multierr.Append(err, dbClient.Close())
		}
		return p, dbClient.Close, nil
	case enums.StoreBackendRedis:
		if redisClient == nil {
			return nil, nil, fmt.Errorf("redis store backend requires a redis client")
		}
		p, err := store.NewRedisPersister(redisClient, cfg.Store.SnapshotKey)
		if err != nil {
			return nil, nil, err
		}
		return p, noop, nil
	default:
		return store.NewFilePersister(cfg.Store.FilePath), noop, nil
	}
}
