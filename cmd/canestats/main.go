package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"canestats/internal/amqp"
	"canestats/internal/cache"
	"canestats/internal/cli"
	apphttp "canestats/internal/http"
	"canestats/internal/log"
	"canestats/internal/metrics"
	"canestats/internal/services"
	"canestats/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.ShutdownContext(context.Background(), logger)
	defer cancel()

	m := metrics.New()

	loader, err := cli.OpenLoader(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize dataset source", log.FieldError, err, "source", cfg.DatasetSource)
		os.Exit(1)
	}
	defer loader.Close()

	// The snapshot store backs AMQP hot swaps and /api/snapshots. It is only
	// opened when something can have written to it.
	var repo *storage.SQLiteRepository
	if cfg.AMQPEnabled() || fileExists(cfg.SQLiteDBPath) {
		repo = cli.InitSQLite(logger, cfg.SQLiteDBPath)
		defer repo.Close()
	}

	opts := services.ViewServiceOptions{
		Loader:             loader.Loader,
		Metrics:            m,
		Logger:             logger.WithComponent(log.ComponentDashboard),
		CacheSize:          cfg.ViewCacheSize,
		CacheTTL:           cfg.ViewCacheTTL,
		CompareBaseMonth:   cfg.CompareBaseMonth,
		CompareTargetMonth: cfg.CompareTargetMonth,
	}
	srvOpts := apphttp.Options{
		Addr:               ":" + cfg.Port,
		Metrics:            m,
		Logger:             logger,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
	if repo != nil {
		opts.Snapshots = repo
		srvOpts.Snapshots = repo
	}
	if cfg.AuthUserHeader != "" {
		srvOpts.Gate = apphttp.HeaderGate{Header: cfg.AuthUserHeader}
	}

	views := services.NewViewService(opts)
	info, err := views.Reload(ctx)
	if err != nil {
		logger.Error("Initial dataset load failed", log.FieldError, err, "source", cfg.DatasetSource)
		os.Exit(1)
	}
	logger.Info("Dataset loaded",
		"source", info.Source,
		"divisions", info.Divisions,
		"records", info.Records)

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	caches.Register(views.Cache())
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	srvOpts.Dashboard = views
	srv := apphttp.NewServer(srvOpts)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting canestats server", "port", cfg.Port, "source", cfg.DatasetSource)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		return nil
	})

	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			logger.Info("Consuming snapshot announcements", "queue", cfg.AMQPQueue)
			err := amqpClient.ConsumeSnapshots(gctx, views.HandleSnapshot)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("AMQP disabled - dataset is only reloaded on restart")
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
