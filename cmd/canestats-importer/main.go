package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"canestats/internal/amqp"
	"canestats/internal/cli"
	"canestats/internal/config"
	"canestats/internal/log"
	"canestats/internal/metrics"
	"canestats/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.DatasetSource == config.SourceSQLite {
		logger.Error("The importer needs an upstream source, not the snapshot store", "source", cfg.DatasetSource)
		os.Exit(1)
	}

	logger.Info("Starting canestats-importer", "source", cfg.DatasetSource, "interval", cfg.ImportInterval)

	ctx, cancel := cli.ShutdownContext(context.Background(), logger)
	defer cancel()

	loader, err := cli.OpenLoader(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize dataset source", log.FieldError, err, "source", cfg.DatasetSource)
		os.Exit(1)
	}
	defer loader.Close()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var publisher worker.Publisher
	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
	} else {
		logger.Info("AMQP disabled - snapshots are stored but not announced")
	}

	m := metrics.New()
	w := worker.NewImportWorker(loader.Loader, repo, publisher, m, cfg.SnapshotKeep)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx, cfg.ImportInterval)
	})

	if cfg.ImporterMetricsAddr != "" {
		r := mux.NewRouter()
		r.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
		srv := &http.Server{
			Addr:              cfg.ImporterMetricsAddr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("Serving importer metrics", "addr", cfg.ImporterMetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Importer stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Importer shutdown complete")
}
