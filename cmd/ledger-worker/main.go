package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fincharts/internal/amqp"
	"fincharts/internal/cli"
	"fincharts/internal/core"
	applog "fincharts/internal/log"
	"fincharts/internal/metrics"
	"fincharts/internal/services"
	gsheet "fincharts/internal/sheets/google"
	"fincharts/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger(applog.DefaultConfig().Level, applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(boot)
	if err := cfg.ValidateSheets(); err != nil {
		boot.Error("Sync worker needs Google Sheets", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.SlogLevel(), applog.ComponentWorker)
	logger.Info("Starting ledger-worker")

	ctx, stop := cli.SignalContext()
	defer stop()

	catalog := core.DefaultCatalog()
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath, catalog)
	defer repo.Close()

	sheetsClient, err := gsheet.NewFromEnv(ctx, catalog)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	m := metrics.Default()
	w := worker.NewSyncWorker(repo, sheetsClient, cfg.SyncBatchSize, worker.WithSyncObserver(m.RecordSync))

	// Commits left over from a previous run.
	if err := w.ProcessPendingCommits(ctx); err != nil {
		logger.Error("Failed startup sync check", applog.FieldError, err.Error())
	}

	poller := services.NewSyncPoller(w, services.SyncPollerConfig{PollInterval: cfg.SyncInterval})
	if err := poller.Start(ctx); err != nil {
		logger.Error("Failed to start sync poller", applog.FieldError, err.Error())
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
			os.Exit(1)
		}
		defer client.Close()

		g.Go(func() error {
			err := client.ConsumeLedgerCommits(gctx, w.HandleCommitMessage)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("AMQP disabled, relying on the sync poller", "poll_interval", cfg.SyncInterval)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(rw http.ResponseWriter, r *http.Request) {
		if err := repo.Ping(r.Context()); err != nil || !poller.IsRunning() {
			http.Error(rw, "not ready", http.StatusServiceUnavailable)
			return
		}
		_, _ = rw.Write([]byte("ready"))
	})
	mux.Handle("GET /metrics", m.Handler())
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           applog.Middleware(logger.WithComponent(applog.ComponentHTTP))(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(poller.Stop(shutdownCtx), srv.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
