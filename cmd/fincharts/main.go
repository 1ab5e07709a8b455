package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fincharts/internal/backend"
	"fincharts/internal/cli"
	"fincharts/internal/config"
	"fincharts/internal/core"
	apphttp "fincharts/internal/http"
	"fincharts/internal/ledger"
	applog "fincharts/internal/log"
	"fincharts/internal/metrics"
	"fincharts/internal/middleware/ratelimit"
	"fincharts/internal/services"
	"fincharts/internal/vault"
	"fincharts/internal/view"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger(applog.DefaultConfig().Level, applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(cfg.SlogLevel(), applog.ComponentApp)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("Server stopped with error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, logger *applog.Logger, cfg *config.Config) error {
	m := metrics.Default()
	catalog := core.DefaultCatalog()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	factory := backend.NewFactory(logger.Logger.With(applog.FieldComponent, applog.ComponentBackend), backend.WithMetrics(m))
	res, err := factory.CreateBackend(ctx, catalog, bcfg)
	if err != nil {
		return err
	}

	opts := []services.Option{services.WithMetrics(m), services.WithCloser(res.Close)}
	if res.Publisher != nil {
		opts = append(opts, services.WithPublisher(res.Publisher))
	}
	if cfg.VaultDir != "" {
		opts = append(opts, services.WithNotes(vault.NewWriter(cfg.VaultDir), cfg.VaultNote))
	}
	svc := services.NewLedgerService(res.Ledger, res.Settings, opts...)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Failed to release backend", applog.FieldError, err.Error())
		}
	}()

	data, err := svc.Load(ctx, cfg.LedgerYear)
	if err != nil {
		return err
	}

	edits := applog.NewStructuredLogger(logger)
	session, err := view.NewSession(ctx, catalog, data,
		view.WithEditObserver(func(ed ledger.Edit) {
			target := "cell"
			if ed.Category == "" {
				target = "budget"
			}
			m.RecordEdit(target, ed.Coerced)
			edits.LogEdit(context.Background(), ed.Category.String(), ed.Month, ed.Raw, ed.Value, ed.Coerced)
		}),
		view.WithRenderer(view.RendererFunc(func(ctx context.Context, b view.Bundle) error {
			logger.WithComponent(applog.ComponentView).DebugContext(ctx, "Charts derived",
				applog.FieldVersion, b.Version,
				applog.FieldYear, b.Year)
			return nil
		})),
	)
	if err != nil {
		return err
	}

	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})
	srvOpts := []apphttp.Option{
		apphttp.WithMetrics(m),
		apphttp.WithRateLimiter(limiter),
		apphttp.WithLogger(logger.WithComponent(applog.ComponentHTTP)),
	}
	if p, ok := res.Ledger.(interface{ Ping(context.Context) error }); ok {
		srvOpts = append(srvOpts, apphttp.WithReadiness(p.Ping))
	}
	srv := apphttp.NewServer(":"+cfg.Port, session, svc, srvOpts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fincharts server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			applog.FieldYear, data.Year)
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
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
