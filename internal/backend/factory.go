package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fincharts/internal/amqp"
	"fincharts/internal/cache"
	"fincharts/internal/core"
	"fincharts/internal/metrics"
	"fincharts/internal/settings"
	"fincharts/internal/sheets"
	gsheet "fincharts/internal/sheets/google"
	"fincharts/internal/sheets/memory"
	"fincharts/internal/storage"
)

// cacheCleanupInterval is how often expired ledger years are dropped.
const cacheCleanupInterval = 10 * time.Minute

// SheetsConstructor opens the Google Sheets ledger.
type SheetsConstructor func(ctx context.Context, catalog *core.Catalog) (sheets.LedgerReadWriter, error)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger    *slog.Logger
	metrics   *metrics.Metrics
	newSheets SheetsConstructor
}

type FactoryOption func(*DefaultFactory)

// WithMetrics counts cache lookups of the sheets backend.
func WithMetrics(m *metrics.Metrics) FactoryOption {
	return func(f *DefaultFactory) { f.metrics = m }
}

// WithSheetsConstructor replaces the environment based Sheets client.
func WithSheetsConstructor(fn SheetsConstructor) FactoryOption {
	return func(f *DefaultFactory) { f.newSheets = fn }
}

func NewFactory(logger *slog.Logger, opts ...FactoryOption) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	f := &DefaultFactory{
		logger: logger,
		newSheets: func(ctx context.Context, catalog *core.Catalog) (sheets.LedgerReadWriter, error) {
			return gsheet.NewFromEnv(ctx, catalog)
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, catalog *core.Catalog, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, catalog, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, catalog, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, catalog, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, catalog *core.Catalog, config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, catalog,
		storage.WithDefaultSettings(settings.Settings{Currency: config.Currency}))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional: commits stay pending until the worker polls them.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without sync", "error", err)
			amqpClient = nil
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &Result{
		Ledger:    repo,
		Settings:  repo,
		Publisher: amqpClient,
		Cleanup: func() error {
			var errs []error
			if amqpClient != nil {
				errs = append(errs, amqpClient.Close())
			}
			errs = append(errs, repo.Close())
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, catalog *core.Catalog, config Config) (*Result, error) {
	cli, err := f.newSheets(ctx, catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	size := config.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	lru := cache.NewLRUCache[core.LedgerData](size, config.CacheTTL)
	loader := cache.NewLedgerLoader(cli, lru, cache.WithLookupObserver(f.metrics.RecordCacheLookup))

	manager := cache.NewManager()
	manager.Register(lru)
	manager.StartCleanup(context.WithoutCancel(ctx), cacheCleanupInterval)

	f.logger.InfoContext(ctx, "Initialized Google Sheets backend",
		"cache_ttl", config.CacheTTL,
		"cache_size", size)

	return &Result{
		Ledger:   loader,
		Settings: settings.NewMemory(settings.Settings{Currency: config.Currency}.Normalize()),
		Cleanup: func() error {
			manager.Stop()
			return nil
		},
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, catalog *core.Catalog, config Config) (*Result, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store := memory.NewFromFiles(ctx, dataDir, catalog)

	f.logger.InfoContext(ctx, "Initialized memory backend", "data_directory", dataDir)

	return &Result{
		Ledger:   store,
		Settings: settings.NewMemory(settings.Settings{Currency: config.Currency}.Normalize()),
	}, nil
}
