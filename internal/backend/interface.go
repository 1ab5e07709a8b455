// Package backend builds the ledger data source selected by DATA_BACKEND.
package backend

import (
	"context"
	"time"

	"fincharts/internal/amqp"
	"fincharts/internal/core"
	"fincharts/internal/settings"
	"fincharts/internal/sheets"
)

// CleanupFunc releases the resources opened for a backend.
type CleanupFunc func() error

// Result is everything the server needs from a backend. Publisher is nil
// unless the sqlite backend was given an AMQP URL that could be dialled.
type Result struct {
	Ledger    sheets.LedgerReadWriter
	Settings  settings.Store
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}

// Close runs Cleanup when set.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, catalog *core.Catalog, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Ledger settings used when the backend has no settings table
	Currency string

	// Memory backend
	DataDirectory string

	// SQLite
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets reads are cached per year
	CacheTTL  time.Duration
	CacheSize int
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
