package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fincharts/internal/core"
	"fincharts/internal/settings"
	ports "fincharts/internal/sheets"

	_ "modernc.org/sqlite"
)

const (
	kindBudget      = "budget"
	settingCurrency = "currency"
)

var (
	_ ports.LedgerReadWriter = (*SQLiteRepository)(nil)
	_ settings.Store         = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db       *sql.DB
	queries  *Queries
	catalog  *core.Catalog
	defaults settings.Settings
}

// RepositoryOption configures a SQLiteRepository.
type RepositoryOption func(*SQLiteRepository)

// WithDefaultSettings sets what LoadSettings returns before anything is saved.
func WithDefaultSettings(s settings.Settings) RepositoryOption {
	return func(r *SQLiteRepository) { r.defaults = s.Normalize() }
}

func NewSQLiteRepository(dbPath string, catalog *core.Catalog, opts ...RepositoryOption) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY on commit.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	r := &SQLiteRepository{
		db:       db,
		queries:  New(db),
		catalog:  catalog,
		defaults: settings.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ReadLedger implements sheets.LedgerReader. A year with no stored cells
// reads as sample data so a fresh database opens on something to look at.
func (r *SQLiteRepository) ReadLedger(ctx context.Context, year int) (core.LedgerData, error) {
	cells, err := r.queries.GetLedgerCells(ctx, int64(year))
	if err != nil {
		return core.LedgerData{}, fmt.Errorf("get ledger cells: %w", err)
	}
	if len(cells) == 0 {
		slog.InfoContext(ctx, "No stored ledger, using sample data", "year", year)
		return core.SampleData(r.catalog, year), nil
	}

	d := core.LedgerData{
		Year:     year,
		Expenses: make(map[core.CategoryID]core.Series),
		Incomes:  make(map[core.CategoryID]core.Series),
	}
	for _, c := range cells {
		if !core.ValidMonth(int(c.Month)) {
			continue
		}
		if c.Kind == kindBudget {
			d.Budget[c.Month] = c.Amount
			continue
		}
		g := core.Group(c.Kind)
		cat, ok := r.catalog.Lookup(core.CategoryID(c.Category))
		if !ok || cat.Group != g {
			slog.WarnContext(ctx, "Skipping stored cell for unknown category", "year", year, "category", c.Category, "kind", c.Kind)
			continue
		}
		m := d.Group(g)
		s := m[cat.ID]
		s[c.Month] = c.Amount
		m[cat.ID] = s
	}
	return d, nil
}

// WriteLedger implements sheets.LedgerWriter. The whole year is replaced and
// a pending commit recorded in one transaction; the commit id is returned.
func (r *SQLiteRepository) WriteLedger(ctx context.Context, d core.LedgerData) (string, error) {
	if err := d.Validate(r.catalog); err != nil {
		return "", fmt.Errorf("validate ledger: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	year := int64(d.Year)
	if err := q.DeleteLedgerYear(ctx, year); err != nil {
		return "", fmt.Errorf("delete ledger year: %w", err)
	}
	put := func(kind, category string, s core.Series) error {
		for m, v := range s {
			if err := q.UpsertLedgerCell(ctx, UpsertLedgerCellParams{
				Year: year, Kind: kind, Category: category, Month: int64(m), Amount: v,
			}); err != nil {
				return fmt.Errorf("upsert %s %s: %w", category, core.MonthLabel(m), err)
			}
		}
		return nil
	}
	for _, g := range []core.Group{core.Expense, core.Income} {
		series := d.Group(g)
		for _, id := range r.catalog.IDs(g) {
			if err := put(g.String(), id.String(), series[id]); err != nil {
				return "", err
			}
		}
	}
	if err := put(kindBudget, kindBudget, d.Budget); err != nil {
		return "", err
	}

	id, err := q.CreateLedgerCommit(ctx, year)
	if err != nil {
		return "", fmt.Errorf("create ledger commit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit tx: %w", err)
	}

	slog.InfoContext(ctx, "Ledger saved to SQLite", "commit_id", id, "year", d.Year)
	return strconv.FormatInt(id, 10), nil
}

// PendingCommit is the minimal data needed for a sync queue message.
type PendingCommit struct {
	ID        int64
	Year      int
	CreatedAt time.Time
}

// GetPendingCommits returns commits not yet mirrored to Google Sheets, oldest
// first. Commits whose last sync failed are included so they get retried.
func (r *SQLiteRepository) GetPendingCommits(ctx context.Context, limit int) ([]PendingCommit, error) {
	rows, err := r.queries.GetPendingCommits(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending commits: %w", err)
	}
	out := make([]PendingCommit, len(rows))
	for i, c := range rows {
		out[i] = PendingCommit{ID: c.ID, Year: int(c.Year), CreatedAt: c.CreatedAt}
	}
	return out, nil
}

// GetCommit returns one commit by id.
func (r *SQLiteRepository) GetCommit(ctx context.Context, id int64) (LedgerCommit, error) {
	c, err := r.queries.GetLedgerCommit(ctx, id)
	if err != nil {
		return LedgerCommit{}, fmt.Errorf("get ledger commit %d: %w", id, err)
	}
	return c, nil
}

// MarkSynced marks a commit as successfully mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkCommitSynced(ctx, id); err != nil {
		return fmt.Errorf("mark commit synced: %w", err)
	}
	slog.InfoContext(ctx, "Commit marked as synced", "commit_id", id)
	return nil
}

// MarkSyncError marks a commit as having failed to sync.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkCommitSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark commit sync error: %w", err)
	}
	slog.WarnContext(ctx, "Commit marked with sync error", "commit_id", id)
	return nil
}

// LoadSettings implements settings.Store.
func (r *SQLiteRepository) LoadSettings(ctx context.Context) (settings.Settings, error) {
	v, err := r.queries.GetSetting(ctx, settingCurrency)
	if errors.Is(err, sql.ErrNoRows) {
		return r.defaults, nil
	}
	if err != nil {
		return settings.Settings{}, fmt.Errorf("get setting %s: %w", settingCurrency, err)
	}
	return settings.Settings{Currency: v}.Normalize(), nil
}

// SaveSettings implements settings.Store.
func (r *SQLiteRepository) SaveSettings(ctx context.Context, s settings.Settings) error {
	if strings.TrimSpace(s.Currency) == "" {
		return settings.ErrEmptyCurrency
	}
	s = s.Normalize()
	if err := r.queries.UpsertSetting(ctx, settingCurrency, s.Currency); err != nil {
		return fmt.Errorf("save setting %s: %w", settingCurrency, err)
	}
	return nil
}
