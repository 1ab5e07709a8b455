package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the statements used by the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type LedgerCell struct {
	Kind     string
	Category string
	Month    int64
	Amount   float64
}

const getLedgerCells = `
SELECT kind, category, month, amount FROM ledger_cells
WHERE year = ?
ORDER BY kind, category, month
`

func (q *Queries) GetLedgerCells(ctx context.Context, year int64) ([]LedgerCell, error) {
	rows, err := q.db.QueryContext(ctx, getLedgerCells, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerCell
	for rows.Next() {
		var i LedgerCell
		if err := rows.Scan(&i.Kind, &i.Category, &i.Month, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteLedgerYear = `DELETE FROM ledger_cells WHERE year = ?`

func (q *Queries) DeleteLedgerYear(ctx context.Context, year int64) error {
	_, err := q.db.ExecContext(ctx, deleteLedgerYear, year)
	return err
}

const upsertLedgerCell = `
INSERT INTO ledger_cells (year, kind, category, month, amount, updated_at)
VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (year, category, month) DO UPDATE SET
    kind = excluded.kind,
    amount = excluded.amount,
    updated_at = CURRENT_TIMESTAMP
`

type UpsertLedgerCellParams struct {
	Year     int64
	Kind     string
	Category string
	Month    int64
	Amount   float64
}

func (q *Queries) UpsertLedgerCell(ctx context.Context, arg UpsertLedgerCellParams) error {
	_, err := q.db.ExecContext(ctx, upsertLedgerCell, arg.Year, arg.Kind, arg.Category, arg.Month, arg.Amount)
	return err
}

type LedgerCommit struct {
	ID         int64
	Year       int64
	CreatedAt  time.Time
	SyncStatus string
	SyncedAt   sql.NullTime
}

// scan reads timestamps as text: the driver may hand them back either as
// time.Time or as SQLite's "YYYY-MM-DD HH:MM:SS" string.
func (i *LedgerCommit) scan(row interface{ Scan(...interface{}) error }) error {
	var created string
	var synced sql.NullString
	if err := row.Scan(&i.ID, &i.Year, &created, &i.SyncStatus, &synced); err != nil {
		return err
	}
	i.CreatedAt = parseTimestamp(created)
	if synced.Valid {
		i.SyncedAt = sql.NullTime{Time: parseTimestamp(synced.String), Valid: true}
	}
	return nil
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

const createLedgerCommit = `INSERT INTO ledger_commits (year) VALUES (?)`

func (q *Queries) CreateLedgerCommit(ctx context.Context, year int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, createLedgerCommit, year)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getLedgerCommit = `
SELECT id, year, created_at, sync_status, synced_at FROM ledger_commits WHERE id = ?
`

func (q *Queries) GetLedgerCommit(ctx context.Context, id int64) (LedgerCommit, error) {
	var i LedgerCommit
	err := i.scan(q.db.QueryRowContext(ctx, getLedgerCommit, id))
	return i, err
}

const getPendingCommits = `
SELECT id, year, created_at, sync_status, synced_at FROM ledger_commits
WHERE sync_status IN ('pending', 'error')
ORDER BY created_at, id
LIMIT ?
`

func (q *Queries) GetPendingCommits(ctx context.Context, limit int64) ([]LedgerCommit, error) {
	rows, err := q.db.QueryContext(ctx, getPendingCommits, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerCommit
	for rows.Next() {
		var i LedgerCommit
		if err := i.scan(rows); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markCommitSynced = `
UPDATE ledger_commits SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP WHERE id = ?
`

func (q *Queries) MarkCommitSynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markCommitSynced, id)
	return err
}

const markCommitSyncError = `UPDATE ledger_commits SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkCommitSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markCommitSyncError, id)
	return err
}

const getSetting = `SELECT value FROM settings WHERE key = ?`

func (q *Queries) GetSetting(ctx context.Context, key string) (string, error) {
	row := q.db.QueryRowContext(ctx, getSetting, key)
	var value string
	err := row.Scan(&value)
	return value, err
}

const upsertSetting = `
INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) UpsertSetting(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, upsertSetting, key, value)
	return err
}
