package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fincharts/internal/amqp"
	"fincharts/internal/sheets"
	"fincharts/internal/storage"
)

const statusSynced = "synced"

// CommitStore is the part of the SQLite repository the worker reads from.
type CommitStore interface {
	sheets.LedgerReader
	GetCommit(ctx context.Context, id int64) (storage.LedgerCommit, error)
	GetPendingCommits(ctx context.Context, limit int) ([]storage.PendingCommit, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker mirrors committed ledger years from SQLite to Google Sheets.
type SyncWorker struct {
	storage   CommitStore
	sheets    sheets.LedgerWriter
	batchSize int
	onSync    func(ok bool)
}

type Option func(*SyncWorker)

// WithSyncObserver is called after every attempted year sync.
func WithSyncObserver(fn func(ok bool)) Option {
	return func(w *SyncWorker) { w.onSync = fn }
}

func NewSyncWorker(storage CommitStore, sheets sheets.LedgerWriter, batchSize int, opts ...Option) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	w := &SyncWorker{storage: storage, sheets: sheets, batchSize: batchSize}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandleCommitMessage processes a single ledger commit message from AMQP.
// Commits that are already synced are acknowledged without touching Sheets.
func (w *SyncWorker) HandleCommitMessage(ctx context.Context, msg *amqp.LedgerCommitMessage) error {
	slog.InfoContext(ctx, "Processing commit message",
		"message_id", msg.ID,
		"commit_id", msg.CommitID,
		"year", msg.Year)

	commit, err := w.storage.GetCommit(ctx, msg.CommitID)
	if err != nil {
		return fmt.Errorf("get commit from storage: %w", err)
	}
	if commit.SyncStatus == statusSynced {
		slog.InfoContext(ctx, "Commit already synced, skipping", "commit_id", commit.ID)
		return nil
	}

	return w.syncYear(ctx, int(commit.Year), []int64{commit.ID})
}

// ProcessPendingCommits syncs commits that were never mirrored, e.g. because
// the AMQP message was lost. Commits of the same year collapse into one
// write of the latest stored ledger.
func (w *SyncWorker) ProcessPendingCommits(ctx context.Context) error {
	pending, err := w.storage.GetPendingCommits(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending commits: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending commits", "count", len(pending))

	var years []int
	byYear := make(map[int][]int64)
	for _, p := range pending {
		if _, seen := byYear[p.Year]; !seen {
			years = append(years, p.Year)
		}
		byYear[p.Year] = append(byYear[p.Year], p.ID)
	}

	synced, failed := 0, 0
	for _, year := range years {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.syncYear(ctx, year, byYear[year]); err != nil {
			slog.ErrorContext(ctx, "Failed to sync ledger year", "year", year, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Pending commit sync completed",
		"commits", len(pending),
		"years_synced", synced,
		"years_failed", failed)
	return nil
}

// syncYear writes the stored ledger for year to Sheets and marks every
// listed commit with the outcome.
func (w *SyncWorker) syncYear(ctx context.Context, year int, commitIDs []int64) error {
	data, err := w.storage.ReadLedger(ctx, year)
	if err == nil {
		var ref string
		ref, err = w.sheets.WriteLedger(ctx, data)
		if err == nil {
			slog.InfoContext(ctx, "Synced ledger year to Google Sheets",
				"year", year,
				"sheets_ref", ref,
				"commits", len(commitIDs))
		}
	}
	w.observe(err == nil)

	for _, id := range commitIDs {
		mark := w.storage.MarkSynced
		if err != nil {
			mark = w.storage.MarkSyncError
		}
		// A failed mark leaves the commit eligible for the next poll.
		if markErr := mark(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark commit", "commit_id", id, "error", markErr)
		}
	}
	if err != nil {
		return fmt.Errorf("sync year %d: %w", year, err)
	}
	return nil
}

func (w *SyncWorker) observe(ok bool) {
	if w.onSync != nil {
		w.onSync(ok)
	}
}
