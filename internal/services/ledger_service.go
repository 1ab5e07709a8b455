package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"fincharts/internal/core"
	"fincharts/internal/metrics"
	"fincharts/internal/settings"
	"fincharts/internal/sheets"
)

// ErrNoVault is returned by UpdateNote when no vault is configured.
var ErrNoVault = errors.New("no vault configured")

// CommitPublisher announces stored commits to the sync worker.
type CommitPublisher interface {
	PublishLedgerCommit(ctx context.Context, commitID int64, year int) error
}

// NoteWriter rewrites the financial summary lines of a note.
type NoteWriter interface {
	UpdateFinancialData(ctx context.Context, path, currency string, expenses []float64) error
}

// LedgerService orchestrates ledger persistence across the data backend,
// AMQP and the vault note.
type LedgerService struct {
	backend   sheets.LedgerReadWriter
	settings  settings.Store
	publisher CommitPublisher
	notes     NoteWriter
	notePath  string
	metrics   *metrics.Metrics
	closers   []func() error
}

type Option func(*LedgerService)

// WithPublisher enables commit messages. Only numeric commit refs (the
// SQLite backend) are published.
func WithPublisher(p CommitPublisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

// WithNotes sets the vault writer and the default note path.
func WithNotes(w NoteWriter, defaultPath string) Option {
	return func(s *LedgerService) {
		s.notes = w
		s.notePath = defaultPath
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *LedgerService) { s.metrics = m }
}

// WithCloser registers a cleanup run by Close, in registration order.
func WithCloser(fn func() error) Option {
	return func(s *LedgerService) { s.closers = append(s.closers, fn) }
}

func NewLedgerService(backend sheets.LedgerReadWriter, store settings.Store, opts ...Option) *LedgerService {
	s := &LedgerService{backend: backend, settings: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the initial ledger for year.
func (s *LedgerService) Load(ctx context.Context, year int) (core.LedgerData, error) {
	d, err := s.backend.ReadLedger(ctx, year)
	if err != nil {
		return core.LedgerData{}, fmt.Errorf("read ledger: %w", err)
	}
	return d, nil
}

// Commit persists the whole ledger and publishes a sync message. A publish
// failure is logged, not returned: the commit is already stored and the
// worker's poller picks it up.
func (s *LedgerService) Commit(ctx context.Context, data core.LedgerData) (string, error) {
	ref, err := s.backend.WriteLedger(ctx, data)
	s.metrics.RecordCommit(err)
	if err != nil {
		return "", fmt.Errorf("write ledger: %w", err)
	}

	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		if err := s.publishCommit(ctx, id, data.Year); err != nil {
			slog.ErrorContext(ctx, "Failed to publish commit message",
				"commit_id", id, "year", data.Year, "error", err)
		}
	}

	slog.InfoContext(ctx, "Ledger committed", "year", data.Year, "ref", ref)
	return ref, nil
}

func (s *LedgerService) publishCommit(ctx context.Context, id int64, year int) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping commit message")
		return nil
	}
	return s.publisher.PublishLedgerCommit(ctx, id, year)
}

// UpdateNote writes the current currency and the given monthly expense
// totals into the note at path, or the default note when path is empty.
func (s *LedgerService) UpdateNote(ctx context.Context, path string, expenses []float64) error {
	if s.notes == nil {
		return ErrNoVault
	}
	if path == "" {
		path = s.notePath
	}
	if path == "" {
		return fmt.Errorf("%w: no note path", core.ErrMissingTarget)
	}

	cfg, err := s.Settings(ctx)
	if err != nil {
		return err
	}
	if err := s.notes.UpdateFinancialData(ctx, path, cfg.Currency, expenses); err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

// NotesEnabled reports whether UpdateNote can do anything.
func (s *LedgerService) NotesEnabled() bool {
	return s.notes != nil
}

func (s *LedgerService) Settings(ctx context.Context) (settings.Settings, error) {
	cfg, err := s.settings.LoadSettings(ctx)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return cfg, nil
}

func (s *LedgerService) SaveSettings(ctx context.Context, cfg settings.Settings) (settings.Settings, error) {
	if err := s.settings.SaveSettings(ctx, cfg); err != nil {
		return settings.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return cfg.Normalize(), nil
}

// Close runs every registered cleanup and joins their errors.
func (s *LedgerService) Close() error {
	var errs []error
	for _, fn := range s.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close ledger service: %w", err)
	}
	return nil
}
