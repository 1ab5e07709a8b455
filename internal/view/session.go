package view

import (
	"context"
	"sync"

	"fincharts/internal/core"
	"fincharts/internal/ledger"
)

// Session is one shared ledger with its editor tabs and refresh state. All
// access goes through a single mutex, so concurrent clients see edits in the
// order they were applied.
type Session struct {
	mu       sync.Mutex
	store    *ledger.Store
	agg      *ledger.Aggregator
	editor   *ledger.Editor
	tabs     Tabs
	notifier *Notifier
	onEdit   func(ledger.Edit)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithEditObserver is called, under the session lock, after every applied
// edit. It must not call back into the session.
func WithEditObserver(fn func(ledger.Edit)) SessionOption {
	return func(s *Session) { s.onEdit = fn }
}

// WithRenderer registers a renderer on the session's notifier.
func WithRenderer(r Renderer) SessionOption {
	return func(s *Session) { s.notifier.Register(r) }
}

// NewSession builds the ledger from data and derives the first bundle.
func NewSession(ctx context.Context, catalog *core.Catalog, data core.LedgerData, opts ...SessionOption) (*Session, error) {
	store, err := ledger.New(catalog, data)
	if err != nil {
		return nil, err
	}
	agg := ledger.NewAggregator(store)
	s := &Session{
		store:    store,
		agg:      agg,
		notifier: NewNotifier(store, agg),
	}
	s.editor = ledger.NewEditor(store, ledger.WithApplyHook(s.edited))
	for _, opt := range opts {
		opt(s)
	}
	if _, err := s.notifier.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) edited(ed ledger.Edit) {
	s.notifier.MarkDirty()
	if s.onEdit != nil {
		s.onEdit(ed)
	}
}

func (s *Session) Catalog() *core.Catalog { return s.store.Catalog() }

// Year is the ledger year being edited.
func (s *Session) Year() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Year()
}

// ApplyEdit writes one category cell from raw form text.
func (s *Session) ApplyEdit(category core.CategoryID, month int, raw string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.ApplyEdit(category, month, raw)
}

// ApplyBudget writes one budget cell from raw form text.
func (s *Session) ApplyBudget(month int, raw string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.ApplyBudget(month, raw)
}

// Refresh re-derives the charts and delivers them to the renderers.
func (s *Session) Refresh(ctx context.Context) (Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.notifier.Refresh(ctx)
	if err == nil {
		s.editor.MarkRefreshed()
	}
	return b, err
}

// Charts returns the last derived bundle and whether edits happened since.
func (s *Session) Charts() (Bundle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifier.Current(), s.notifier.Stale()
}

// PendingEdits is the number of edits not yet reflected in the charts.
func (s *Session) PendingEdits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Pending()
}

func (s *Session) OpenEditor() EditorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs.Open()
}

func (s *Session) SelectMonth(month int) (EditorState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs.Select(month)
}

func (s *Session) CloseEditor() EditorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs.Close()
}

func (s *Session) EditorState() EditorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs.State()
}

// Form builds the fields of one month tab from current values.
func (s *Session) Form(month int) (Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildForm(s.store, month)
}

// Data snapshots the ledger for persistence.
func (s *Session) Data() core.LedgerData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Data()
}

// Snapshot is a ledger copy and its expense month totals taken under one lock.
type Snapshot struct {
	Data     core.LedgerData
	Expenses core.Series
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Data: s.store.Data(), Expenses: s.agg.MonthTotals(core.Expense)}
}

// ChartsState is the last bundle together with the pending edit count.
type ChartsState struct {
	Bundle  Bundle
	Stale   bool
	Pending int
}

func (s *Session) ChartsState() ChartsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ChartsState{
		Bundle:  s.notifier.Current(),
		Stale:   s.notifier.Stale(),
		Pending: s.editor.Pending(),
	}
}

// Reload replaces the ledger with freshly loaded data. Charts become stale.
func (s *Session) Reload(data core.LedgerData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Replace(data); err != nil {
		return err
	}
	// Edits made against the old ledger no longer count as pending.
	s.editor.MarkRefreshed()
	s.notifier.MarkDirty()
	return nil
}
