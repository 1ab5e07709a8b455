package view

import (
	"context"
	"errors"
	"testing"

	"fincharts/internal/core"
	"fincharts/internal/ledger"
)

type recordingRenderer struct {
	bundles []Bundle
	err     error
}

func (r *recordingRenderer) Render(_ context.Context, b Bundle) error {
	r.bundles = append(r.bundles, b)
	return r.err
}

func newSession(t *testing.T, opts ...SessionOption) *Session {
	t.Helper()
	c := core.DefaultCatalog()
	s, err := NewSession(context.Background(), c, core.SampleData(c, 2024), opts...)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s
}

func TestDatasetIndex_Layout(t *testing.T) {
	idx := NewDatasetIndex(core.DefaultCatalog())

	if idx.Len() != 13 {
		t.Fatalf("Len() = %d, want 13", idx.Len())
	}
	tests := []struct {
		id   core.CategoryID
		want int
	}{
		{"physiological", 1},
		{"transcendence", 8},
		{"wage", 9},
		{"transfer", 12},
	}
	for _, tt := range tests {
		got, ok := idx.Position(tt.id)
		if !ok || got != tt.want {
			t.Errorf("Position(%s) = %d, %v; want %d", tt.id, got, ok, tt.want)
		}
	}
	if _, ok := idx.Position("budget"); ok {
		t.Error("budget should not be a category entry")
	}
}

func TestDatasetIndex_VerifyCatchesMisalignment(t *testing.T) {
	c := core.DefaultCatalog()
	store, err := ledger.New(c, core.SampleData(c, 2024))
	if err != nil {
		t.Fatal(err)
	}
	idx := NewDatasetIndex(c)
	bar := BuildBar(store, ledger.NewAggregator(store), idx)

	if err := idx.Verify(bar); err != nil {
		t.Fatalf("Verify(fresh chart) = %v", err)
	}

	swapped := bar
	swapped.Datasets = append([]BarDataset(nil), bar.Datasets...)
	swapped.Datasets[1], swapped.Datasets[2] = swapped.Datasets[2], swapped.Datasets[1]
	if err := idx.Verify(swapped); !errors.Is(err, ErrIndexMismatch) {
		t.Errorf("Verify(swapped) = %v, want ErrIndexMismatch", err)
	}

	dropped := bar
	dropped.Datasets = bar.Datasets[:len(bar.Datasets)-1]
	if err := idx.Verify(dropped); !errors.Is(err, ErrIndexMismatch) {
		t.Errorf("Verify(dropped) = %v, want ErrIndexMismatch", err)
	}
}

func TestBuildBar_Layout(t *testing.T) {
	s := newSession(t)
	b, _ := s.Charts()

	if len(b.Bar.Labels) != 12 || b.Bar.Labels[0] != "Jan." || b.Bar.Labels[11] != "Dec." {
		t.Errorf("labels = %v", b.Bar.Labels)
	}
	budget := b.Bar.Datasets[0]
	if budget.Label != "Budget" || budget.Type != "line" || len(budget.BorderDash) != 2 {
		t.Errorf("budget dataset = %+v", budget)
	}
	if budget.Fill == nil || *budget.Fill {
		t.Error("budget line should not be filled")
	}
	for _, ds := range b.Bar.Datasets[1:9] {
		if ds.Stack != "" {
			t.Errorf("expense %s stacked as %q", ds.Category, ds.Stack)
		}
	}
	for _, ds := range b.Bar.Datasets[9:] {
		if ds.Stack != IncomeStack {
			t.Errorf("income %s stack = %q", ds.Category, ds.Stack)
		}
	}
}

func TestNotifier_ExplicitRefresh(t *testing.T) {
	r := &recordingRenderer{}
	s := newSession(t, WithRenderer(r))

	if len(r.bundles) != 1 || r.bundles[0].Version != 1 {
		t.Fatalf("initial refresh delivered %d bundles", len(r.bundles))
	}
	if _, stale := s.Charts(); stale {
		t.Fatal("fresh session is stale")
	}

	if _, err := s.ApplyEdit("physiological", 0, "300"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ApplyBudget(0, "500"); err != nil {
		t.Fatal(err)
	}

	before, stale := s.Charts()
	if !stale {
		t.Fatal("edit did not mark charts stale")
	}
	if len(r.bundles) != 1 {
		t.Fatal("edit triggered an implicit refresh")
	}
	if before.ExpensePie.Data[0] != 1200 {
		t.Errorf("stale bundle changed before refresh: %v", before.ExpensePie.Data[0])
	}
	if s.PendingEdits() != 2 {
		t.Errorf("PendingEdits() = %d, want 2", s.PendingEdits())
	}

	b, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if b.Version != 2 || len(r.bundles) != 2 {
		t.Errorf("version %d after %d deliveries", b.Version, len(r.bundles))
	}
	if b.ExpensePie.Data[0] != 1400 {
		t.Errorf("physiological pie slice = %v, want 1400", b.ExpensePie.Data[0])
	}
	for i, v := range b.ExpensePie.Data[1:] {
		if v != 1200 {
			t.Errorf("expense slice %d = %v, want 1200", i+1, v)
		}
	}
	if b.Bar.Datasets[1].Data[0] != 300 || b.Bar.Datasets[0].Data[0] != 500 {
		t.Errorf("bar chart not updated: physiological=%v budget=%v", b.Bar.Datasets[1].Data[0], b.Bar.Datasets[0].Data[0])
	}
	if _, stale := s.Charts(); stale || s.PendingEdits() != 0 {
		t.Error("refresh left pending state behind")
	}
}

func TestNotifier_RendererFailureKeepsStale(t *testing.T) {
	r := &recordingRenderer{}
	s := newSession(t, WithRenderer(r))

	if _, err := s.ApplyEdit("wage", 1, "10"); err != nil {
		t.Fatal(err)
	}
	r.err = errors.New("canvas gone")
	if _, err := s.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() ignored renderer error")
	}
	if _, stale := s.Charts(); !stale {
		t.Error("failed delivery cleared stale")
	}
}

func TestNotifier_CancelledContext(t *testing.T) {
	s := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Refresh(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Refresh(cancelled) = %v", err)
	}
}

func TestPieCharts_MatchCategoryOrder(t *testing.T) {
	s := newSession(t)
	b, _ := s.Charts()
	c := s.Catalog()

	for _, p := range []PieChart{b.ExpensePie, b.IncomePie} {
		if err := VerifyPie(c, p); err != nil {
			t.Errorf("VerifyPie(%s) = %v", p.Group, err)
		}
		var sum float64
		for _, v := range p.Data {
			sum += v
		}
		if sum != p.GroupTotal {
			t.Errorf("%s pie sums to %v, total %v", p.Group, sum, p.GroupTotal)
		}
	}
	if b.IncomePie.GroupTotal != 4800 {
		t.Errorf("income total = %v", b.IncomePie.GroupTotal)
	}
}

func TestTabs_StateMachine(t *testing.T) {
	s := newSession(t)

	if st := s.EditorState(); st.Open {
		t.Fatalf("new session editor = %v", st)
	}
	if _, err := s.SelectMonth(3); !errors.Is(err, ErrEditorClosed) {
		t.Errorf("SelectMonth while closed = %v", err)
	}

	if st := s.OpenEditor(); !st.Open || st.Month != 0 {
		t.Errorf("OpenEditor() = %v", st)
	}
	st, err := s.SelectMonth(7)
	if err != nil || st.Month != 7 {
		t.Errorf("SelectMonth(7) = %v, %v", st, err)
	}
	if _, err := s.SelectMonth(12); !errors.Is(err, core.ErrOutOfRange) {
		t.Errorf("SelectMonth(12) = %v", err)
	}
	if st := s.EditorState(); st.Month != 7 {
		t.Errorf("bad select moved the tab to %d", st.Month)
	}
	if _, stale := s.Charts(); stale {
		t.Error("navigation marked charts stale")
	}

	before := s.Data()
	if st := s.CloseEditor(); st.Open {
		t.Errorf("CloseEditor() = %v", st)
	}
	after := s.Data()
	if before.Expenses["physiological"] != after.Expenses["physiological"] || before.Budget != after.Budget {
		t.Error("closing the editor changed the ledger")
	}
	if st := s.OpenEditor(); st.Month != 0 {
		t.Errorf("reopen landed on month %d", st.Month)
	}
}

func TestBuildForm(t *testing.T) {
	s := newSession(t)
	if _, err := s.ApplyEdit("safety", 0, "abc"); err != nil {
		t.Fatal(err)
	}

	f, err := s.Form(0)
	if err != nil {
		t.Fatalf("Form(0) error = %v", err)
	}
	if len(f.Expenses) != 8 || len(f.Incomes) != 4 || len(f.Fields()) != 13 {
		t.Fatalf("field counts %d/%d/%d", len(f.Expenses), len(f.Incomes), len(f.Fields()))
	}

	tests := []struct {
		field       Field
		name        string
		placeholder string
		value       string
	}{
		{f.Expenses[0], "Jan. Physiological Expense", "Enter physiological expense", "100"},
		{f.Expenses[1], "Jan. Safety Expense", "Enter safety expense", "0"},
		{f.Expenses[2], "Jan. Belonging_love Expense", "Enter belonging_love expense", "100"},
		{f.Incomes[0], "Jan. Wage Income", "Enter wage income", "100"},
		{f.Budget, "Jan. Budget", "Enter budget", "300"},
	}
	for _, tt := range tests {
		if tt.field.Name != tt.name {
			t.Errorf("name = %q, want %q", tt.field.Name, tt.name)
		}
		if tt.field.Placeholder != tt.placeholder {
			t.Errorf("%s placeholder = %q, want %q", tt.name, tt.field.Placeholder, tt.placeholder)
		}
		if tt.field.Value != tt.value {
			t.Errorf("%s value = %q, want %q", tt.name, tt.field.Value, tt.value)
		}
	}
	if f.Expenses[0].Description != "Basic survival needs like food, water, shelter, sleep." {
		t.Errorf("description = %q", f.Expenses[0].Description)
	}

	if _, err := s.Form(12); !errors.Is(err, core.ErrOutOfRange) {
		t.Errorf("Form(12) = %v", err)
	}
}

func TestSession_EditObserverAndReload(t *testing.T) {
	var seen []ledger.Edit
	s := newSession(t, WithEditObserver(func(ed ledger.Edit) { seen = append(seen, ed) }))

	if _, err := s.ApplyEdit("esteem", 4, "12x"); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || !seen[0].Coerced || seen[0].Value != 12 {
		t.Fatalf("observer saw %+v", seen)
	}

	c := s.Catalog()
	fresh := core.SampleData(c, 2025)
	if err := s.Reload(fresh); err != nil {
		t.Fatal(err)
	}
	st := s.ChartsState()
	if !st.Stale {
		t.Error("reload did not mark charts stale")
	}
	if st.Pending != 0 {
		t.Errorf("pending edits after reload = %d, want 0", st.Pending)
	}
	b, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if b.Year != 2025 {
		t.Errorf("bundle year = %d", b.Year)
	}
	if got := s.Snapshot().Expenses[4]; got != 8*150 {
		t.Errorf("May expense total = %v", got)
	}
}

func TestSession_SnapshotIsConsistent(t *testing.T) {
	s := newSession(t)
	if _, err := s.ApplyEdit("physiological", 2, "500"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ApplyEdit("wage", 2, "900"); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	for m := 0; m < 12; m++ {
		var sum float64
		for _, series := range snap.Data.Expenses {
			sum += series[m]
		}
		if snap.Expenses[m] != sum {
			t.Errorf("month %d: totals %v, data sums to %v", m, snap.Expenses[m], sum)
		}
	}
	if snap.Expenses[2] != 7*60+500 {
		t.Errorf("March expense total = %v, want %v", snap.Expenses[2], 7*60+500)
	}

	st := s.ChartsState()
	if !st.Stale || st.Pending != 2 {
		t.Errorf("ChartsState() stale=%v pending=%d", st.Stale, st.Pending)
	}
}
