package ledger

import (
	"fincharts/internal/core"
)

// Edit describes one applied form edit.
type Edit struct {
	Category core.CategoryID // empty for the budget
	Month    int
	Raw      string
	Value    float64
	Coerced  bool // Raw was not a clean number and Value was derived from it
}

// Editor applies raw form text to a store. Text that does not parse becomes
// 0; an error is returned only when the target cell does not exist.
//
// Every successful edit leaves the editor dirty until MarkRefreshed.
type Editor struct {
	store   *Store
	dirty   bool
	edits   int
	onApply func(Edit)
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithApplyHook registers a callback invoked after each successful edit.
func WithApplyHook(fn func(Edit)) EditorOption {
	return func(e *Editor) { e.onApply = fn }
}

func NewEditor(s *Store, opts ...EditorOption) *Editor {
	e := &Editor{store: s}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ApplyEdit parses raw and writes it into (category, month). It returns the
// stored value so the caller can show exactly what was kept.
func (e *Editor) ApplyEdit(category core.CategoryID, month int, raw string) (float64, error) {
	v, ok := core.ParseAmount(raw)
	if err := e.store.Set(category, month, v); err != nil {
		return 0, err
	}
	e.applied(Edit{Category: category, Month: month, Raw: raw, Value: v, Coerced: !ok})
	return v, nil
}

// ApplyBudget is ApplyEdit for the budget series.
func (e *Editor) ApplyBudget(month int, raw string) (float64, error) {
	v, ok := core.ParseAmount(raw)
	if err := e.store.SetBudget(month, v); err != nil {
		return 0, err
	}
	e.applied(Edit{Month: month, Raw: raw, Value: v, Coerced: !ok})
	return v, nil
}

// Dirty reports whether edits were applied since the last refresh.
func (e *Editor) Dirty() bool { return e.dirty }

// Pending is the number of edits applied since the last refresh.
func (e *Editor) Pending() int { return e.edits }

// MarkRefreshed clears the dirty flag once derived views were rebuilt.
func (e *Editor) MarkRefreshed() {
	e.dirty = false
	e.edits = 0
}

func (e *Editor) applied(ed Edit) {
	e.dirty = true
	e.edits++
	if e.onApply != nil {
		e.onApply(ed)
	}
}
