package view

import (
	"context"
	"errors"
	"fmt"

	"fincharts/internal/core"
	"fincharts/internal/ledger"
)

// Renderer receives the derived datasets after every refresh. It only draws;
// it never needs to know how the bundle was computed.
type Renderer interface {
	Render(ctx context.Context, b Bundle) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, b Bundle) error

func (f RendererFunc) Render(ctx context.Context, b Bundle) error { return f(ctx, b) }

// Notifier owns the refresh contract: edits only mark it stale, and nothing
// is re-derived until Refresh is called.
type Notifier struct {
	store     *ledger.Store
	agg       *ledger.Aggregator
	index     *DatasetIndex
	renderers []Renderer

	version uint64
	stale   bool
	current Bundle
}

// NewNotifier starts stale: no bundle has been derived yet.
func NewNotifier(store *ledger.Store, agg *ledger.Aggregator) *Notifier {
	return &Notifier{
		store: store,
		agg:   agg,
		index: NewDatasetIndex(store.Catalog()),
		stale: true,
	}
}

// Register adds a renderer that is handed every future bundle.
func (n *Notifier) Register(r Renderer) {
	n.renderers = append(n.renderers, r)
}

// MarkDirty records that the ledger changed since the last refresh.
func (n *Notifier) MarkDirty() { n.stale = true }

// Stale reports whether the current bundle may not match the ledger.
func (n *Notifier) Stale() bool { return n.stale }

// Current returns the last delivered bundle.
func (n *Notifier) Current() Bundle { return n.current }

func (n *Notifier) Index() *DatasetIndex { return n.index }

// Refresh re-derives the bar chart and both pie charts, checks them against
// the dataset index and hands the result to every renderer. Stale is cleared
// only when all renderers accepted the bundle.
func (n *Notifier) Refresh(ctx context.Context) (Bundle, error) {
	if err := ctx.Err(); err != nil {
		return Bundle{}, err
	}

	b := Bundle{
		Year:       n.store.Year(),
		Bar:        BuildBar(n.store, n.agg, n.index),
		ExpensePie: BuildPie(n.store, n.agg, core.Expense),
		IncomePie:  BuildPie(n.store, n.agg, core.Income),
	}
	if err := n.index.Verify(b.Bar); err != nil {
		return Bundle{}, fmt.Errorf("refresh: %w", err)
	}
	for _, p := range []PieChart{b.ExpensePie, b.IncomePie} {
		if err := VerifyPie(n.store.Catalog(), p); err != nil {
			return Bundle{}, fmt.Errorf("refresh: %w", err)
		}
	}

	n.version++
	b.Version = n.version
	n.current = b

	var errs []error
	for _, r := range n.renderers {
		if err := r.Render(ctx, b); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return b, fmt.Errorf("render: %w", errors.Join(errs...))
	}
	n.stale = false
	return b, nil
}
