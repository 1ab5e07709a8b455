package ledger

import (
	"github.com/shopspring/decimal"

	"fincharts/internal/core"
)

// Aggregator derives chart inputs from a store. It keeps no state of its own:
// every total is recomputed from the current cells on each call.
type Aggregator struct {
	store *Store
}

func NewAggregator(s *Store) *Aggregator {
	return &Aggregator{store: s}
}

// MonthlyTotals returns the series of every category in a group, unchanged,
// as one snapshot. The map is a copy.
func (a *Aggregator) MonthlyTotals(g core.Group) map[core.CategoryID]core.Series {
	ids := a.store.Categories(g)
	out := make(map[core.CategoryID]core.Series, len(ids))
	for _, id := range ids {
		out[id] = a.store.series[id]
	}
	return out
}

// YearlyTotal sums the twelve months of one category.
func (a *Aggregator) YearlyTotal(category core.CategoryID) (float64, error) {
	s, err := a.store.Series(category)
	if err != nil {
		return 0, err
	}
	return sum(s[:]...), nil
}

// YearlyTotals returns one total per category in Categories(g) order. Zero
// totals are kept so the result always lines up with the category list.
func (a *Aggregator) YearlyTotals(g core.Group) []core.CategoryTotal {
	ids := a.store.Categories(g)
	out := make([]core.CategoryTotal, len(ids))
	for i, id := range ids {
		s := a.store.series[id]
		out[i] = core.CategoryTotal{Category: id, Total: sum(s[:]...)}
	}
	return out
}

// GroupTotal is the year's total across every category of a group.
func (a *Aggregator) GroupTotal(g core.Group) float64 {
	acc := decimal.Zero
	for _, id := range a.store.Categories(g) {
		for _, v := range a.store.series[id] {
			acc = acc.Add(decimal.NewFromFloat(v))
		}
	}
	return acc.InexactFloat64()
}

// MonthTotal is one month's total across every category of a group.
func (a *Aggregator) MonthTotal(g core.Group, month int) (float64, error) {
	if err := core.CheckMonth(month); err != nil {
		return 0, err
	}
	ids := a.store.Categories(g)
	vals := make([]float64, len(ids))
	for i, id := range ids {
		vals[i] = a.store.series[id][month]
	}
	return sum(vals...), nil
}

// MonthTotals is MonthTotal for all twelve months.
func (a *Aggregator) MonthTotals(g core.Group) core.Series {
	var out core.Series
	for m := range out {
		out[m], _ = a.MonthTotal(g, m)
	}
	return out
}

func sum(vals ...float64) float64 {
	acc := decimal.Zero
	for _, v := range vals {
		acc = acc.Add(decimal.NewFromFloat(v))
	}
	return acc.InexactFloat64()
}
