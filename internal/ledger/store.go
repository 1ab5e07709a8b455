// Package ledger holds one year of per-month category amounts plus the budget
// series, the totals derived from them and the form edit rules.
//
// Nothing here locks. A Store is owned by a single writer; view.Session adds
// the lock when several clients share one.
package ledger

import (
	"fmt"
	"math"

	"fincharts/internal/core"
)

// Store is twelve months × N category series plus one budget series. The set
// of categories is fixed by the catalog it was built from.
type Store struct {
	catalog *core.Catalog
	year    int
	series  map[core.CategoryID]core.Series
	budget  core.Series
}

// New builds a store for the catalog from initial data. Categories in data
// that the catalog does not know, or that sit under the wrong group, are
// rejected. Catalog categories missing from data start at zero.
func New(catalog *core.Catalog, data core.LedgerData) (*Store, error) {
	if catalog == nil {
		return nil, fmt.Errorf("new ledger: nil catalog")
	}
	if err := data.Validate(catalog); err != nil {
		return nil, fmt.Errorf("new ledger: %w", err)
	}

	s := &Store{
		catalog: catalog,
		year:    data.Year,
		series:  make(map[core.CategoryID]core.Series, catalog.Len()),
		budget:  data.Budget,
	}
	for _, g := range []core.Group{core.Expense, core.Income} {
		src := data.Group(g)
		for _, id := range catalog.IDs(g) {
			s.series[id] = src[id]
		}
	}
	return s, nil
}

// Year is the ledger year the data belongs to.
func (s *Store) Year() int { return s.year }

func (s *Store) Catalog() *core.Catalog { return s.catalog }

// Get returns one cell.
func (s *Store) Get(category core.CategoryID, month int) (float64, error) {
	series, err := s.Series(category)
	if err != nil {
		return 0, err
	}
	if err := core.CheckMonth(month); err != nil {
		return 0, err
	}
	return series[month], nil
}

// Set overwrites one cell. It does nothing else: totals and charts are
// re-derived only when the caller asks for them.
func (s *Store) Set(category core.CategoryID, month int, value float64) error {
	series, err := s.Series(category)
	if err != nil {
		return err
	}
	if err := core.CheckMonth(month); err != nil {
		return err
	}
	if !finite(value) {
		return fmt.Errorf("%w: %s %s", core.ErrNonFinite, category, core.MonthLabel(month))
	}
	series[month] = value
	s.series[category] = series
	return nil
}

// Budget returns the budget for one month.
func (s *Store) Budget(month int) (float64, error) {
	if err := core.CheckMonth(month); err != nil {
		return 0, err
	}
	return s.budget[month], nil
}

func (s *Store) SetBudget(month int, value float64) error {
	if err := core.CheckMonth(month); err != nil {
		return err
	}
	if !finite(value) {
		return fmt.Errorf("%w: budget %s", core.ErrNonFinite, core.MonthLabel(month))
	}
	s.budget[month] = value
	return nil
}

// Series returns a copy of one category's twelve values.
func (s *Store) Series(category core.CategoryID) (core.Series, error) {
	series, ok := s.series[category]
	if !ok {
		return core.Series{}, fmt.Errorf("%w: category %q", core.ErrOutOfRange, category)
	}
	return series, nil
}

func (s *Store) BudgetSeries() core.Series { return s.budget }

// Categories returns the ids of a group in catalog order. The order is the
// legend and row order for every chart and form.
func (s *Store) Categories(g core.Group) []core.CategoryID {
	return s.catalog.IDs(g)
}

// Data snapshots the whole ledger for persistence.
func (s *Store) Data() core.LedgerData {
	d := core.LedgerData{
		Year:     s.year,
		Expenses: make(map[core.CategoryID]core.Series),
		Incomes:  make(map[core.CategoryID]core.Series),
		Budget:   s.budget,
	}
	for _, id := range s.catalog.IDs(core.Expense) {
		d.Expenses[id] = s.series[id]
	}
	for _, id := range s.catalog.IDs(core.Income) {
		d.Incomes[id] = s.series[id]
	}
	return d
}

// Replace swaps in freshly loaded data for the same catalog, as when a
// backend is re-read. The store is left untouched on error.
func (s *Store) Replace(data core.LedgerData) error {
	next, err := New(s.catalog, data)
	if err != nil {
		return err
	}
	*s = *next
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
