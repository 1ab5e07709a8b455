package core

import "fmt"

// LedgerData is the boundary payload exchanged with data sources and
// persistence: every series of one year plus the budget.
type LedgerData struct {
	Year     int
	Expenses map[CategoryID]Series
	Incomes  map[CategoryID]Series
	Budget   Series
}

// CategoryTotal is one category's yearly total, the unit of a pie chart slice.
type CategoryTotal struct {
	Category CategoryID
	Total    float64
}

// SampleSeries is the placeholder series every category starts with.
var SampleSeries = Series{100, 80, 60, 120, 150, 100, 80, 60, 120, 150, 100, 80}

// SampleBudget is the placeholder monthly budget.
const SampleBudget = 300

// SampleData fills every category of the catalog with SampleSeries and the
// budget with SampleBudget.
func SampleData(c *Catalog, year int) LedgerData {
	d := LedgerData{
		Year:     year,
		Expenses: make(map[CategoryID]Series),
		Incomes:  make(map[CategoryID]Series),
		Budget:   Fill(SampleBudget),
	}
	for _, id := range c.IDs(Expense) {
		d.Expenses[id] = SampleSeries
	}
	for _, id := range c.IDs(Income) {
		d.Incomes[id] = SampleSeries
	}
	return d
}

// Group returns the series map for g.
func (d LedgerData) Group(g Group) map[CategoryID]Series {
	switch g {
	case Expense:
		return d.Expenses
	case Income:
		return d.Incomes
	default:
		return nil
	}
}

// Clone deep-copies the maps so the copy can be handed across a boundary.
func (d LedgerData) Clone() LedgerData {
	out := LedgerData{Year: d.Year, Budget: d.Budget}
	if d.Expenses != nil {
		out.Expenses = make(map[CategoryID]Series, len(d.Expenses))
		for k, v := range d.Expenses {
			out.Expenses[k] = v
		}
	}
	if d.Incomes != nil {
		out.Incomes = make(map[CategoryID]Series, len(d.Incomes))
		for k, v := range d.Incomes {
			out.Incomes[k] = v
		}
	}
	return out
}

// Validate checks the year, that every category belongs to the catalog under
// the right group, and that all values are finite.
func (d LedgerData) Validate(c *Catalog) error {
	if d.Year < 1900 || d.Year > 3000 {
		return fmt.Errorf("invalid year %d", d.Year)
	}
	for _, g := range []Group{Expense, Income} {
		for id, s := range d.Group(g) {
			cat, ok := c.Lookup(id)
			if !ok || cat.Group != g {
				return fmt.Errorf("%w: %s category %q", ErrOutOfRange, g, id)
			}
			if err := s.Validate(); err != nil {
				return fmt.Errorf("category %s: %w", id, err)
			}
		}
	}
	if err := d.Budget.Validate(); err != nil {
		return fmt.Errorf("budget: %w", err)
	}
	return nil
}
