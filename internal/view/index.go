package view

import (
	"errors"
	"fmt"

	"fincharts/internal/core"
)

// BudgetPosition is the bar chart slot of the budget line.
const BudgetPosition = 0

// ErrIndexMismatch is returned when a derived chart no longer lines up with
// the dataset index.
var ErrIndexMismatch = errors.New("dataset index mismatch")

// IndexEntry ties one category to its bar chart dataset slot.
type IndexEntry struct {
	Category core.CategoryID
	Group    core.Group
	Position int
}

// DatasetIndex is the ordered (category, dataset) table for the bar chart,
// built once from the catalog. Positions are never inferred from write order.
type DatasetIndex struct {
	entries []IndexEntry
	byID    map[core.CategoryID]int
}

// NewDatasetIndex lays out the budget at position 0, expenses next and
// incomes last, each in catalog order.
func NewDatasetIndex(c *core.Catalog) *DatasetIndex {
	idx := &DatasetIndex{byID: make(map[core.CategoryID]int, c.Len())}
	pos := BudgetPosition + 1
	for _, g := range []core.Group{core.Expense, core.Income} {
		for _, id := range c.IDs(g) {
			idx.entries = append(idx.entries, IndexEntry{Category: id, Group: g, Position: pos})
			idx.byID[id] = pos
			pos++
		}
	}
	return idx
}

// Len is the number of bar datasets, budget included.
func (idx *DatasetIndex) Len() int { return len(idx.entries) + 1 }

// Entries returns the table in position order.
func (idx *DatasetIndex) Entries() []IndexEntry {
	return append([]IndexEntry(nil), idx.entries...)
}

// Position returns the dataset slot of a category.
func (idx *DatasetIndex) Position(id core.CategoryID) (int, bool) {
	pos, ok := idx.byID[id]
	return pos, ok
}

// Verify checks that every dataset of a derived bar chart sits where the
// index says it should.
func (idx *DatasetIndex) Verify(bar BarChart) error {
	if len(bar.Datasets) != idx.Len() {
		return fmt.Errorf("%w: %d datasets, index has %d", ErrIndexMismatch, len(bar.Datasets), idx.Len())
	}
	if bar.Datasets[BudgetPosition].Label != BudgetLabel {
		return fmt.Errorf("%w: position %d is %q, want budget", ErrIndexMismatch, BudgetPosition, bar.Datasets[BudgetPosition].Label)
	}
	for _, e := range idx.entries {
		ds := bar.Datasets[e.Position]
		if ds.Category != e.Category {
			return fmt.Errorf("%w: position %d holds %q, want %q", ErrIndexMismatch, e.Position, ds.Category, e.Category)
		}
		if len(ds.Data) != core.MonthsPerYear {
			return fmt.Errorf("%w: %s has %d values", ErrIndexMismatch, e.Category, len(ds.Data))
		}
	}
	return nil
}

// VerifyPie checks a pie chart against the catalog order of its group.
func VerifyPie(c *core.Catalog, p PieChart) error {
	ids := c.IDs(p.Group)
	if len(p.Labels) != len(ids) || len(p.Data) != len(ids) {
		return fmt.Errorf("%w: %s pie has %d slices, want %d", ErrIndexMismatch, p.Group, len(p.Data), len(ids))
	}
	for i, id := range ids {
		if p.Labels[i] != id {
			return fmt.Errorf("%w: %s pie slice %d is %q, want %q", ErrIndexMismatch, p.Group, i, p.Labels[i], id)
		}
	}
	return nil
}
