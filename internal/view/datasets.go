// Package view turns ledger state into chart datasets and keeps them in step
// with edits through an explicit refresh.
package view

import (
	"fincharts/internal/core"
	"fincharts/internal/ledger"
)

// BudgetLabel names the budget line in the bar chart and the form.
const BudgetLabel = "Budget"

// IncomeStack groups income bars into their own stack next to expenses.
const IncomeStack = "income"

type (
	// BarDataset is one series of the monthly bar chart.
	BarDataset struct {
		Label           string          `json:"label"`
		Category        core.CategoryID `json:"category,omitempty"`
		Type            string          `json:"type,omitempty"`
		Data            []float64       `json:"data"`
		BackgroundColor string          `json:"backgroundColor"`
		BorderColor     string          `json:"borderColor"`
		BorderWidth     int             `json:"borderWidth"`
		BorderDash      []int           `json:"borderDash,omitempty"`
		Fill            *bool           `json:"fill,omitempty"`
		Stack           string          `json:"stack,omitempty"`
	}

	BarChart struct {
		Labels   []string     `json:"labels"`
		Datasets []BarDataset `json:"datasets"`
	}

	// PieChart holds one slice per category of a group, in catalog order.
	PieChart struct {
		Group      core.Group        `json:"group"`
		Labels     []core.CategoryID `json:"labels"`
		Data       []float64         `json:"data"`
		Colors     []string          `json:"backgroundColor"`
		GroupTotal float64           `json:"total"`
	}

	// Bundle is everything a renderer needs after one refresh.
	Bundle struct {
		Version    uint64   `json:"version"`
		Year       int      `json:"year"`
		Bar        BarChart `json:"bar"`
		ExpensePie PieChart `json:"expensePie"`
		IncomePie  PieChart `json:"incomePie"`
	}
)

// BuildBar derives the bar chart: the budget as a dashed line first, then
// expense bars, then income bars stacked together.
func BuildBar(store *ledger.Store, agg *ledger.Aggregator, idx *DatasetIndex) BarChart {
	labels := make([]string, core.MonthsPerYear)
	copy(labels, core.MonthLabels[:])

	noFill := false
	budget := store.BudgetSeries()
	datasets := make([]BarDataset, idx.Len())
	datasets[BudgetPosition] = BarDataset{
		Label:           BudgetLabel,
		Type:            "line",
		Data:            budget.Slice(),
		BackgroundColor: core.BudgetColor,
		BorderColor:     core.BudgetBorderColor,
		BorderWidth:     1,
		BorderDash:      []int{5, 5},
		Fill:            &noFill,
	}

	for _, g := range []core.Group{core.Expense, core.Income} {
		monthly := agg.MonthlyTotals(g)
		for _, cat := range store.Catalog().Categories(g) {
			pos, _ := idx.Position(cat.ID)
			ds := BarDataset{
				Label:           cat.ID.String(),
				Category:        cat.ID,
				Data:            monthly[cat.ID].Slice(),
				BackgroundColor: cat.Color,
				BorderColor:     cat.BorderColor,
				BorderWidth:     1,
			}
			if g == core.Income {
				ds.Stack = IncomeStack
			}
			datasets[pos] = ds
		}
	}
	return BarChart{Labels: labels, Datasets: datasets}
}

// BuildPie derives one pie chart from the yearly totals of a group.
func BuildPie(store *ledger.Store, agg *ledger.Aggregator, g core.Group) PieChart {
	totals := agg.YearlyTotals(g)
	p := PieChart{
		Group:      g,
		Labels:     make([]core.CategoryID, len(totals)),
		Data:       make([]float64, len(totals)),
		Colors:     make([]string, len(totals)),
		GroupTotal: agg.GroupTotal(g),
	}
	for i, ct := range totals {
		p.Labels[i] = ct.Category
		p.Data[i] = ct.Total
		if cat, ok := store.Catalog().Lookup(ct.Category); ok {
			p.Colors[i] = cat.Color
		}
	}
	return p
}
