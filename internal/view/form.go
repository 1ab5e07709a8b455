package view

import (
	"fmt"
	"strings"

	"fincharts/internal/core"
	"fincharts/internal/ledger"
)

// Field is one text input of a month tab.
type Field struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Placeholder string          `json:"placeholder"`
	Value       string          `json:"value"`
	Color       string          `json:"color"`
	Category    core.CategoryID `json:"category,omitempty"`
	Group       core.Group      `json:"group,omitempty"`
	Month       int             `json:"month"`
}

// Form is the content of one month tab: expense fields, income fields and
// the budget field.
type Form struct {
	Month    int     `json:"month"`
	Label    string  `json:"label"`
	Expenses []Field `json:"expenses"`
	Incomes  []Field `json:"incomes"`
	Budget   Field   `json:"budget"`
}

// Fields returns every field in display order, budget last.
func (f Form) Fields() []Field {
	out := make([]Field, 0, len(f.Expenses)+len(f.Incomes)+1)
	out = append(out, f.Expenses...)
	out = append(out, f.Incomes...)
	return append(out, f.Budget)
}

// BuildForm generates the fields for one month from the current ledger.
func BuildForm(store *ledger.Store, month int) (Form, error) {
	if err := core.CheckMonth(month); err != nil {
		return Form{}, err
	}
	label := core.MonthLabel(month)
	f := Form{Month: month, Label: label}

	for _, g := range []core.Group{core.Expense, core.Income} {
		for _, cat := range store.Catalog().Categories(g) {
			v, err := store.Get(cat.ID, month)
			if err != nil {
				return Form{}, err
			}
			field := Field{
				Name:        fmt.Sprintf("%s %s %s", label, cat.ID.Title(), g.Noun()),
				Description: cat.Description,
				Placeholder: fmt.Sprintf("Enter %s %s", cat.ID, strings.ToLower(g.Noun())),
				Value:       core.FormatAmount(v),
				Color:       cat.Color,
				Category:    cat.ID,
				Group:       g,
				Month:       month,
			}
			if g == core.Expense {
				f.Expenses = append(f.Expenses, field)
			} else {
				f.Incomes = append(f.Incomes, field)
			}
		}
	}

	b, err := store.Budget(month)
	if err != nil {
		return Form{}, err
	}
	f.Budget = Field{
		Name:        label + " " + BudgetLabel,
		Description: "Set the budget for " + label,
		Placeholder: "Enter budget",
		Value:       core.FormatAmount(b),
		Color:       core.BudgetColor,
		Month:       month,
	}
	return f, nil
}
