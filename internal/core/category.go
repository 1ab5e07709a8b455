package core

import (
	"fmt"
	"strings"
)

const (
	Expense Group = "expense"
	Income  Group = "income"
)

type (
	// Group partitions the ledger into expense and income categories.
	Group string

	// CategoryID identifies one category series, e.g. "physiological" or "wage".
	CategoryID string

	Category struct {
		ID          CategoryID
		Group       Group
		Description string
		Color       string // fill, rgba with 0.2 alpha
		BorderColor string // stroke, same hue fully opaque
	}

	// Catalog is the fixed, ordered set of categories a ledger is built from.
	// Order is the legend and form row order for every consumer.
	Catalog struct {
		expenses []Category
		incomes  []Category
		byID     map[CategoryID]Category
	}
)

// BudgetColor and BudgetBorderColor style the budget comparison line.
const (
	BudgetColor       = "rgba(255, 111, 49, 0.2)"
	BudgetBorderColor = "rgba(255, 0, 0, 1)"
)

// Valid reports whether g is one of the two known groups.
func (g Group) Valid() bool {
	return g == Expense || g == Income
}

func (g Group) String() string { return string(g) }

// Noun is the word used for a group in form labels ("Expense", "Income").
func (g Group) Noun() string {
	switch g {
	case Expense:
		return "Expense"
	case Income:
		return "Income"
	default:
		return string(g)
	}
}

func (id CategoryID) String() string { return string(id) }

// Title renders an id the way form labels show it: first letter upper-cased,
// underscores kept ("belonging_love" -> "Belonging_love").
func (id CategoryID) Title() string {
	s := string(id)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// NewCatalog builds a catalog from expense and income categories. IDs must be
// unique across both groups and non-empty.
func NewCatalog(expenses, incomes []Category) (*Catalog, error) {
	c := &Catalog{
		expenses: make([]Category, 0, len(expenses)),
		incomes:  make([]Category, 0, len(incomes)),
		byID:     make(map[CategoryID]Category, len(expenses)+len(incomes)),
	}
	add := func(cat Category, g Group) error {
		id := CategoryID(strings.TrimSpace(string(cat.ID)))
		if id == "" {
			return ErrEmptyCategory
		}
		if _, dup := c.byID[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCategory, id)
		}
		cat.ID = id
		cat.Group = g
		c.byID[id] = cat
		if g == Expense {
			c.expenses = append(c.expenses, cat)
		} else {
			c.incomes = append(c.incomes, cat)
		}
		return nil
	}
	for _, cat := range expenses {
		if err := add(cat, Expense); err != nil {
			return nil, err
		}
	}
	for _, cat := range incomes {
		if err := add(cat, Income); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DefaultCatalog returns the eight needs-based expense categories and the four
// income categories.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultExpenses, defaultIncomes)
	if err != nil {
		panic(err)
	}
	return c
}

// Categories returns the categories of a group in catalog order.
func (c *Catalog) Categories(g Group) []Category {
	switch g {
	case Expense:
		return append([]Category(nil), c.expenses...)
	case Income:
		return append([]Category(nil), c.incomes...)
	default:
		return nil
	}
}

// IDs returns the category ids of a group in catalog order.
func (c *Catalog) IDs(g Group) []CategoryID {
	cats := c.Categories(g)
	ids := make([]CategoryID, len(cats))
	for i, cat := range cats {
		ids[i] = cat.ID
	}
	return ids
}

// Lookup returns the category with the given id.
func (c *Catalog) Lookup(id CategoryID) (Category, bool) {
	cat, ok := c.byID[id]
	return cat, ok
}

// Len is the total number of categories across both groups.
func (c *Catalog) Len() int {
	return len(c.byID)
}

var defaultExpenses = []Category{
	{ID: "physiological", Description: "Basic survival needs like food, water, shelter, sleep.", Color: "rgba(0,48,90, 0.2)", BorderColor: "rgba(0,48,90, 1)"},
	{ID: "safety", Description: "Security, protection from harm, stability, and order.", Color: "rgba(0,75,141, 0.2)", BorderColor: "rgba(0,75,141, 1)"},
	{ID: "belonging_love", Description: "Relationships, friendships, affection, and social connections.", Color: "rgba(0,116,217, 0.2)", BorderColor: "rgba(0,116,217, 1)"},
	{ID: "esteem", Description: "Respect, recognition, self-worth, achievement, and confidence.", Color: "rgba(65,146,217, 0.2)", BorderColor: "rgba(65,146,217, 1)"},
	{ID: "cognitive", Description: "Knowledge, understanding, curiosity, and intellectual exploration.", Color: "rgba(122,186,242, 0.2)", BorderColor: "rgba(122,186,242, 1)"},
	{ID: "aesthetic", Description: "Beauty, balance, harmony, and appreciation of art.", Color: "rgba(120,198,242, 0.2)", BorderColor: "rgba(120,198,242, 1)"},
	{ID: "self_actualization", Description: "Personal growth, reaching full potential, self-fulfillment.", Color: "rgba(120,236,242, 0.2)", BorderColor: "rgba(120,236,242, 1)"},
	{ID: "transcendence", Description: "Helping others, spiritual connection, purpose beyond self.", Color: "rgba(120,242,213, 0.2)", BorderColor: "rgba(120,242,213, 1)"},
}

var defaultIncomes = []Category{
	{ID: "wage", Description: "Earnings from employment or labor, including salaries.", Color: "rgba(85,34,51, 0.2)", BorderColor: "rgba(85,34,51, 1)"},
	{ID: "operational", Description: "Profits from business activities or services rendered.", Color: "rgba(170,51,102, 0.2)", BorderColor: "rgba(170,51,102, 1)"},
	{ID: "property", Description: "Earnings from owning assets like rent, interest, dividends.", Color: "rgba(204,85,153, 0.2)", BorderColor: "rgba(204,85,153, 1)"},
	{ID: "transfer", Description: "Payments from government or others without work exchange.", Color: "rgba(221,153,204, 0.2)", BorderColor: "rgba(221,153,204, 1)"},
}
