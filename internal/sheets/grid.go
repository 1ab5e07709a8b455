package sheets

import (
	"fmt"
	"strings"

	"fincharts/internal/core"
)

// BudgetRow is the row key of the budget series in a ledger grid.
const BudgetRow = "budget"

var gridMonths = [core.MonthsPerYear]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// GridHeader is the first row of a ledger grid.
func GridHeader() []string {
	return append([]string{"Category"}, gridMonths[:]...)
}

// Grid lays a ledger out as rows: header, expense categories, income
// categories, then the budget. This is the shape of both the seed file and the
// spreadsheet tab.
func Grid(c *core.Catalog, d core.LedgerData) [][]string {
	rows := [][]string{GridHeader()}
	row := func(key string, s core.Series) []string {
		r := make([]string, 0, core.MonthsPerYear+1)
		r = append(r, key)
		for _, v := range s {
			r = append(r, core.FormatAmount(v))
		}
		return r
	}
	for _, g := range []core.Group{core.Expense, core.Income} {
		series := d.Group(g)
		for _, id := range c.IDs(g) {
			rows = append(rows, row(id.String(), series[id]))
		}
	}
	return append(rows, row(BudgetRow, d.Budget))
}

// ParseGrid reads a ledger grid. The header must name a Category column and
// all twelve months ("Jan" or "Jan."); columns may come in any order. Blank
// rows, "total" rows and ids the catalog does not know are skipped and
// reported in skipped. Cells are read like form input, so a bad cell is 0.
func ParseGrid(c *core.Catalog, year int, rows [][]string) (d core.LedgerData, skipped []string, err error) {
	d = core.LedgerData{
		Year:     year,
		Expenses: make(map[core.CategoryID]core.Series),
		Incomes:  make(map[core.CategoryID]core.Series),
	}
	if len(rows) == 0 {
		return d, nil, nil
	}

	header := rows[0]
	colCategory := indexOf(header, "Category")
	var colMonth [core.MonthsPerYear]int
	var missing []string
	for i, m := range gridMonths {
		colMonth[i] = indexOf(header, m)
		if colMonth[i] == -1 {
			colMonth[i] = indexOf(header, m+".")
		}
		if colMonth[i] == -1 {
			missing = append(missing, m)
		}
	}
	if colCategory == -1 {
		missing = append([]string{"Category"}, missing...)
	}
	if len(missing) > 0 {
		return core.LedgerData{}, nil, fmt.Errorf("unexpected ledger header: missing %s; got headers=%v", strings.Join(missing, ","), header)
	}

	for _, row := range rows[1:] {
		key := strings.ToLower(strings.TrimSpace(safeGet(row, colCategory)))
		if key == "" || key == "total" {
			continue
		}
		var s core.Series
		for i, col := range colMonth {
			s[i], _ = core.ParseAmount(safeGet(row, col))
		}
		if key == BudgetRow {
			d.Budget = s
			continue
		}
		cat, ok := c.Lookup(core.CategoryID(key))
		if !ok {
			skipped = append(skipped, key)
			continue
		}
		d.Group(cat.Group)[cat.ID] = s
	}
	return d, skipped, nil
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
