package google

import (
	"fmt"
	"strings"

	"fincharts/internal/core"
	ports "fincharts/internal/sheets"
)

// parseLedger converts a values matrix (as returned by the Sheets API) into
// ledger data. The matrix is expected to hold a "Category, Jan..Dec" header
// followed by one row per category and a budget row.
func parseLedger(c *core.Catalog, year int, values [][]interface{}) (core.LedgerData, []string, error) {
	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = toStrings(row)
	}
	return ports.ParseGrid(c, year, rows)
}

// ledgerValues is the inverse of parseLedger. Amounts are sent as numbers so
// the sheet can keep its own number format.
func ledgerValues(c *core.Catalog, d core.LedgerData) [][]interface{} {
	grid := ports.Grid(c, d)
	out := make([][]interface{}, len(grid))
	for i, row := range grid {
		vals := make([]interface{}, len(row))
		for j, cell := range row {
			if i == 0 || j == 0 {
				vals[j] = cell
				continue
			}
			v, _ := core.ParseAmount(cell)
			vals[j] = v
		}
		out[i] = vals
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
