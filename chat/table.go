package chat

import (
	"sort"

	"github.com/sbai-works/drawctl/types"
)

// BuildTable converts the reply's untyped row objects into an explicit
// ordered column list plus cell rows, resolved once per message instead of
// being re-inferred from the first row's keys at every render site.
// Columns are the sorted union of all row keys; JSON objects carry no key
// order of their own, so sorting is the deterministic choice. Returns nil
// for an empty row set.
func BuildTable(rows []map[string]any) *types.Table {
	if len(rows) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var columns []string
	for _, row := range rows {
		for k := range row {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	table := &types.Table{Columns: columns, Rows: make([][]any, 0, len(rows))}
	for _, row := range rows {
		cells := make([]any, len(columns))
		for i, col := range columns {
			cells[i] = row[col]
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// DisplayRows returns the rows a surface should render (capped at
// DisplayRowCap) and how many rows the cap hid, for the "+N more"
// indicator.
func DisplayRows(t *types.Table) (rows [][]any, hidden int) {
	if t == nil {
		return nil, 0
	}
	if len(t.Rows) <= DisplayRowCap {
		return t.Rows, 0
	}
	return t.Rows[:DisplayRowCap], len(t.Rows) - DisplayRowCap
}
