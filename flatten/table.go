// Package flatten turns domain data — tabular records and hierarchical
// account trees — into the logical grids consumed by xlgrid.
package flatten

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/javajack/xlgrid"
)

// Column describes one table column. A cell value comes from the row map at
// Field, unless Expr is set, in which case the expression is evaluated with
// the row map as environment (e.g. "price * qty").
type Column struct {
	Header string
	Field  string
	Expr   string
	Width  float64 // explicit display width; 0 leaves sizing to the driver
	Style  xlgrid.StyleSpec
}

// Table flattens a slice of row maps into a grid: one header row followed by
// one row per record.
type Table struct {
	Columns     []Column
	HeaderStyle xlgrid.StyleSpec // applied to every header cell
	RowStyle    xlgrid.StyleSpec // base style for data cells, merged under per-column styles
}

// Grid builds the grid for the given records. Column expressions are
// compiled once and reused across rows.
func (t *Table) Grid(records []map[string]any) (xlgrid.Grid, error) {
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("flatten table: no columns")
	}

	programs := make([]*vm.Program, len(t.Columns))
	for i, col := range t.Columns {
		if col.Expr == "" {
			continue
		}
		program, err := expr.Compile(col.Expr, expr.Env(map[string]any{}), expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("compile column %q expression %q: %w", col.Header, col.Expr, err)
		}
		programs[i] = program
	}

	grid := make(xlgrid.Grid, 0, len(records)+1)

	header := make(xlgrid.Row, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = xlgrid.Styled(col.Header, t.HeaderStyle)
	}
	grid = append(grid, header)

	for _, rec := range records {
		row := make(xlgrid.Row, len(t.Columns))
		for i, col := range t.Columns {
			var v any
			if programs[i] != nil {
				out, err := expr.Run(programs[i], rec)
				if err != nil {
					return nil, fmt.Errorf("evaluate column %q expression %q: %w", col.Header, col.Expr, err)
				}
				v = out
			} else {
				v = rec[col.Field]
			}
			row[i] = xlgrid.Styled(v, xlgrid.MergeStyles(t.RowStyle, col.Style))
		}
		grid = append(grid, row)
	}

	return grid, nil
}
