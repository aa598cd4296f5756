package xlgrid

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// Cell is one logical grid cell: a value plus an optional style and
// width/height merge directives. Width and Height below 1 are treated as 1
// (a plain, unmerged cell).
type Cell struct {
	Value  any
	Style  StyleSpec
	Width  int
	Height int
}

// Row is an ordered sequence of cells.
type Row []Cell

// Grid is an ordered sequence of rows. Rows may have different lengths;
// keeping merges from overlapping across ragged rows is the caller's job.
type Grid []Row

// V wraps a plain value into a single, unstyled cell.
func V(v any) Cell {
	return Cell{Value: v}
}

// Styled wraps a value with a style specification.
func Styled(v any, style StyleSpec) Cell {
	return Cell{Value: v, Style: style}
}

// Span wraps a value into a cell spanning width columns and height rows.
func Span(v any, width, height int) Cell {
	return Cell{Value: v, Width: width, Height: height}
}

// SpanStyled wraps a value into a styled merged cell.
func SpanStyled(v any, width, height int, style StyleSpec) Cell {
	return Cell{Value: v, Style: style, Width: width, Height: height}
}

// normalized clamps Width and Height to at least 1.
func (c Cell) normalized() Cell {
	if c.Width < 1 {
		c.Width = 1
	}
	if c.Height < 1 {
		c.Height = 1
	}
	return c
}

// Coerce maps an arbitrary value to one the workbook can store natively.
// Booleans, strings, doubles, timestamps and rich text pass through; other
// numeric kinds become float64; everything else falls back to its textual
// representation. Coerce never fails — an odd value in one cell must not
// sink the whole document.
func Coerce(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case bool, string, float64, time.Time:
		return val
	case []excelize.RichTextRun:
		return val
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	default:
		return fmt.Sprint(val)
	}
}

// richTextString flattens rich text runs to their plain concatenated text.
// The streaming backend cannot carry run-level formatting.
func richTextString(runs []excelize.RichTextRun) string {
	var s string
	for _, r := range runs {
		s += r.Text
	}
	return s
}
