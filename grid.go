package xlgrid

import (
	"fmt"
	"io"
)

// Column auto-sizing inspects every value written to a column, so it is
// skipped on sheets above autoSizeRowLimit rows and limited to the first
// autoSizeColLimit columns to keep write time bounded.
const (
	autoSizeRowLimit = 2000
	autoSizeColLimit = 10
)

// SheetGrid pairs a sheet name with the grid to write into it. Sheets are
// written in slice order (a map would not preserve the caller's order).
// ColWidths sets explicit display widths per 0-based column; they are
// applied before the first write, so they work in streaming mode where
// flushed columns can no longer be sized.
type SheetGrid struct {
	Name      string
	Grid      Grid
	ColWidths map[int]float64
}

// WriteGrids drives the sheet writers of b over each grid: one WriteCell per
// cell, one Newline per row, column auto-sizing for small sheets. The book
// is left unfinalized so the caller picks the destination.
func WriteGrids(b *Book, sheets []SheetGrid) error {
	for _, sg := range sheets {
		sh, err := b.AddSheet(sg.Name)
		if err != nil {
			return err
		}
		for col, width := range sg.ColWidths {
			if err := sh.SetColWidth(col, width); err != nil {
				return err
			}
		}
		for _, row := range sg.Grid {
			for _, c := range row {
				sh.WriteCell(c)
			}
			sh.Newline()
		}
		if err := sh.Err(); err != nil {
			return fmt.Errorf("sheet %q: %w", sg.Name, err)
		}
		if sh.Rows() < autoSizeRowLimit {
			if err := sh.AutoSize(autoSizeColLimit); err != nil {
				return err
			}
		}
		if err := sh.Close(); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes the grids into a new workbook at path (extension
// normalized to .xlsx) and returns the path written.
func WriteFile(path string, sheets []SheetGrid, opts ...Option) (string, error) {
	b := New(opts...)
	defer b.Close()
	if err := WriteGrids(b, sheets); err != nil {
		return "", err
	}
	return b.SaveAs(path)
}

// Write writes the grids into a new workbook serialized to w. The writer is
// owned by the caller and is not closed.
func Write(w io.Writer, sheets []SheetGrid, opts ...Option) error {
	b := New(opts...)
	defer b.Close()
	if err := WriteGrids(b, sheets); err != nil {
		return err
	}
	return b.Write(w)
}
