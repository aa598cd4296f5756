package xlgrid

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet writes one worksheet through an explicit cursor: cells are placed
// left to right, rows top to bottom, and neither cursor ever moves backward.
// Write calls chain; the first failure sticks and short-circuits the rest,
// surfaced by Err and Close.
//
// A Sheet is exclusively owned by one goroutine.
type Sheet struct {
	name      string
	backend   sheetBackend
	styles    *styleCache
	streaming bool

	row     int  // current row index, -1 until the first write
	col     int  // current column index within the row, reset to -1 per row
	rowOpen bool // a row has been lazily started by a write

	rows      int // rows that received at least one write
	merges    []mergeRegion
	colWidths map[int]float64 // max content width seen per column (buffered mode)
	fixedCols map[int]bool    // columns with caller-set widths, exempt from AutoSize

	err    error
	closed bool
}

// mergeRegion is a rectangular merged span, all bounds inclusive, 0-based.
type mergeRegion struct {
	r1, c1, r2, c2 int
}

func (m mergeRegion) overlaps(o mergeRegion) bool {
	return m.r1 <= o.r2 && o.r1 <= m.r2 && m.c1 <= o.c2 && o.c1 <= m.c2
}

func (m mergeRegion) String() string {
	return cellName(m.r1, m.c1) + ":" + cellName(m.r2, m.c2)
}

// cellName renders 0-based coordinates as an A1-style reference.
func cellName(row, col int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row+1)
	return name
}

// sheetBackend is the storage strategy behind a Sheet: fully buffered in the
// workbook object, or streamed row-by-row with a bounded window.
type sheetBackend interface {
	setCell(row, col int, v any, styleID int) error
	merge(r mergeRegion) error
	setColWidth(col int, width float64) error
	endRow(row int) error
	close() error
}

// Write appends a plain single cell at the next column of the current row,
// lazily starting a new row after a Newline.
func (s *Sheet) Write(v any) *Sheet {
	return s.WriteCell(V(v))
}

// WriteCell appends a cell, honoring its style and merge directives. A cell
// spanning w columns registers a merged region and leaves the cursor on the
// region's last column, so the next write lands just past the merged block.
func (s *Sheet) WriteCell(c Cell) *Sheet {
	if s.err != nil {
		return s
	}
	if s.closed {
		s.err = fmt.Errorf("write to sheet %q: %w", s.name, ErrSheetClosed)
		return s
	}
	c = c.normalized()

	if !s.rowOpen {
		s.row++
		s.col = -1
		s.rowOpen = true
		s.rows++
	}
	s.col++
	col := s.col

	if c.Width > 1 || c.Height > 1 {
		region := mergeRegion{r1: s.row, c1: col, r2: s.row + c.Height - 1, c2: col + c.Width - 1}
		for _, m := range s.merges {
			if region.overlaps(m) {
				s.err = fmt.Errorf("sheet %q: merge %s overlaps %s: %w", s.name, region, m, ErrLayout)
				return s
			}
		}
		if err := s.backend.merge(region); err != nil {
			s.err = fmt.Errorf("sheet %q: merge %s: %w", s.name, region, err)
			return s
		}
		s.merges = append(s.merges, region)
		s.col = col + c.Width - 1
	}

	v := Coerce(c.Value)

	styleID := 0
	if len(c.Style) > 0 {
		id, err := s.styles.resolve(c.Style)
		if err != nil {
			s.err = fmt.Errorf("sheet %q: style for %s: %w", s.name, cellName(s.row, col), err)
			return s
		}
		styleID = id
	}

	if err := s.backend.setCell(s.row, col, v, styleID); err != nil {
		s.err = fmt.Errorf("sheet %q: write %s: %w", s.name, cellName(s.row, col), err)
		return s
	}
	if !s.streaming {
		s.trackWidth(col, v)
	}
	return s
}

// Newline ends the current row. The next row is not created until the next
// write, so a trailing Newline leaves no empty row in the output.
func (s *Sheet) Newline() *Sheet {
	if s.err != nil {
		return s
	}
	if s.closed {
		s.err = fmt.Errorf("newline on sheet %q: %w", s.name, ErrSheetClosed)
		return s
	}
	if s.rowOpen {
		if err := s.backend.endRow(s.row); err != nil {
			s.err = fmt.Errorf("sheet %q: flush row %d: %w", s.name, s.row+1, err)
			return s
		}
	}
	s.rowOpen = false
	s.col = -1
	return s
}

// Err returns the first error recorded by a chained call, if any.
func (s *Sheet) Err() error {
	return s.err
}

// Rows returns the number of rows that received at least one write.
func (s *Sheet) Rows() int {
	return s.rows
}

// SetColWidth sets an explicit display width for a 0-based column. In
// streaming mode this must happen before the first write on the sheet.
func (s *Sheet) SetColWidth(col int, width float64) error {
	if err := s.backend.setColWidth(col, width); err != nil {
		return fmt.Errorf("sheet %q: set width of column %d: %w", s.name, col+1, err)
	}
	if s.fixedCols == nil {
		s.fixedCols = make(map[int]bool)
	}
	s.fixedCols[col] = true
	return nil
}

// AutoSize sets each of the first maxCols columns to fit the widest value
// written to it. Streamed rows are no longer mutable, so in streaming mode
// this is a no-op; set widths up front with SetColWidth instead.
func (s *Sheet) AutoSize(maxCols int) error {
	if s.streaming {
		return nil
	}
	const maxWidth = 80
	for col, chars := range s.colWidths {
		if col >= maxCols || s.fixedCols[col] {
			continue
		}
		width := chars + 2
		if width > maxWidth {
			width = maxWidth
		}
		if err := s.backend.setColWidth(col, width); err != nil {
			return fmt.Errorf("sheet %q: auto-size column %d: %w", s.name, col+1, err)
		}
	}
	return nil
}

// Close flushes any pending row, applies page-fit print settings and seals
// the sheet. Serialization itself is the book's concern. Close is idempotent
// and returns the sheet's sticky error, if any.
func (s *Sheet) Close() error {
	if s.closed {
		return s.err
	}
	s.closed = true
	if s.err != nil {
		return s.err
	}
	if s.rowOpen {
		if err := s.backend.endRow(s.row); err != nil {
			s.err = fmt.Errorf("sheet %q: flush row %d: %w", s.name, s.row+1, err)
			return s.err
		}
		s.rowOpen = false
	}
	if err := s.backend.close(); err != nil {
		s.err = fmt.Errorf("close sheet %q: %w", s.name, err)
	}
	return s.err
}

func (s *Sheet) trackWidth(col int, v any) {
	var text string
	switch t := v.(type) {
	case string:
		text = t
	case []excelize.RichTextRun:
		text = richTextString(t)
	default:
		text = fmt.Sprint(t)
	}
	w := float64(len([]rune(text)))
	if w > s.colWidths[col] {
		s.colWidths[col] = w
	}
}

// bufferedSheet keeps the whole sheet in the workbook object until finalize.
type bufferedSheet struct {
	file *excelize.File
	name string
}

func (b *bufferedSheet) setCell(row, col int, v any, styleID int) error {
	cell := cellName(row, col)
	if runs, ok := v.([]excelize.RichTextRun); ok {
		if err := b.file.SetCellRichText(b.name, cell, runs); err != nil {
			return err
		}
	} else if err := b.file.SetCellValue(b.name, cell, v); err != nil {
		return err
	}
	if styleID > 0 {
		return b.file.SetCellStyle(b.name, cell, cell, styleID)
	}
	return nil
}

func (b *bufferedSheet) merge(r mergeRegion) error {
	return b.file.MergeCell(b.name, cellName(r.r1, r.c1), cellName(r.r2, r.c2))
}

func (b *bufferedSheet) setColWidth(col int, width float64) error {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return err
	}
	return b.file.SetColWidth(b.name, name, name, width)
}

func (b *bufferedSheet) endRow(int) error {
	return nil
}

func (b *bufferedSheet) close() error {
	fit := true
	if err := b.file.SetSheetProps(b.name, &excelize.SheetPropsOptions{FitToPage: &fit}); err != nil {
		return err
	}
	one := 1
	return b.file.SetPageLayout(b.name, &excelize.PageLayoutOptions{FitToWidth: &one})
}

// streamSheet buffers only the row in progress; completed rows are handed to
// the excelize stream writer, which spills them to temporary storage. Peak
// memory stays bounded by the widest row, not the sheet size.
type streamSheet struct {
	sw  *excelize.StreamWriter
	cur []any
}

func (s *streamSheet) setCell(row, col int, v any, styleID int) error {
	if runs, ok := v.([]excelize.RichTextRun); ok {
		v = richTextString(runs)
	}
	for len(s.cur) < col {
		s.cur = append(s.cur, excelize.Cell{})
	}
	s.cur = append(s.cur, excelize.Cell{Value: v, StyleID: styleID})
	return nil
}

func (s *streamSheet) merge(r mergeRegion) error {
	return s.sw.MergeCell(cellName(r.r1, r.c1), cellName(r.r2, r.c2))
}

func (s *streamSheet) setColWidth(col int, width float64) error {
	return s.sw.SetColWidth(col+1, col+1, width)
}

func (s *streamSheet) endRow(row int) error {
	if len(s.cur) == 0 {
		return nil
	}
	if err := s.sw.SetRow(cellName(row, 0), s.cur); err != nil {
		return err
	}
	s.cur = nil
	return nil
}

func (s *streamSheet) close() error {
	return s.sw.Flush()
}
