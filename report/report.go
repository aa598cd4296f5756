// Package report renders declarative YAML report definitions: sheets with
// titles and column lists, bound at render time to named record sets.
package report

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/javajack/xlgrid"
	"github.com/javajack/xlgrid/flatten"
)

// Definition is the top-level YAML document.
type Definition struct {
	Sheets []SheetDef `yaml:"sheets"`
}

// SheetDef declares one output sheet. Data names the record set the caller
// binds at render time; an empty Data renders headers only.
type SheetDef struct {
	Name    string          `yaml:"name"`
	Title   string          `yaml:"title"`
	Data    string          `yaml:"data"`
	Columns []ColumnDef     `yaml:"columns"`
	Styles  SheetStyles     `yaml:"styles"`
	Widths  map[int]float64 `yaml:"widths"`
}

// SheetStyles carries the sheet-wide style specs.
type SheetStyles struct {
	Title  map[string]any `yaml:"title"`
	Header map[string]any `yaml:"header"`
	Row    map[string]any `yaml:"row"`
}

// ColumnDef declares one column, by field name or computed expression.
type ColumnDef struct {
	Header string         `yaml:"header"`
	Field  string         `yaml:"field"`
	Expr   string         `yaml:"expr"`
	Width  float64        `yaml:"width"`
	Style  map[string]any `yaml:"style"`
}

var defaultTitleStyle = xlgrid.StyleSpec{
	"font":  map[string]any{"bold": true},
	"align": map[string]any{"horizontal": "center"},
}

var defaultHeaderStyle = xlgrid.StyleSpec{
	"font":   map[string]any{"bold": true},
	"border": "thin",
}

// Load decodes a definition from YAML.
func Load(r io.Reader) (*Definition, error) {
	var d Definition
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode report definition: %w", err)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadFile decodes a definition from a YAML file.
func LoadFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report definition %q: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

func (d *Definition) validate() error {
	if len(d.Sheets) == 0 {
		return fmt.Errorf("report definition has no sheets")
	}
	seen := make(map[string]bool)
	for _, s := range d.Sheets {
		if s.Name == "" {
			return fmt.Errorf("report definition: sheet without a name")
		}
		if seen[s.Name] {
			return fmt.Errorf("report definition: duplicate sheet %q", s.Name)
		}
		seen[s.Name] = true
		if len(s.Columns) == 0 {
			return fmt.Errorf("sheet %q: no columns", s.Name)
		}
		for _, c := range s.Columns {
			if c.Header == "" {
				return fmt.Errorf("sheet %q: column without a header", s.Name)
			}
			if c.Field == "" && c.Expr == "" {
				return fmt.Errorf("sheet %q column %q: needs field or expr", s.Name, c.Header)
			}
		}
	}
	return nil
}

// Grids binds the named record sets to the definition's sheets and builds
// the grids to write. A sheet naming a data key the caller did not provide
// fails fast.
func (d *Definition) Grids(data map[string][]map[string]any) ([]xlgrid.SheetGrid, error) {
	out := make([]xlgrid.SheetGrid, 0, len(d.Sheets))
	for _, s := range d.Sheets {
		var records []map[string]any
		if s.Data != "" {
			var ok bool
			records, ok = data[s.Data]
			if !ok {
				return nil, fmt.Errorf("sheet %q: no data bound for key %q", s.Name, s.Data)
			}
		}

		table := flatten.Table{
			HeaderStyle: styleOrDefault(s.Styles.Header, defaultHeaderStyle),
			RowStyle:    xlgrid.StyleSpec(s.Styles.Row),
		}
		for _, c := range s.Columns {
			table.Columns = append(table.Columns, flatten.Column{
				Header: c.Header,
				Field:  c.Field,
				Expr:   c.Expr,
				Width:  c.Width,
				Style:  xlgrid.StyleSpec(c.Style),
			})
		}

		grid, err := table.Grid(records)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", s.Name, err)
		}

		if s.Title != "" {
			titleRow := xlgrid.Row{
				xlgrid.SpanStyled(s.Title, len(s.Columns), 1, styleOrDefault(s.Styles.Title, defaultTitleStyle)),
			}
			grid = append(xlgrid.Grid{titleRow}, grid...)
		}

		widths := make(map[int]float64, len(s.Widths))
		for col, w := range s.Widths {
			widths[col] = w
		}
		for i, c := range s.Columns {
			if c.Width > 0 {
				widths[i] = c.Width
			}
		}

		out = append(out, xlgrid.SheetGrid{Name: s.Name, Grid: grid, ColWidths: widths})
	}
	return out, nil
}

// Render binds data and writes the workbook to a caller-owned sink.
func (d *Definition) Render(w io.Writer, data map[string][]map[string]any, opts ...xlgrid.Option) error {
	sheets, err := d.Grids(data)
	if err != nil {
		return err
	}
	return xlgrid.Write(w, sheets, opts...)
}

// RenderFile binds data and writes the workbook to path, returning the path
// actually written.
func (d *Definition) RenderFile(path string, data map[string][]map[string]any, opts ...xlgrid.Option) (string, error) {
	sheets, err := d.Grids(data)
	if err != nil {
		return "", err
	}
	return xlgrid.WriteFile(path, sheets, opts...)
}

func styleOrDefault(s map[string]any, def xlgrid.StyleSpec) xlgrid.StyleSpec {
	if len(s) == 0 {
		return def
	}
	return xlgrid.StyleSpec(s)
}
