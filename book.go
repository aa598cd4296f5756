package xlgrid

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const defaultSheetName = "Sheet1"

// Book owns a workbook under construction: its sheets, the style cache they
// share, and the finalize-once lifecycle. Create with New, add sheets, then
// serialize exactly once with Write or SaveAs and release resources with
// Close (defer-friendly, safe after failure).
type Book struct {
	file      *excelize.File
	styles    *styleCache
	sheets    map[string]*Sheet
	order     []string
	streaming bool
	finalized bool
	closed    bool
}

// Options configure a Book at creation time.
type Options struct {
	streaming    bool
	defaultStyle StyleSpec
}

func defaultBookOptions() *Options {
	return &Options{}
}

// Option configures the Book.
type Option func(*Options)

// WithStreaming selects the bounded-memory backing strategy: completed rows
// are flushed to temporary storage instead of held in memory. Required for
// large sheets (tens of thousands of rows); columns cannot be auto-sized
// after rows are flushed.
func WithStreaming() Option {
	return func(o *Options) { o.streaming = true }
}

// WithDefaultStyle sets the style spec every cell style is deep-merged onto.
func WithDefaultStyle(style StyleSpec) Option {
	return func(o *Options) { o.defaultStyle = style }
}

// New creates an empty workbook.
func New(opts ...Option) *Book {
	o := defaultBookOptions()
	for _, opt := range opts {
		opt(o)
	}
	f := excelize.NewFile()
	return &Book{
		file:      f,
		styles:    newStyleCache(f, o.defaultStyle),
		sheets:    make(map[string]*Sheet),
		streaming: o.streaming,
	}
}

// AddSheet creates a sheet writer bound to the book's shared style cache.
// Names are sanitized with SafeSheetName; a name already in use fails fast
// with ErrDuplicateSheet rather than silently overwriting.
func (b *Book) AddSheet(name string) (*Sheet, error) {
	if b.finalized {
		return nil, fmt.Errorf("add sheet %q: %w", name, ErrFinalized)
	}
	name = SafeSheetName(name)
	if name == "" {
		return nil, fmt.Errorf("add sheet: empty name")
	}
	if _, exists := b.sheets[name]; exists {
		return nil, fmt.Errorf("add sheet %q: %w", name, ErrDuplicateSheet)
	}

	if len(b.order) == 0 {
		if name != defaultSheetName {
			if err := b.file.SetSheetName(defaultSheetName, name); err != nil {
				return nil, fmt.Errorf("rename default sheet to %q: %w", name, err)
			}
		}
	} else if _, err := b.file.NewSheet(name); err != nil {
		return nil, fmt.Errorf("create sheet %q: %w", name, err)
	}

	var backend sheetBackend
	if b.streaming {
		sw, err := b.file.NewStreamWriter(name)
		if err != nil {
			return nil, fmt.Errorf("stream writer for sheet %q: %w", name, err)
		}
		backend = &streamSheet{sw: sw}
	} else {
		backend = &bufferedSheet{file: b.file, name: name}
	}

	sh := &Sheet{
		name:      name,
		backend:   backend,
		styles:    b.styles,
		streaming: b.streaming,
		row:       -1,
		col:       -1,
		colWidths: make(map[int]float64),
	}
	b.sheets[name] = sh
	b.order = append(b.order, name)
	return sh, nil
}

// Write finalizes the workbook into a caller-owned sink. The sink is never
// closed here; ownership stays with the caller. A second finalization
// returns ErrFinalized.
func (b *Book) Write(w io.Writer) error {
	return b.finalize(w)
}

// SaveAs finalizes the workbook to a file, appending the .xlsx extension if
// the path lacks it, and returns the path actually written. A partial file
// is removed on failure rather than left looking complete.
func (b *Book) SaveAs(path string) (string, error) {
	path = NormalizePath(path)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create output file %q: %w", path, err)
	}
	if err := b.finalize(out); err != nil {
		out.Close()
		os.Remove(path)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close output file %q: %w", path, err)
	}
	return path, nil
}

func (b *Book) finalize(w io.Writer) error {
	if b.finalized {
		return ErrFinalized
	}
	b.finalized = true
	for _, name := range b.order {
		if err := b.sheets[name].Close(); err != nil {
			return fmt.Errorf("finalize sheet %q: %w", name, err)
		}
	}
	if err := b.file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Close releases the native workbook resources, including any temporary
// backing storage acquired in streaming mode. Idempotent.
func (b *Book) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	return b.file.Close()
}

// NormalizePath cleans a destination path and enforces the .xlsx suffix on
// its last segment.
func NormalizePath(path string) string {
	path = filepath.Clean(path)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return path
	}
	return path + ".xlsx"
}

// SafeSheetName sanitizes a string for use as a sheet name: forbidden
// characters ([]*?/\:) become underscores and the name is truncated to the
// 31-character limit.
func SafeSheetName(name string) string {
	forbidden := []rune{'/', '\\', ':', '*', '?', '[', ']'}
	runes := []rune(name)
	for i, r := range runes {
		for _, f := range forbidden {
			if r == f {
				runes[i] = '_'
				break
			}
		}
	}
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
