package xlgrid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

type point struct {
	X, Y int
}

func TestCoerce(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []excelize.RichTextRun{{Text: "a"}, {Text: "b"}}

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil becomes empty string", nil, ""},
		{"bool passes through", true, true},
		{"string passes through", "hello", "hello"},
		{"float64 passes through", 3.5, 3.5},
		{"time passes through", now, now},
		{"int converts to float64", 7, float64(7)},
		{"int8 converts to float64", int8(-2), float64(-2)},
		{"int64 converts to float64", int64(1 << 40), float64(1 << 40)},
		{"uint converts to float64", uint(9), float64(9)},
		{"uint16 converts to float64", uint16(65535), float64(65535)},
		{"float32 converts to float64", float32(1.5), float64(1.5)},
		{"duration stringifies", 5 * time.Second, "5s"},
		{"composite stringifies", point{1, 2}, "{1 2}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.in))
		})
	}

	assert.Equal(t, runs, Coerce(runs), "rich text passes through")
}

func TestCellConstructors(t *testing.T) {
	c := V("x").normalized()
	assert.Equal(t, 1, c.Width)
	assert.Equal(t, 1, c.Height)

	c = Span("x", 3, 2).normalized()
	assert.Equal(t, 3, c.Width)
	assert.Equal(t, 2, c.Height)

	c = Span("x", 0, -1).normalized()
	assert.Equal(t, 1, c.Width)
	assert.Equal(t, 1, c.Height)

	style := StyleSpec{"font": map[string]any{"bold": true}}
	c = SpanStyled("x", 2, 1, style)
	assert.Equal(t, style, c.Style)
	assert.Equal(t, 2, c.Width)
}

func TestRichTextString(t *testing.T) {
	runs := []excelize.RichTextRun{{Text: "net "}, {Text: "income"}}
	assert.Equal(t, "net income", richTextString(runs))
}
