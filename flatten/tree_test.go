package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajack/xlgrid"
)

func accountTree() []*Node {
	return []*Node{
		{
			Label:  "Assets",
			Values: []any{1500.0},
			Children: []*Node{
				{Label: "Cash", Values: []any{500.0}},
				{
					Label:  "Receivables",
					Values: []any{1000.0},
					Children: []*Node{
						{Label: "Trade", Values: []any{1000.0}},
					},
				},
			},
		},
		{Label: "Liabilities", Values: []any{-300.0}},
	}
}

func TestTreeLayoutGrid(t *testing.T) {
	layout := TreeLayout{
		BranchStyle: xlgrid.StyleSpec{"font": map[string]any{"bold": true}},
	}
	grid := layout.Grid(accountTree())
	require.Len(t, grid, 5)

	labels := make([]string, len(grid))
	for i, row := range grid {
		labels[i] = row[0].Value.(string)
	}
	assert.Equal(t, []string{
		"Assets",
		"  Cash",
		"  Receivables",
		"    Trade",
		"Liabilities",
	}, labels)

	assert.Equal(t, 1500.0, grid[0][1].Value)
	font, ok := grid[0][0].Style["font"].(xlgrid.StyleSpec)
	require.True(t, ok, "branch style applied to parents")
	assert.Equal(t, true, font["bold"])
	assert.Empty(t, grid[1][0].Style, "leaves have no style unless configured")
}

func TestTreeLayoutCustomIndent(t *testing.T) {
	layout := TreeLayout{Indent: "--"}
	grid := layout.Grid([]*Node{{
		Label:    "Root",
		Children: []*Node{{Label: "Child"}},
	}})
	require.Len(t, grid, 2)
	assert.Equal(t, "--Child", grid[1][0].Value)
}

func TestTreeLayoutNodeStyleWins(t *testing.T) {
	layout := TreeLayout{
		LeafStyle: xlgrid.StyleSpec{"font": map[string]any{"size": 9.0}},
	}
	grid := layout.Grid([]*Node{{
		Label: "Total",
		Style: xlgrid.StyleSpec{"font": map[string]any{"bold": true}},
	}})
	require.Len(t, grid, 1)

	font, ok := grid[0][0].Style["font"].(xlgrid.StyleSpec)
	require.True(t, ok)
	assert.Equal(t, true, font["bold"])
	assert.Equal(t, 9.0, font["size"])
}

func TestTreeLayoutNilNodesSkipped(t *testing.T) {
	layout := TreeLayout{}
	grid := layout.Grid([]*Node{nil, {Label: "only"}})
	require.Len(t, grid, 1)
	assert.Equal(t, "only", grid[0][0].Value)
}
