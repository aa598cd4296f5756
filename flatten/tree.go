package flatten

import (
	"strings"

	"github.com/javajack/xlgrid"
)

// Node is one entry in an account/category hierarchy: a label, the values
// shown next to it (one cell per value), and child nodes rendered below it.
type Node struct {
	Label    string
	Values   []any
	Style    xlgrid.StyleSpec
	Children []*Node
}

// TreeLayout controls how a hierarchy flattens into rows.
type TreeLayout struct {
	Indent      string           // prefix repeated per depth level; default two spaces
	BranchStyle xlgrid.StyleSpec // base style for nodes with children
	LeafStyle   xlgrid.StyleSpec // base style for nodes without children
}

// Grid flattens the trees depth-first: each node becomes one row with its
// label indented by depth, followed by its value cells. Node styles are
// merged over the branch/leaf base style.
func (l *TreeLayout) Grid(roots []*Node) xlgrid.Grid {
	indent := l.Indent
	if indent == "" {
		indent = "  "
	}
	var grid xlgrid.Grid
	for _, root := range roots {
		grid = l.walk(grid, root, 0, indent)
	}
	return grid
}

func (l *TreeLayout) walk(grid xlgrid.Grid, n *Node, depth int, indent string) xlgrid.Grid {
	if n == nil {
		return grid
	}
	base := l.LeafStyle
	if len(n.Children) > 0 {
		base = l.BranchStyle
	}
	style := xlgrid.MergeStyles(base, n.Style)

	row := make(xlgrid.Row, 0, len(n.Values)+1)
	row = append(row, xlgrid.Styled(strings.Repeat(indent, depth)+n.Label, style))
	for _, v := range n.Values {
		row = append(row, xlgrid.Styled(v, style))
	}
	grid = append(grid, row)

	for _, child := range n.Children {
		grid = l.walk(grid, child, depth+1, indent)
	}
	return grid
}
