// Package layout arranges match lists in terminal columns.
package layout

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// DefaultWidth is the terminal width assumed when none is known.
const DefaultWidth = 80

const columnGap = 2

// Grid lays items out in columns filled top to bottom, the way ls does.
type Grid struct {
	items    []string
	cols     int
	rows     int
	colWidth int
}

// NewGrid arranges items to fit width cells. Items wider than the line are
// truncated. Widths are measured in cells, ignoring escape sequences.
func NewGrid(items []string, width int) Grid {
	if width <= 0 {
		width = DefaultWidth
	}

	cells := make([]string, len(items))
	widest := 0
	for i, it := range items {
		if ansi.StringWidth(it) > width {
			it = ansi.Truncate(it, width, "…")
		}
		cells[i] = it
		if w := ansi.StringWidth(it); w > widest {
			widest = w
		}
	}

	g := Grid{items: cells, colWidth: widest + columnGap}
	if len(cells) == 0 {
		return g
	}
	g.cols = (width + columnGap) / g.colWidth
	if g.cols < 1 {
		g.cols = 1
	}
	if g.cols > len(cells) {
		g.cols = len(cells)
	}
	g.rows = (len(cells) + g.cols - 1) / g.cols
	return g
}

// NewList is NewGrid with one item per row.
func NewList(items []string, width int) Grid {
	g := NewGrid(items, width)
	if g.cols > 1 {
		g.cols = 1
		g.rows = len(g.items)
	}
	return g
}

// Rows returns the number of rows.
func (g Grid) Rows() int {
	return g.rows
}

// Cols returns the number of columns.
func (g Grid) Cols() int {
	return g.cols
}

// Index returns the item index at row r and column c, or -1.
func (g Grid) Index(r, c int) int {
	i := c*g.rows + r
	if r < 0 || r >= g.rows || c < 0 || c >= g.cols || i >= len(g.items) {
		return -1
	}
	return i
}

// Row renders row r. decorate, if not nil, may restyle each cell.
func (g Grid) Row(r int, decorate func(index int, cell string) string) string {
	var b strings.Builder
	for c := 0; c < g.cols; c++ {
		i := g.Index(r, c)
		if i < 0 {
			break
		}
		cell := g.items[i]
		pad := g.colWidth - ansi.StringWidth(cell)
		if decorate != nil {
			cell = decorate(i, cell)
		}
		b.WriteString(cell)
		if g.Index(r, c+1) >= 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
	}
	return b.String()
}
