package board

import (
	"slices"
	"strings"
)

// A Chain is a maximal group of connected stones of one color. The touch
// flags and the extremal axis coordinates always summarize the current
// members.
type Chain struct {
	id        int
	color     Color
	cells     []Cell
	touchLow  bool
	touchHigh bool
	minCoord  int
	maxCoord  int
}

func newChain(id int, cell Cell, color Color, dim int) *Chain {
	coord := color.Axis(cell)
	return &Chain{
		id:        id,
		color:     color,
		cells:     []Cell{cell},
		touchLow:  coord == 0,
		touchHigh: coord == dim-1,
		minCoord:  coord,
		maxCoord:  coord,
	}
}

func (c *Chain) addCell(cell Cell, dim int) {
	coord := c.color.Axis(cell)
	c.cells = append(c.cells, cell)
	c.touchLow = c.touchLow || coord == 0
	c.touchHigh = c.touchHigh || coord == dim-1
	c.minCoord = min(c.minCoord, coord)
	c.maxCoord = max(c.maxCoord, coord)
}

func (c *Chain) absorb(o *Chain) {
	c.cells = append(c.cells, o.cells...)
	c.touchLow = c.touchLow || o.touchLow
	c.touchHigh = c.touchHigh || o.touchHigh
	c.minCoord = min(c.minCoord, o.minCoord)
	c.maxCoord = max(c.maxCoord, o.maxCoord)
}

func (c *Chain) copy() *Chain {
	cp := *c
	cp.cells = slices.Clone(c.cells)
	return &cp
}

// ID is the arena slot of the chain. Slots are reused after a chain is
// absorbed or broken.
func (c *Chain) ID() int {
	return c.id
}

func (c *Chain) Color() Color {
	return c.color
}

// Cells returns the members in the order they joined the chain. The slice
// must not be modified.
func (c *Chain) Cells() []Cell {
	return c.cells
}

func (c *Chain) Size() int {
	return len(c.cells)
}

// TouchesLow is true if the chain reaches row 0 (White) or column 0 (Black).
func (c *Chain) TouchesLow() bool {
	return c.touchLow
}

// TouchesHigh is true if the chain reaches the last row or column.
func (c *Chain) TouchesHigh() bool {
	return c.touchHigh
}

func (c *Chain) MinCoord() int {
	return c.minCoord
}

func (c *Chain) MaxCoord() int {
	return c.maxCoord
}

// Span is the extent of the chain along its color's connecting axis.
func (c *Chain) Span() int {
	return c.maxCoord - c.minCoord
}

// Winning is true if the chain connects both of its color's edges.
func (c *Chain) Winning() bool {
	return c.touchLow && c.touchHigh
}

// String lists the members row-major, e.g. "A1 C1 A2 B2 B3".
func (c *Chain) String() string {
	sorted := slices.Clone(c.cells)
	slices.SortFunc(sorted, Cell.Compare)
	parts := make([]string, len(sorted))
	for i, cell := range sorted {
		parts[i] = cell.String()
	}
	return strings.Join(parts, " ")
}
