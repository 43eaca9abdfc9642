package board

import (
	"fmt"
	"strings"
)

func (s Square) DisplayString() string {
	switch s.color {
	case White:
		return "W"
	case Black:
		return "B"
	}
	return "."
}

// ToDisplayText renders the board as a slanted rhombus, column letters on
// top and 1-based row numbers on the right.
func (g *GameBoard) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString(" ")
	for c := 0; c < g.dim; c++ {
		fmt.Fprintf(&sb, " %c", 'A'+rune(c))
	}
	sb.WriteString("\n")
	for r := 0; r < g.dim; r++ {
		sb.WriteString(strings.Repeat(" ", r+1))
		for c := 0; c < g.dim; c++ {
			sb.WriteString(" ")
			sb.WriteString(g.squares[r*g.dim+c].DisplayString())
		}
		fmt.Fprintf(&sb, "  %d\n", r+1)
	}
	return sb.String()
}
