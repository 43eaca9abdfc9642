package game

import (
	"slices"

	"github.com/samber/lo"

	"github.com/domino14/hexbot/board"
)

// OrderedMoves lists the legal moves with the most promising ones first:
// the empty neighbours of the mover's chains, biggest chains first, then
// every other empty cell row-major. The order only matters when a search
// is cut short.
func (g *Game) OrderedMoves() []board.Cell {
	if g.Over() {
		return nil
	}
	chains := g.board.Chains(g.onturn)
	slices.SortStableFunc(chains, func(a, b *board.Chain) int {
		return b.Size() - a.Size()
	})
	dim := g.Dim()
	seen := make([]bool, dim*dim)
	moves := make([]board.Cell, 0, dim*dim-g.board.StoneCount())
	for _, ch := range chains {
		for _, c := range ch.Cells() {
			for _, n := range g.board.Neighbors(c) {
				if seen[n.Row*dim+n.Col] || !g.board.GetSquare(n).IsEmpty() {
					continue
				}
				seen[n.Row*dim+n.Col] = true
				moves = append(moves, n)
			}
		}
	}
	rest := lo.Filter(g.board.EmptyCells(), func(c board.Cell, _ int) bool {
		return !seen[c.Row*dim+c.Col]
	})
	return append(moves, rest...)
}
