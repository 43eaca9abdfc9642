package board

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/matryer/is"
	"lukechampine.com/frand"
)

// partition is a normalized description of the chains of one color.
func partition(g *GameBoard, color Color) []string {
	var out []string
	for _, ch := range g.Chains(color) {
		out = append(out, ch.String())
	}
	slices.Sort(out)
	return out
}

func colors(g *GameBoard) string {
	var sb strings.Builder
	for _, sq := range g.squares {
		sb.WriteString(sq.DisplayString())
	}
	return sb.String()
}

func TestPlaceOnSingleCellBoard(t *testing.T) {
	is := is.New(t)
	g := MakeBoard(1)
	ch, err := g.Place(Cell{0, 0}, White)
	is.NoErr(err)
	is.True(ch.Winning())
	is.Equal(len(g.Chains(White)), 1)
	is.Equal(g.StoneCount(), 1)
}

func TestPlaceOccupied(t *testing.T) {
	is := is.New(t)
	g := MakeBoard(3)
	_, err := g.Place(Cell{1, 1}, White)
	is.NoErr(err)
	before := colors(g)
	_, err = g.Place(Cell{1, 1}, Black)
	is.True(errors.Is(err, ErrIllegalMove))
	is.Equal(colors(g), before)
	is.Equal(len(g.Chains(Black)), 0)
	is.Equal(g.StoneCount(), 1)
}

func TestPlaceOutOfBoard(t *testing.T) {
	is := is.New(t)
	g := MakeBoard(3)
	_, err := g.Place(Cell{-1, 0}, White)
	is.True(errors.Is(err, ErrOutOfBoard))
	var oob *OutOfBoardError
	is.True(errors.As(err, &oob))
	is.Equal(oob.Row, -1)
	is.Equal(oob.Col, 0)
	is.Equal(err.Error(), "out of board -1 0")

	_, err = g.Place(Cell{0, 3}, Black)
	is.True(errors.Is(err, ErrOutOfBoard))
	is.Equal(g.StoneCount(), 0)
}

func TestPlaceNoColor(t *testing.T) {
	is := is.New(t)
	g := MakeBoard(3)
	_, err := g.Place(Cell{0, 0}, NoColor)
	is.True(errors.Is(err, ErrIllegalMove))
}

func TestNeighbors(t *testing.T) {
	is := is.New(t)
	g := MakeBoard(3)
	is.Equal(g.Neighbors(Cell{0, 0}), []Cell{{0, 1}, {1, 0}})
	is.Equal(g.Neighbors(Cell{1, 1}), []Cell{{0, 1}, {0, 2}, {1, 0}, {1, 2}, {2, 0}, {2, 1}})
	is.Equal(g.Neighbors(Cell{2, 2}), []Cell{{1, 2}, {2, 1}})
}

func TestMergeChains(t *testing.T) {
	is := is.New(t)
	g := MakeBoard(3)
	_, err := g.Place(Cell{0, 0}, Black)
	is.NoErr(err)
	_, err = g.Place(Cell{0, 2}, Black)
	is.NoErr(err)
	is.Equal(len(g.Chains(Black)), 2)

	ch, err := g.Place(Cell{0, 1}, Black)
	is.NoErr(err)
	is.Equal(len(g.Chains(Black)), 1)
	is.Equal(ch.Size(), 3)
	is.Equal(ch.MinCoord(), 0)
	is.Equal(ch.MaxCoord(), 2)
	is.True(ch.Winning())
	is.Equal(ch.String(), "A1 B1 C1")
	for _, c := range ch.Cells() {
		is.Equal(g.ChainAt(c), ch)
	}
}

func TestMergeKeepsLargestChain(t *testing.T) {
	is := is.New(t)
	g := MakeBoard(4)
	for _, c := range []Cell{{0, 0}, {1, 0}, {2, 0}, {1, 2}} {
		_, err := g.Place(c, White)
		is.NoErr(err)
	}
	big := g.ChainAt(Cell{0, 0})
	is.Equal(big.Size(), 3)
	ch, err := g.Place(Cell{1, 1}, White)
	is.NoErr(err)
	is.Equal(ch, big)
	is.Equal(ch.Size(), 5)
	is.Equal(ch.Span(), 2)
	is.True(ch.TouchesLow())
	is.True(!ch.TouchesHigh())
}

func TestUnplaceSplitsChain(t *testing.T) {
	is := is.New(t)
	g := MakeBoard(3)
	for _, c := range []Cell{{0, 0}, {0, 2}, {0, 1}} {
		_, err := g.Place(c, White)
		is.NoErr(err)
	}
	is.Equal(len(g.Chains(White)), 1)
	is.NoErr(g.Unplace(Cell{0, 1}))
	is.Equal(partition(g, White), []string{"A1", "C1"})
	is.Equal(g.Color(Cell{0, 1}), NoColor)
	is.Equal(g.ChainAt(Cell{0, 1}), nil)
	is.Equal(g.StoneCount(), 2)
}

func TestUnplaceEmpty(t *testing.T) {
	is := is.New(t)
	g := MakeBoard(3)
	err := g.Unplace(Cell{0, 0})
	is.True(errors.Is(err, ErrIllegalMove))
	err = g.Unplace(Cell{5, 0})
	is.True(errors.Is(err, ErrOutOfBoard))
}

func TestPlaceUnplaceRestores(t *testing.T) {
	is := is.New(t)
	for trial := 0; trial < 50; trial++ {
		g := MakeBoard(5)
		cells := g.EmptyCells()
		frand.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })

		// a random prefix stays on the board, the rest is placed and undone.
		prefix := frand.Intn(len(cells))
		for i, c := range cells[:prefix] {
			_, err := g.Place(c, Players[i%2])
			is.NoErr(err)
		}
		snapColors := colors(g)
		snapWhite := partition(g, White)
		snapBlack := partition(g, Black)

		rest := cells[prefix:]
		for i, c := range rest {
			_, err := g.Place(c, Players[(prefix+i)%2])
			is.NoErr(err)
		}
		for i := len(rest) - 1; i >= 0; i-- {
			is.NoErr(g.Unplace(rest[i]))
		}
		is.Equal(colors(g), snapColors)
		is.Equal(partition(g, White), snapWhite)
		is.Equal(partition(g, Black), snapBlack)
		is.Equal(g.StoneCount(), prefix)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	is := is.New(t)
	g := MakeBoard(3)
	_, err := g.Place(Cell{0, 0}, White)
	is.NoErr(err)
	cp := g.Copy()
	_, err = cp.Place(Cell{1, 0}, White)
	is.NoErr(err)
	is.Equal(g.ChainAt(Cell{0, 0}).Size(), 1)
	is.Equal(cp.ChainAt(Cell{0, 0}).Size(), 2)
	is.Equal(g.Color(Cell{1, 0}), NoColor)
}

func TestParseCell(t *testing.T) {
	is := is.New(t)
	c, err := ParseCell("a1")
	is.NoErr(err)
	is.Equal(c, Cell{0, 0})
	c, err = ParseCell("C3")
	is.NoErr(err)
	is.Equal(c, Cell{2, 2})
	is.Equal(c.String(), "C3")
	c, err = ParseCell("b10")
	is.NoErr(err)
	is.Equal(c, Cell{9, 1})

	for _, bad := range []string{"", "a", "1a", "aa", "#3"} {
		_, err = ParseCell(bad)
		is.True(errors.Is(err, ErrInvalidCellString))
	}
}

func TestToDisplayText(t *testing.T) {
	is := is.New(t)
	g := MakeBoard(2)
	_, err := g.Place(Cell{0, 0}, White)
	is.NoErr(err)
	_, err = g.Place(Cell{1, 1}, Black)
	is.NoErr(err)
	is.Equal(g.ToDisplayText(), "  A B\n  W .  1\n   . B  2\n")
}

func BenchmarkPlaceUnplace(b *testing.B) {
	g := MakeBoard(11)
	cells := g.EmptyCells()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j, c := range cells {
			g.Place(c, Players[j%2])
		}
		for j := len(cells) - 1; j >= 0; j-- {
			g.Unplace(cells[j])
		}
	}
}
