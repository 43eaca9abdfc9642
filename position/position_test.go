package position

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"lukechampine.com/frand"

	"github.com/domino14/hexbot/board"
)

func randomBoard(dim int) *board.GameBoard {
	b := board.MakeBoard(dim)
	cells := b.EmptyCells()
	frand.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })
	n := frand.Intn(len(cells) + 1)
	for i, c := range cells[:n] {
		b.Place(c, board.Players[i%2])
	}
	return b
}

func rotated(b *board.GameBoard) *board.GameBoard {
	r := board.MakeBoard(b.Dim())
	for _, color := range board.Players {
		for _, ch := range b.Chains(color) {
			for _, c := range ch.Cells() {
				r.Place(c.Rotate(b.Dim()), color)
			}
		}
	}
	return r
}

func TestFromBoard(t *testing.T) {
	is := is.New(t)
	b := board.MakeBoard(2)
	is.Equal(FromBoard(b), "2/2")
	b.Place(board.Cell{Row: 0, Col: 0}, board.White)
	is.Equal(FromBoard(b), "w1/2")
	b.Place(board.Cell{Row: 1, Col: 1}, board.Black)
	is.Equal(FromBoard(b), "w1/1b")
	b.Place(board.Cell{Row: 1, Col: 0}, board.White)
	is.Equal(FromBoard(b), "w1/wb")

	is.Equal(FromBoard(board.MakeBoard(1)), "1")
	is.Equal(FromBoard(board.MakeBoard(11)), "11/11/11/11/11/11/11/11/11/11/11")
}

func TestReverse(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"10/10/10/10/10/10/10/10/10/1w2b5", "5b2w1/10/10/10/10/10/10/10/10/10"},
		{"wbw/1w1/b1b", "b1b/1w1/wbw"},
		{"w1/2", "2/1w"},
		{"1", "1"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.out, Reverse(c.in))
	}
}

func TestReverseIsInvolution(t *testing.T) {
	is := is.New(t)
	for i := 0; i < 200; i++ {
		s := FromBoard(randomBoard(1 + frand.Intn(12)))
		is.Equal(Reverse(Reverse(s)), s)
	}
}

func TestReverseIsRotation(t *testing.T) {
	is := is.New(t)
	for i := 0; i < 200; i++ {
		b := randomBoard(1 + frand.Intn(12))
		is.Equal(Reverse(FromBoard(b)), FromBoard(rotated(b)))
	}
}

func TestCanonicalMatchesRotation(t *testing.T) {
	is := is.New(t)
	for i := 0; i < 200; i++ {
		b := randomBoard(1 + frand.Intn(8))
		is.Equal(Canonical(b), Canonical(rotated(b)))
	}
	is.Equal(CanonicalString("w1/2"), "w1/2")
	is.Equal(CanonicalString("2/1w"), "w1/2")
}

func TestParseRoundTrip(t *testing.T) {
	is := is.New(t)
	for i := 0; i < 100; i++ {
		b := randomBoard(1 + frand.Intn(12))
		s := FromBoard(b)
		parsed, err := ParseBoard(s)
		is.NoErr(err)
		is.Equal(FromBoard(parsed), s)
		is.Equal(parsed.StoneCount(), b.StoneCount())
	}
}

func TestParse(t *testing.T) {
	is := is.New(t)
	dim, stones, err := Parse("wbw/1w1/b1b")
	is.NoErr(err)
	is.Equal(dim, 3)
	is.Equal(len(stones), 7)
	is.Equal(stones[3], Stone{Cell: board.Cell{Row: 1, Col: 1}, Color: board.White})

	for _, bad := range []string{"", "w/2", "wx/2", "3/2", "w0w/3/3", "2/2/"} {
		_, _, err = Parse(bad)
		is.True(errors.Is(err, ErrBadPosition))
	}
}
