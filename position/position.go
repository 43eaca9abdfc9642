// Package position encodes Hex positions as compact strings. A position
// string lists the rows top to bottom separated by '/'; within a row each
// stone is its color marker ('w' or 'b') and each run of empty cells is its
// length, e.g. "wbw/1w1/b1b".
package position

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/domino14/hexbot/board"
)

const Separator = '/'

var ErrBadPosition = errors.New("bad position string")

// FromBoard serializes the board row-major.
func FromBoard(b *board.GameBoard) string {
	var sb strings.Builder
	dim := b.Dim()
	for r := 0; r < dim; r++ {
		if r > 0 {
			sb.WriteByte(Separator)
		}
		run := 0
		for c := 0; c < dim; c++ {
			color := b.Color(board.Cell{Row: r, Col: c})
			if color == board.NoColor {
				run++
				continue
			}
			if run > 0 {
				sb.WriteString(strconv.Itoa(run))
				run = 0
			}
			sb.WriteByte(color.Marker())
		}
		if run > 0 {
			sb.WriteString(strconv.Itoa(run))
		}
	}
	return sb.String()
}

// tokens splits a position string into markers, run lengths and
// separators. Multi-digit run lengths stay one token.
func tokens(s string) []string {
	var toks []string
	for i := 0; i < len(s); {
		j := i + 1
		if isDigit(s[i]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
		}
		toks = append(toks, s[i:j])
		i = j
	}
	return toks
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Reverse reverses the token order of a position string. The result is the
// string of the board rotated by 180 degrees, which is the same position
// for both players since each color's two edges swap with each other.
// Reverse(Reverse(s)) == s.
func Reverse(s string) string {
	toks := tokens(s)
	slices.Reverse(toks)
	return strings.Join(toks, "")
}

// CanonicalString picks the lexicographically greater of s and its
// reverse, so a position and its rotation share one key.
func CanonicalString(s string) string {
	return max(s, Reverse(s))
}

// Canonical is the canonical key of the board's position.
func Canonical(b *board.GameBoard) string {
	return CanonicalString(FromBoard(b))
}

// Stone is a colored cell read from a position string.
type Stone struct {
	Cell  board.Cell
	Color board.Color
}

// Parse reads a position string back into its dimension and stones,
// listed row-major.
func Parse(s string) (int, []Stone, error) {
	rows := strings.Split(s, string(Separator))
	dim := len(rows)
	var stones []Stone
	for r, row := range rows {
		col := 0
		for _, tok := range tokens(row) {
			if isDigit(tok[0]) {
				n, err := strconv.Atoi(tok)
				if err != nil || n == 0 {
					return 0, nil, fmt.Errorf("%w: bad run %q in row %d", ErrBadPosition, tok, r+1)
				}
				col += n
				continue
			}
			color, ok := board.ColorFromMarker(tok[0])
			if !ok {
				return 0, nil, fmt.Errorf("%w: unknown marker %q in row %d", ErrBadPosition, tok, r+1)
			}
			stones = append(stones, Stone{Cell: board.Cell{Row: r, Col: col}, Color: color})
			col++
		}
		if col != dim {
			return 0, nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrBadPosition, r+1, col, dim)
		}
	}
	return dim, stones, nil
}

// ParseBoard builds a board from a position string.
func ParseBoard(s string) (*board.GameBoard, error) {
	dim, stones, err := Parse(s)
	if err != nil {
		return nil, err
	}
	b := board.MakeBoard(dim)
	for _, st := range stones {
		if _, err := b.Place(st.Cell, st.Color); err != nil {
			return nil, err
		}
	}
	return b, nil
}
