package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Color is the owner of a square. The zero value is an empty square.
type Color uint8

const (
	NoColor Color = iota
	// White moves first and connects the top row to the bottom row.
	White
	// Black connects the leftmost column to the rightmost column.
	Black
)

// Players lists the two colors in move order.
var Players = [2]Color{White, Black}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return "none"
}

// Opponent returns the other player. NoColor is its own opponent.
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}
	return NoColor
}

// Marker is the single character used for this color in position strings.
func (c Color) Marker() byte {
	switch c {
	case White:
		return 'w'
	case Black:
		return 'b'
	}
	return ' '
}

// ColorFromMarker is the inverse of Marker.
func ColorFromMarker(m byte) (Color, bool) {
	switch m {
	case 'w':
		return White, true
	case 'b':
		return Black, true
	}
	return NoColor, false
}

// Axis returns the coordinate of the cell along the axis this color is
// trying to connect: the row for White, the column for Black.
func (c Color) Axis(cell Cell) int {
	if c == Black {
		return cell.Col
	}
	return cell.Row
}

// Cell is a (row, col) coordinate on the board.
type Cell struct {
	Row int
	Col int
}

// String renders the cell as a column letter followed by a 1-based row,
// e.g. A1 for (0, 0).
func (c Cell) String() string {
	return fmt.Sprintf("%c%d", 'A'+rune(c.Col), c.Row+1)
}

// Compare orders cells row-major.
func (c Cell) Compare(o Cell) int {
	switch {
	case c.Row < o.Row:
		return -1
	case c.Row > o.Row:
		return 1
	case c.Col < o.Col:
		return -1
	case c.Col > o.Col:
		return 1
	}
	return 0
}

// Rotate returns the image of the cell under a 180 degree rotation of a
// board of the given dimension.
func (c Cell) Rotate(dim int) Cell {
	return Cell{Row: dim - 1 - c.Row, Col: dim - 1 - c.Col}
}

var ErrInvalidCellString = errors.New("invalid cell")

// ParseCell parses a human cell string such as "a1" or "C3". It does not
// check the board bounds.
func ParseCell(s string) (Cell, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Cell{}, fmt.Errorf("%w: %q", ErrInvalidCellString, s)
	}
	letter := rune(s[0])
	if !unicode.IsLetter(letter) || letter > unicode.MaxASCII {
		return Cell{}, fmt.Errorf("%w: invalid column in %q", ErrInvalidCellString, s)
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil {
		return Cell{}, fmt.Errorf("%w: invalid row in %q", ErrInvalidCellString, s)
	}
	return Cell{Row: row - 1, Col: int(unicode.ToUpper(letter) - 'A')}, nil
}
