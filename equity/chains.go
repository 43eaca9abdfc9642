package equity

import (
	"errors"
	"math"

	"github.com/domino14/hexbot/board"
)

var ErrInvalidValuation = errors.New("invalid valuation: not a number")

// WinningValue is the magnitude of the value of a won position.
func WinningValue(dim int) float64 {
	return float64(4 * dim)
}

// Sign is +1 for White and -1 for Black.
func Sign(c board.Color) float64 {
	switch c {
	case board.White:
		return 1
	case board.Black:
		return -1
	}
	return 0
}

// Check returns ErrInvalidValuation if v is NaN.
func Check(v float64) error {
	if math.IsNaN(v) {
		return ErrInvalidValuation
	}
	return nil
}

// ChainValue scores one chain: a winning chain is worth the winning value;
// otherwise its span along its axis, doubled if it touches either edge.
func ChainValue(c *board.Chain, dim int) float64 {
	if c.Winning() {
		return WinningValue(dim)
	}
	v := float64(c.Span())
	if c.TouchesLow() || c.TouchesHigh() {
		v *= 2
	}
	return v
}

func bestChainValue(b *board.GameBoard, color board.Color) float64 {
	best := 0.0
	for _, ch := range b.Chains(color) {
		best = max(best, ChainValue(ch, b.Dim()))
	}
	return best
}

// ChainHeuristic compares the best chain of each color.
type ChainHeuristic struct{}

func NewChainHeuristic() *ChainHeuristic {
	return &ChainHeuristic{}
}

func (ChainHeuristic) RawValue(b *board.GameBoard) float64 {
	return RawValue(b)
}

// RawValue is the static value of a position. If either color has a
// winning chain the value is exactly the winning value with that color's
// sign. Otherwise it is 0 with fewer than two stones and White's best chain
// value minus Black's from then on.
func RawValue(b *board.GameBoard) float64 {
	win := WinningValue(b.Dim())
	maxWhite := bestChainValue(b, board.White)
	if maxWhite == win {
		return win
	}
	maxBlack := bestChainValue(b, board.Black)
	if maxBlack == win {
		return -win
	}
	if b.StoneCount() < 2 {
		return 0
	}
	return maxWhite - maxBlack
}
