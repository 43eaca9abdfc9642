package equity

import (
	"github.com/domino14/hexbot/board"
)

// Calculator is a static evaluator of a Hex position. Positive values favor
// White, negative values favor Black.
type Calculator interface {
	RawValue(b *board.GameBoard) float64
}
