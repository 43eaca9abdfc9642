package player

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/domino14/hexbot/board"
	"github.com/domino14/hexbot/equity"
	"github.com/domino14/hexbot/game"
	"github.com/domino14/hexbot/search"
)

// AttenuationPerPly is how much a win loses in value for every move it
// takes. Values are never attenuated; it only sets WinningThreshold, and
// wins are told apart by their searched length instead.
const AttenuationPerPly = 0.1

var ErrNotOnTurn = errors.New("player is not on turn")

// WinningThreshold is the smallest value magnitude that counts as a win on a
// dim×dim board. It lies above every heuristic value a position without a
// winning chain can have.
func WinningThreshold(dim int) float64 {
	n := float64(dim)
	return max(4*n-AttenuationPerPly*n*n, 2*n-1)
}

// IsWinning tells whether v is a winning value for color.
func IsWinning(color board.Color, v float64, dim int) bool {
	return equity.Sign(color)*v >= WinningThreshold(dim)
}

// MoveValue is a legal move with the value of the position it leads to.
type MoveValue struct {
	Cell  board.Cell
	Value float64
	// Wins is set when the move ends the game.
	Wins bool
	// Plies is the length of the searched line the move starts, itself
	// included. It is 0 for moves whose line was not measured.
	Plies int
}

// Selector picks a move for one color out of the values an engine knows.
type Selector struct {
	engine *search.Engine
	color  board.Color
	rng    *frand.RNG
}

func NewSelector(engine *search.Engine, color board.Color, rng *frand.RNG) *Selector {
	if rng == nil {
		rng = frand.New()
	}
	return &Selector{engine: engine, color: color, rng: rng}
}

func (s *Selector) Color() board.Color {
	return s.color
}

// Values lists every legal move of g, row-major, with its value. The line
// length is measured for the moves that win for the selector's color.
func (s *Selector) Values(g *game.Game) ([]MoveValue, error) {
	moves := g.LegalMoves()
	out := make([]MoveValue, 0, len(moves))
	lines := s.engine.Lines()
	for _, m := range moves {
		next, err := g.After(m)
		if err != nil {
			return nil, err
		}
		v := s.engine.PositionValue(next)
		if err := equity.Check(v); err != nil {
			return nil, fmt.Errorf("%w: move %s", err, m)
		}
		mv := MoveValue{Cell: m, Value: v, Wins: next.Over()}
		if IsWinning(s.color, v, g.Dim()) {
			mv.Plies = 1 + lines.Length(next)
		}
		out = append(out, mv)
	}
	return out, nil
}

// ChooseNext picks the move to play in g. A winning move is always taken,
// the one with the shortest searched line if several win. Otherwise moves that do not lose are
// drawn at random, weighted by the size of their value. When every move
// loses, one of the least bad is drawn.
func (s *Selector) ChooseNext(g *game.Game) (board.Cell, error) {
	if g.Over() {
		return board.Cell{}, game.ErrGameOver
	}
	if g.PlayerOnTurn() != s.color {
		return board.Cell{}, fmt.Errorf("%w: %s to move", ErrNotOnTurn, g.PlayerOnTurn())
	}
	values, err := s.Values(g)
	if err != nil {
		return board.Cell{}, err
	}
	return s.choose(values, g.Dim()), nil
}

func (s *Selector) choose(values []MoveValue, dim int) board.Cell {
	winning := lo.Filter(values, func(mv MoveValue, _ int) bool {
		return IsWinning(s.color, mv.Value, dim)
	})
	if len(winning) > 0 {
		immediate := lo.Filter(winning, func(mv MoveValue, _ int) bool {
			return mv.Wins
		})
		if len(immediate) > 0 {
			winning = immediate
		} else {
			winning = shortest(winning)
		}
		return s.pick(s.optimal(winning)).Cell
	}

	opp := s.color.Opponent()
	notLosing := lo.Filter(values, func(mv MoveValue, _ int) bool {
		return !IsWinning(opp, mv.Value, dim)
	})
	if len(notLosing) > 0 {
		return s.pickWeighted(notLosing).Cell
	}
	return s.pick(s.optimal(values)).Cell
}

// shortest keeps the measured moves with the fewest plies, or all of them
// if none was measured.
func shortest(values []MoveValue) []MoveValue {
	measured := lo.Filter(values, func(mv MoveValue, _ int) bool {
		return mv.Plies > 0
	})
	if len(measured) == 0 {
		return values
	}
	least := lo.MinBy(measured, func(a, b MoveValue) bool {
		return a.Plies < b.Plies
	}).Plies
	return lo.Filter(measured, func(mv MoveValue, _ int) bool {
		return mv.Plies == least
	})
}

// optimal keeps the moves with the best value for the selector's color.
func (s *Selector) optimal(values []MoveValue) []MoveValue {
	sign := equity.Sign(s.color)
	best := math.Inf(-1)
	for _, mv := range values {
		best = max(best, sign*mv.Value)
	}
	return lo.Filter(values, func(mv MoveValue, _ int) bool {
		return sign*mv.Value == best
	})
}

func (s *Selector) pick(values []MoveValue) MoveValue {
	return values[s.rng.Intn(len(values))]
}

func (s *Selector) pickWeighted(values []MoveValue) MoveValue {
	total := lo.SumBy(values, func(mv MoveValue) float64 {
		return math.Abs(mv.Value)
	})
	if total == 0 {
		return s.pick(values)
	}
	r := s.unitFloat() * total
	for _, mv := range values {
		r -= math.Abs(mv.Value)
		if r < 0 {
			return mv
		}
	}
	// rounding can leave r at zero past the last positive weight.
	for i := len(values) - 1; i >= 0; i-- {
		if values[i].Value != 0 {
			return values[i]
		}
	}
	return values[len(values)-1]
}

// unitFloat draws uniformly from [0, 1).
func (s *Selector) unitFloat() float64 {
	return float64(s.rng.Uint64n(1<<53)) / (1 << 53)
}
