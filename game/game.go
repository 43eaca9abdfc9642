// Package game holds the mechanics of a game of Hex: the board, the move
// sequence, whose turn it is and whether someone has won.
package game

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/domino14/hexbot/board"
	"github.com/domino14/hexbot/equity"
	"github.com/domino14/hexbot/position"
)

var (
	// ErrGameOver is returned when playing on a game that has been won. It
	// wraps board.ErrIllegalMove.
	ErrGameOver     = fmt.Errorf("%w: the game is over", board.ErrIllegalMove)
	ErrNoMoveToUndo = errors.New("no move to undo")
)

// Game is a Hex position together with how it was reached. White always
// moves first.
type Game struct {
	board    *board.GameBoard
	sequence []board.Cell
	onturn   board.Color
	winner   board.Color
}

// NewGame starts a game on an empty dim×dim board.
func NewGame(dim int) *Game {
	return &Game{
		board:  board.MakeBoard(dim),
		onturn: board.White,
	}
}

// FromSequence replays the given moves on a new board.
func FromSequence(dim int, moves []board.Cell) (*Game, error) {
	g := NewGame(dim)
	for _, m := range moves {
		if _, err := g.Play(m); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// FromPosition builds a game that reaches the given position string. The
// stones are replayed alternating colors, so White must have as many
// stones as Black or one more. It fails if the replay wins before the last
// stone.
func FromPosition(s string) (*Game, error) {
	dim, stones, err := position.Parse(s)
	if err != nil {
		return nil, err
	}
	var byColor [2][]board.Cell
	for _, st := range stones {
		if st.Color == board.White {
			byColor[0] = append(byColor[0], st.Cell)
		} else {
			byColor[1] = append(byColor[1], st.Cell)
		}
	}
	nw, nb := len(byColor[0]), len(byColor[1])
	if nw != nb && nw != nb+1 {
		return nil, fmt.Errorf("%w: %d white and %d black stones",
			position.ErrBadPosition, nw, nb)
	}
	moves := make([]board.Cell, 0, nw+nb)
	for i := 0; i < nw; i++ {
		moves = append(moves, byColor[0][i])
		if i < nb {
			moves = append(moves, byColor[1][i])
		}
	}
	return FromSequence(dim, moves)
}

// Play puts a stone of the color on turn at c. It returns the winning chain
// if the move wins the game, nil otherwise. On error the game is unchanged.
func (g *Game) Play(c board.Cell) (*board.Chain, error) {
	if g.winner != board.NoColor {
		return nil, ErrGameOver
	}
	ch, err := g.board.Place(c, g.onturn)
	if err != nil {
		return nil, err
	}
	g.sequence = append(g.sequence, c)
	if ch.Winning() {
		g.winner = g.onturn
	}
	g.onturn = g.onturn.Opponent()
	if g.winner != board.NoColor {
		return ch, nil
	}
	return nil, nil
}

// PlayString plays a human move string such as "b2".
func (g *Game) PlayString(s string) (*board.Chain, error) {
	c, err := board.ParseCell(s)
	if err != nil {
		return nil, err
	}
	return g.Play(c)
}

// Undo takes back the last move.
func (g *Game) Undo() error {
	n := len(g.sequence)
	if n == 0 {
		return ErrNoMoveToUndo
	}
	if err := g.board.Unplace(g.sequence[n-1]); err != nil {
		return err
	}
	g.sequence = g.sequence[:n-1]
	g.onturn = g.onturn.Opponent()
	// only the last move can have won, since nothing is played after a win.
	g.winner = board.NoColor
	return nil
}

// Copy returns an independent copy of the game.
func (g *Game) Copy() *Game {
	return &Game{
		board:    g.board.Copy(),
		sequence: slices.Clone(g.sequence),
		onturn:   g.onturn,
		winner:   g.winner,
	}
}

// After returns a copy of the game with c played.
func (g *Game) After(c board.Cell) (*Game, error) {
	cp := g.Copy()
	if _, err := cp.Play(c); err != nil {
		return nil, err
	}
	return cp, nil
}

// Rotated returns the game with every move rotated by 180 degrees. It
// reaches the mirror position of g, which has the same canonical key.
func (g *Game) Rotated() *Game {
	r := NewGame(g.Dim())
	for _, c := range g.sequence {
		// the rotated sequence is legal because the original one is.
		if _, err := r.Play(c.Rotate(g.Dim())); err != nil {
			panic(err)
		}
	}
	return r
}

// LegalMoves lists the empty cells row-major. A won game has no legal moves.
func (g *Game) LegalMoves() []board.Cell {
	if g.Over() {
		return nil
	}
	return g.board.EmptyCells()
}

func (g *Game) Board() *board.GameBoard {
	return g.board
}

func (g *Game) Dim() int {
	return g.board.Dim()
}

// PlyDepth is the number of stones played so far.
func (g *Game) PlyDepth() int {
	return len(g.sequence)
}

// Sequence returns a copy of the moves played.
func (g *Game) Sequence() []board.Cell {
	return slices.Clone(g.sequence)
}

// LastMove returns the last move played, if any.
func (g *Game) LastMove() (board.Cell, bool) {
	if len(g.sequence) == 0 {
		return board.Cell{}, false
	}
	return g.sequence[len(g.sequence)-1], true
}

// PlayerOnTurn is the color that plays next.
func (g *Game) PlayerOnTurn() board.Color {
	return g.onturn
}

// Winner is the color that connected its edges, NoColor if none yet.
func (g *Game) Winner() board.Color {
	return g.winner
}

func (g *Game) Over() bool {
	return g.winner != board.NoColor
}

// RawValue is the static heuristic value of the position.
func (g *Game) RawValue() float64 {
	return equity.RawValue(g.board)
}

func (g *Game) PositionString() string {
	return position.FromBoard(g.board)
}

// CanonicalKey identifies the position up to its 180 degree rotation.
func (g *Game) CanonicalKey() string {
	return position.Canonical(g.board)
}

// SequenceString renders the moves as human cell strings.
func (g *Game) SequenceString() string {
	parts := make([]string, len(g.sequence))
	for i, c := range g.sequence {
		parts[i] = strings.ToLower(c.String())
	}
	return strings.Join(parts, " ")
}
