package board

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrOutOfBoard  = errors.New("out of board")
)

// OutOfBoardError reports coordinates outside [0, dim).
type OutOfBoardError struct {
	Row int
	Col int
}

func (e *OutOfBoardError) Error() string {
	return fmt.Sprintf("out of board %d %d", e.Row, e.Col)
}

func (e *OutOfBoardError) Is(target error) bool {
	return target == ErrOutOfBoard
}

// A Square is a single cell of the board: its owner, if any, and the arena
// slot of the chain it belongs to (-1 when empty).
type Square struct {
	color Color
	chain int
}

func (s Square) Color() Color {
	return s.color
}

func (s Square) IsEmpty() bool {
	return s.color == NoColor
}

// neighborOffsets are the six hex neighbours of (r, c) on the rhombus.
var neighborOffsets = [6][2]int{
	{-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0},
}

// GameBoard is an N×N Hex board that keeps its chains up to date as stones
// are placed and removed.
type GameBoard struct {
	dim     int
	squares []Square
	// chains is an arena; nil slots are free and listed in freeSlots.
	chains    []*Chain
	freeSlots []int
	// live holds the arena slots of each color's chains in creation order.
	live   [3][]int
	stones int
}

// MakeBoard creates an empty board of the given dimension.
func MakeBoard(dim int) *GameBoard {
	if dim < 1 {
		panic(fmt.Sprintf("board dimension must be positive, got %d", dim))
	}
	g := &GameBoard{
		dim:     dim,
		squares: make([]Square, dim*dim),
	}
	for i := range g.squares {
		g.squares[i].chain = -1
	}
	return g
}

func (g *GameBoard) Dim() int {
	return g.dim
}

// StoneCount is the number of occupied squares.
func (g *GameBoard) StoneCount() int {
	return g.stones
}

func (g *GameBoard) posExists(row, col int) bool {
	return row >= 0 && row < g.dim && col >= 0 && col < g.dim
}

func (g *GameBoard) idx(c Cell) int {
	return c.Row*g.dim + c.Col
}

func (g *GameBoard) checkBounds(c Cell) error {
	if !g.posExists(c.Row, c.Col) {
		return &OutOfBoardError{Row: c.Row, Col: c.Col}
	}
	return nil
}

// Contains is true if the cell is on the board.
func (g *GameBoard) Contains(c Cell) bool {
	return g.posExists(c.Row, c.Col)
}

// GetSquare returns the square at the cell. The cell must be on the board.
func (g *GameBoard) GetSquare(c Cell) Square {
	return g.squares[g.idx(c)]
}

// Color returns the owner of the cell, NoColor if empty or off the board.
func (g *GameBoard) Color(c Cell) Color {
	if !g.Contains(c) {
		return NoColor
	}
	return g.squares[g.idx(c)].color
}

// ChainAt returns the chain holding the stone at c, or nil.
func (g *GameBoard) ChainAt(c Cell) *Chain {
	if !g.Contains(c) {
		return nil
	}
	slot := g.squares[g.idx(c)].chain
	if slot < 0 {
		return nil
	}
	return g.chains[slot]
}

// Chains returns the live chains of a color in creation order.
func (g *GameBoard) Chains(color Color) []*Chain {
	slots := g.live[color]
	out := make([]*Chain, len(slots))
	for i, s := range slots {
		out[i] = g.chains[s]
	}
	return out
}

// Neighbors returns the on-board hex neighbours of c.
func (g *GameBoard) Neighbors(c Cell) []Cell {
	out := make([]Cell, 0, 6)
	for _, off := range neighborOffsets {
		r, col := c.Row+off[0], c.Col+off[1]
		if g.posExists(r, col) {
			out = append(out, Cell{Row: r, Col: col})
		}
	}
	return out
}

// EmptyCells lists the empty squares row-major.
func (g *GameBoard) EmptyCells() []Cell {
	out := make([]Cell, 0, len(g.squares)-g.stones)
	for i, sq := range g.squares {
		if sq.IsEmpty() {
			out = append(out, Cell{Row: i / g.dim, Col: i % g.dim})
		}
	}
	return out
}

func (g *GameBoard) allocChain(cell Cell, color Color) *Chain {
	var slot int
	if n := len(g.freeSlots); n > 0 {
		slot = g.freeSlots[n-1]
		g.freeSlots = g.freeSlots[:n-1]
	} else {
		slot = len(g.chains)
		g.chains = append(g.chains, nil)
	}
	ch := newChain(slot, cell, color, g.dim)
	g.chains[slot] = ch
	g.live[color] = append(g.live[color], slot)
	return ch
}

func (g *GameBoard) releaseChain(ch *Chain) {
	g.chains[ch.id] = nil
	g.freeSlots = append(g.freeSlots, ch.id)
	if i := slices.Index(g.live[ch.color], ch.id); i >= 0 {
		g.live[ch.color] = slices.Delete(g.live[ch.color], i, i+1)
	}
}

// Place puts a stone of the given color on c and updates the chains. It
// returns the chain that now holds c. Nothing is modified if an error is
// returned.
func (g *GameBoard) Place(c Cell, color Color) (*Chain, error) {
	if err := g.checkBounds(c); err != nil {
		return nil, err
	}
	if color != White && color != Black {
		return nil, fmt.Errorf("%w: cannot place color %v", ErrIllegalMove, color)
	}
	sq := &g.squares[g.idx(c)]
	if !sq.IsEmpty() {
		return nil, fmt.Errorf("%w: %v is occupied", ErrIllegalMove, c)
	}
	sq.color = color
	g.stones++

	// Distinct neighbouring chains of the same color, in discovery order.
	var found [6]int
	nfound := 0
	for _, off := range neighborOffsets {
		r, col := c.Row+off[0], c.Col+off[1]
		if !g.posExists(r, col) {
			continue
		}
		nsq := g.squares[r*g.dim+col]
		if nsq.color != color {
			continue
		}
		if !slices.Contains(found[:nfound], nsq.chain) {
			found[nfound] = nsq.chain
			nfound++
		}
	}
	if nfound == 0 {
		ch := g.allocChain(c, color)
		sq.chain = ch.id
		return ch, nil
	}
	// The largest chain survives; the others are relabelled into it.
	survivor := g.chains[found[0]]
	for _, slot := range found[1:nfound] {
		if g.chains[slot].Size() > survivor.Size() {
			survivor = g.chains[slot]
		}
	}
	survivor.addCell(c, g.dim)
	sq.chain = survivor.id
	for _, slot := range found[:nfound] {
		if slot == survivor.id {
			continue
		}
		absorbed := g.chains[slot]
		for _, m := range absorbed.cells {
			g.squares[g.idx(m)].chain = survivor.id
		}
		survivor.absorb(absorbed)
		g.releaseChain(absorbed)
	}
	return survivor, nil
}

// Unplace removes the stone at c. The chain that held it is broken up and
// its remaining members are placed again one at a time, which rebuilds
// whatever chains they now form.
func (g *GameBoard) Unplace(c Cell) error {
	if err := g.checkBounds(c); err != nil {
		return err
	}
	sq := &g.squares[g.idx(c)]
	if sq.IsEmpty() {
		return fmt.Errorf("%w: %v is empty", ErrIllegalMove, c)
	}
	color := sq.color
	broken := g.chains[sq.chain]
	g.releaseChain(broken)
	for _, m := range broken.cells {
		msq := &g.squares[g.idx(m)]
		msq.color = NoColor
		msq.chain = -1
	}
	g.stones -= len(broken.cells)
	for _, m := range broken.cells {
		if m == c {
			continue
		}
		if _, err := g.Place(m, color); err != nil {
			// Members were just cleared, so this cannot happen.
			panic(err)
		}
	}
	return nil
}

// Copy returns a deep copy of the board, chains included.
func (g *GameBoard) Copy() *GameBoard {
	cp := &GameBoard{
		dim:       g.dim,
		squares:   slices.Clone(g.squares),
		chains:    make([]*Chain, len(g.chains)),
		freeSlots: slices.Clone(g.freeSlots),
		stones:    g.stones,
	}
	for i, ch := range g.chains {
		if ch != nil {
			cp.chains[i] = ch.copy()
		}
	}
	for i := range g.live {
		cp.live[i] = slices.Clone(g.live[i])
	}
	return cp
}
