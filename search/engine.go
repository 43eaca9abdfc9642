// Package search explores Hex positions under a deadline, caching every
// visited position in a sequence store, and derives values for them by
// backward induction.
package search

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/hexbot/board"
	"github.com/domino14/hexbot/equity"
	"github.com/domino14/hexbot/game"
	"github.com/domino14/hexbot/seqstore"
)

var ownerIDs atomic.Uint64

// Engine runs searches against one sequence store. An engine is not safe
// for concurrent use; the store it holds may only be written by one
// expansion at a time.
type Engine struct {
	store seqstore.Store
	calc  equity.Calculator
	clock Clock

	budgetLogged bool
}

type EngineOption func(*Engine)

// WithClock replaces the system clock.
func WithClock(c Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithCalculator replaces the chain heuristic as the static evaluator.
func WithCalculator(c equity.Calculator) EngineOption {
	return func(e *Engine) {
		e.calc = c
	}
}

func NewEngine(store seqstore.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store: store,
		calc:  equity.NewChainHeuristic(),
		clock: SystemClock{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Store() seqstore.Store {
	return e.store
}

func (e *Engine) Clock() Clock {
	return e.clock
}

// Evaluate expands the tree below g until the deadline or until it is
// exhausted, recursing directly, then resolves values backward. A zero
// deadline means no deadline. g is not modified.
func (e *Engine) Evaluate(g *game.Game, deadline time.Time) error {
	owner := ownerIDs.Add(1)
	if err := e.store.Claim(owner); err != nil {
		return err
	}
	defer e.store.Release(owner)

	root := g.PlyDepth()
	nodes := 0
	if err := e.expand(g, deadline, &nodes); err != nil {
		return err
	}
	log.Debug().Int("nodes", nodes).Int("records", e.store.Len()).
		Int("depth", root).Msg("sync-expansion-done")
	return e.ResolveBackward(root)
}

func (e *Engine) expand(g *game.Game, deadline time.Time, nodes *int) error {
	f, err := e.visit(g, deadline)
	if err != nil || f == nil {
		return err
	}
	*nodes++
	for i, child := range f.children {
		if err := e.expand(child, f.childDeadline(i), nodes); err != nil {
			return err
		}
		f.children[i] = nil
	}
	return nil
}

// frame is one position whose children are being expanded. children are
// in move order, one per legal move.
type frame struct {
	children []*game.Game
	next     int
	now      time.Time
	deadline time.Time
}

func (f *frame) childDeadline(i int) time.Time {
	if f.deadline.IsZero() {
		return time.Time{}
	}
	budget := f.deadline.Sub(f.now)
	return f.now.Add(time.Duration(int64(i+1) * int64(budget) / int64(len(f.children))))
}

func (e *Engine) expired(now, deadline time.Time) bool {
	if b, ok := e.store.(seqstore.Budgeted); ok && b.OverBudget() {
		if !e.budgetLogged {
			log.Warn().Int("records", e.store.Len()).Msg("sequence-store-over-budget")
			e.budgetLogged = true
		}
		return true
	}
	return !deadline.IsZero() && !now.Before(deadline)
}

// visit enters the position g, which it does not modify. It returns the
// frame of children still to expand, or nil if the position was already
// known, the deadline has passed, or the position needs no expansion.
func (e *Engine) visit(g *game.Game, deadline time.Time) (*frame, error) {
	depth := g.PlyDepth()
	key := g.CanonicalKey()
	if _, ok := e.store.Get(depth, key); ok {
		return nil, nil
	}
	now := e.clock.Now()
	if e.expired(now, deadline) {
		return nil, nil
	}
	raw, err := e.rawValue(g)
	if err != nil {
		return nil, err
	}
	rec := &seqstore.Record{RawValue: raw}
	if g.Over() {
		rec.Resolve(raw)
		e.store.Put(depth, key, rec)
		return nil, nil
	}

	moves := g.OrderedMoves()
	children := make([]*game.Game, len(moves))
	rec.Nexts = make([]string, 0, len(moves))
	seen := make(map[string]bool, len(moves))
	var winner *game.Game
	var winnerKey string
	for i, m := range moves {
		child, err := g.After(m)
		if err != nil {
			return nil, err
		}
		children[i] = child
		ckey := child.CanonicalKey()
		if !seen[ckey] {
			seen[ckey] = true
			rec.Nexts = append(rec.Nexts, ckey)
		}
		if winner == nil && child.Over() {
			winner, winnerKey = child, ckey
		}
	}
	if winner != nil {
		// The mover takes an immediate win; no other child needs expanding.
		terminal, err := e.terminal(winner, winnerKey)
		if err != nil {
			return nil, err
		}
		rec.Resolve(terminal.RawValue)
		e.store.Put(depth, key, rec)
		return nil, nil
	}
	e.store.Put(depth, key, rec)
	return &frame{children: children, now: now, deadline: deadline}, nil
}

// terminal stores the won position g under key if it is not known yet.
func (e *Engine) terminal(g *game.Game, key string) (*seqstore.Record, error) {
	if rec, ok := e.store.Get(g.PlyDepth(), key); ok {
		return rec, nil
	}
	raw, err := e.rawValue(g)
	if err != nil {
		return nil, err
	}
	rec := &seqstore.Record{RawValue: raw}
	rec.Resolve(raw)
	e.store.Put(g.PlyDepth(), key, rec)
	return rec, nil
}

func (e *Engine) rawValue(g *game.Game) (float64, error) {
	v := e.calc.RawValue(g.Board())
	if err := equity.Check(v); err != nil {
		return 0, fmt.Errorf("%w: position %s", err, g.PositionString())
	}
	return v, nil
}

// PositionValue is the resolved value of g if the store has one, its raw
// value otherwise.
func (e *Engine) PositionValue(g *game.Game) float64 {
	if rec, ok := e.store.Get(g.PlyDepth(), g.CanonicalKey()); ok {
		return rec.Best()
	}
	return e.calc.RawValue(g.Board())
}

// MoveValue is the value of the position after playing c.
func (e *Engine) MoveValue(g *game.Game, c board.Cell) (float64, error) {
	next, err := g.After(c)
	if err != nil {
		return 0, err
	}
	return e.PositionValue(next), nil
}
