package search

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/hexbot/game"
)

// Expansion is a search that advances one position per Step, so that it
// can be interleaved with other work. It visits positions in the same
// order as Evaluate, reads the clock the same number of times, and leaves
// the store in the same state.
type Expansion struct {
	engine   *Engine
	g        *game.Game
	root     int
	deadline time.Time
	owner    uint64

	stack   []*frame
	started bool
	done    bool
	err     error
	steps   int
}

// Start claims the engine's store and returns an expansion of the tree
// below g. Nothing is expanded until the first Step.
func (e *Engine) Start(g *game.Game, deadline time.Time) (*Expansion, error) {
	owner := ownerIDs.Add(1)
	if err := e.store.Claim(owner); err != nil {
		return nil, err
	}
	// the caller may go on playing g between steps.
	g = g.Copy()
	return &Expansion{
		engine:   e,
		g:        g,
		root:     g.PlyDepth(),
		deadline: deadline,
		owner:    owner,
	}, nil
}

// Step visits at most one position. It returns true once the expansion is
// finished and the values have been resolved; the store is released then.
func (x *Expansion) Step() (bool, error) {
	if x.done {
		return true, x.err
	}
	x.steps++
	if !x.started {
		x.started = true
		if err := x.enter(x.g, x.deadline); err != nil {
			return x.finish(err)
		}
		if len(x.stack) == 0 {
			return x.finish(nil)
		}
		return false, nil
	}

	top := x.stack[len(x.stack)-1]
	if top.next >= len(top.children) {
		x.stack = x.stack[:len(x.stack)-1]
		if len(x.stack) == 0 {
			return x.finish(nil)
		}
		return false, nil
	}
	i := top.next
	top.next++
	child := top.children[i]
	top.children[i] = nil
	if err := x.enter(child, top.childDeadline(i)); err != nil {
		return x.finish(err)
	}
	return false, nil
}

func (x *Expansion) enter(g *game.Game, deadline time.Time) error {
	f, err := x.engine.visit(g, deadline)
	if err != nil {
		return err
	}
	if f != nil {
		x.stack = append(x.stack, f)
	}
	return nil
}

func (x *Expansion) finish(err error) (bool, error) {
	if err == nil {
		log.Debug().Int("steps", x.steps).Int("records", x.engine.store.Len()).
			Int("depth", x.root).Msg("cooperative-expansion-done")
		err = x.engine.ResolveBackward(x.root)
	}
	x.engine.store.Release(x.owner)
	x.stack = nil
	x.done = true
	x.err = err
	return true, err
}

// Done reports whether the expansion has finished.
func (x *Expansion) Done() bool {
	return x.done
}

// Run steps the expansion to the end.
func (x *Expansion) Run() error {
	for {
		done, err := x.Step()
		if done {
			return err
		}
	}
}
