package search

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/domino14/hexbot/equity"
	"github.com/domino14/hexbot/seqstore"
)

// ResolveBackward fills in the value of every unresolved record from the
// deepest stored depth up to fromDepth. White is to move at even depths and
// takes the highest child value; Black takes the lowest. A child counts
// with its resolved value, or its raw value if it was never resolved.
// Records with no stored children keep their raw value.
func (e *Engine) ResolveBackward(fromDepth int) error {
	resolved := 0
	for depth := e.store.MaxDepth(); depth >= fromDepth && depth >= 0; depth-- {
		var err error
		e.store.ForEach(depth, func(key string, rec *seqstore.Record) {
			if err != nil || rec.Resolved {
				return
			}
			v := e.bestChild(depth, rec)
			if math.IsNaN(v) {
				err = fmt.Errorf("%w: depth %d position %s", equity.ErrInvalidValuation, depth, key)
				return
			}
			rec.Resolve(v)
			resolved++
		})
		if err != nil {
			return err
		}
	}
	log.Debug().Int("from-depth", fromDepth).Int("resolved", resolved).Msg("backward-induction-done")
	return nil
}

func (e *Engine) bestChild(depth int, rec *seqstore.Record) float64 {
	maximize := depth%2 == 0
	best := math.NaN()
	found := false
	for _, k := range rec.Nexts {
		child, ok := e.store.Get(depth+1, k)
		if !ok {
			continue
		}
		v := child.Best()
		if math.IsNaN(v) {
			return v
		}
		if !found || (maximize && v > best) || (!maximize && v < best) {
			best = v
			found = true
		}
	}
	if !found {
		return rec.RawValue
	}
	return best
}
