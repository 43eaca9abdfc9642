package search

import (
	"github.com/domino14/hexbot/game"
)

type lineKey struct {
	depth int
	key   string
}

// Lines measures how many moves the searched line below a position takes to
// reach its end. It caches what it measures, so it must not outlive a
// change to the store.
type Lines struct {
	e    *Engine
	memo map[lineKey]int
}

func (e *Engine) Lines() *Lines {
	return &Lines{e: e, memo: make(map[lineKey]int)}
}

// Length follows the stored children of g that keep its resolved value.
// The side on turn takes the shortest continuation when that value is
// good for it and the longest otherwise. Positions that were not searched
// have length 0.
func (l *Lines) Length(g *game.Game) int {
	return l.length(g.PlyDepth(), g.CanonicalKey())
}

func (l *Lines) length(depth int, key string) int {
	k := lineKey{depth, key}
	if n, ok := l.memo[k]; ok {
		return n
	}
	n := 0
	rec, ok := l.e.store.Get(depth, key)
	if ok && rec.Resolved {
		v := rec.Value
		if depth%2 == 1 {
			v = -v
		}
		found := false
		for _, next := range rec.Nexts {
			child, ok := l.e.store.Get(depth+1, next)
			if !ok || child.Best() != rec.Value {
				continue
			}
			m := 1 + l.length(depth+1, next)
			if !found || (v > 0 && m < n) || (v <= 0 && m > n) {
				n = m
				found = true
			}
		}
	}
	l.memo[k] = n
	return n
}
