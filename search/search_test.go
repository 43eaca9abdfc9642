package search

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/hexbot/board"
	"github.com/domino14/hexbot/equity"
	"github.com/domino14/hexbot/game"
	"github.com/domino14/hexbot/seqstore"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func snapshot(s *seqstore.MemoryStore) map[string]seqstore.Record {
	out := make(map[string]seqstore.Record)
	for d := 0; d <= s.MaxDepth(); d++ {
		s.ForEach(d, func(key string, rec *seqstore.Record) {
			out[fmt.Sprintf("%d:%s", d, key)] = *rec
		})
	}
	return out
}

func TestFullSearchThreeByThree(t *testing.T) {
	is := is.New(t)
	g := game.NewGame(3)
	store := seqstore.NewMemoryStore(3)
	e := NewEngine(store)
	is.NoErr(e.Evaluate(g, time.Time{}))
	is.Equal(g.PlyDepth(), 0)

	for _, c := range g.LegalMoves() {
		v, err := e.MoveValue(g, c)
		is.NoErr(err)
		is.Equal(math.Abs(v), 12.0)
	}
	v, err := e.MoveValue(g, board.Cell{Row: 1, Col: 1})
	is.NoErr(err)
	is.Equal(v, 12.0)

	// every record ends up resolved to a won value.
	for d := 0; d <= store.MaxDepth(); d++ {
		store.ForEach(d, func(key string, rec *seqstore.Record) {
			is.True(rec.Resolved)
			is.Equal(math.Abs(rec.Value), 12.0)
		})
	}
}

func TestSyncAndCooperativeStoresMatch(t *testing.T) {
	for _, tc := range []struct {
		dim    int
		budget time.Duration
		moves  []string
	}{
		{3, 0, nil},
		{4, 300 * time.Millisecond, nil},
		{4, 150 * time.Millisecond, []string{"b2", "c3"}},
		{5, 500 * time.Millisecond, []string{"c3"}},
	} {
		t.Run(fmt.Sprintf("%dx%d-%s", tc.dim, tc.dim, tc.budget), func(t *testing.T) {
			g := game.NewGame(tc.dim)
			for _, m := range tc.moves {
				_, err := g.PlayString(m)
				require.NoError(t, err)
			}
			var deadline time.Time
			if tc.budget > 0 {
				deadline = t0.Add(tc.budget)
			}

			syncStore := seqstore.NewMemoryStore(tc.dim)
			syncClock := NewStepClock(t0, time.Millisecond)
			require.NoError(t, NewEngine(syncStore, WithClock(syncClock)).Evaluate(g, deadline))

			coopStore := seqstore.NewMemoryStore(tc.dim)
			coopClock := NewStepClock(t0, time.Millisecond)
			x, err := NewEngine(coopStore, WithClock(coopClock)).Start(g, deadline)
			require.NoError(t, err)
			steps := 0
			for {
				done, err := x.Step()
				require.NoError(t, err)
				steps++
				if done {
					break
				}
			}
			assert.True(t, x.Done())
			assert.Greater(t, steps, 1)
			assert.Equal(t, syncClock.Reads(), coopClock.Reads())
			assert.Equal(t, snapshot(syncStore), snapshot(coopStore))
		})
	}
}

func TestMemoizedRootReadsNoClock(t *testing.T) {
	is := is.New(t)
	g := game.NewGame(3)
	_, err := g.PlayString("b2")
	is.NoErr(err)
	clock := NewStepClock(t0, time.Millisecond)
	store := seqstore.NewMemoryStore(3)
	e := NewEngine(store, WithClock(clock))
	is.NoErr(e.Evaluate(g, time.Time{}))
	reads := clock.Reads()
	n := store.Len()
	is.True(reads > 0)

	is.NoErr(e.Evaluate(g, time.Time{}))
	is.Equal(clock.Reads(), reads)
	is.Equal(store.Len(), n)
}

func TestDeadlineAlreadyPassed(t *testing.T) {
	is := is.New(t)
	g := game.NewGame(4)
	clock := NewStepClock(t0, time.Millisecond)
	store := seqstore.NewMemoryStore(4)
	e := NewEngine(store, WithClock(clock))
	is.NoErr(e.Evaluate(g, t0))
	is.Equal(store.Len(), 0)
	is.Equal(clock.Reads(), 1)
	is.Equal(e.PositionValue(g), 0.0)
}

func TestDeadlineTruncationFallsBackToRaw(t *testing.T) {
	is := is.New(t)
	g := game.NewGame(4)
	clock := NewStepClock(t0, time.Millisecond)
	store := seqstore.NewMemoryStore(4)
	e := NewEngine(store, WithClock(clock))
	// every child's share of 5ms has passed by the time it is visited.
	is.NoErr(e.Evaluate(g, t0.Add(5*time.Millisecond)))
	is.Equal(store.Len(), 1)
	is.Equal(clock.Reads(), 17)
	rec, ok := store.Get(0, g.CanonicalKey())
	is.True(ok)
	// opposite cells give the same position up to rotation.
	is.Equal(len(rec.Nexts), 8)
	is.True(rec.Resolved)
	is.Equal(rec.Value, rec.RawValue)
}

func TestChildDeadlines(t *testing.T) {
	is := is.New(t)
	f := &frame{
		children: make([]*game.Game, 4),
		now:      t0,
		deadline: t0.Add(100 * time.Millisecond),
	}
	is.Equal(f.childDeadline(0), t0.Add(25*time.Millisecond))
	is.Equal(f.childDeadline(3), t0.Add(100*time.Millisecond))
	f.deadline = time.Time{}
	is.True(f.childDeadline(2).IsZero())
}

func TestWonRoot(t *testing.T) {
	is := is.New(t)
	g := game.NewGame(2)
	for _, m := range []string{"a1", "b2", "a2"} {
		_, err := g.PlayString(m)
		is.NoErr(err)
	}
	store := seqstore.NewMemoryStore(2)
	e := NewEngine(store)
	is.NoErr(e.Evaluate(g, time.Time{}))
	is.Equal(store.Len(), 1)
	rec, ok := store.Get(3, g.CanonicalKey())
	is.True(ok)
	is.True(rec.Resolved)
	is.Equal(len(rec.Nexts), 0)
	is.Equal(e.PositionValue(g), 8.0)
}

func TestImmediateWinResolvesParent(t *testing.T) {
	is := is.New(t)
	g := game.NewGame(2)
	for _, m := range []string{"a1", "b2"} {
		_, err := g.PlayString(m)
		is.NoErr(err)
	}
	store := seqstore.NewMemoryStore(2)
	e := NewEngine(store)
	is.NoErr(e.Evaluate(g, time.Time{}))
	is.Equal(store.Len(), 2)
	rec, ok := store.Get(2, g.CanonicalKey())
	is.True(ok)
	is.True(rec.Resolved)
	is.Equal(rec.Value, 8.0)
	// both children are listed though only the winning one is stored.
	is.Equal(len(rec.Nexts), 2)

	v, err := e.MoveValue(g, board.Cell{Row: 1, Col: 0})
	is.NoErr(err)
	is.Equal(v, 8.0)
	// the other move was never looked at.
	v, err = e.MoveValue(g, board.Cell{Row: 0, Col: 1})
	is.NoErr(err)
	is.True(v < 8.0)
}

func TestImmediateWinListsEveryChild(t *testing.T) {
	is := is.New(t)
	g := game.NewGame(3)
	for _, m := range []string{"a1", "c3", "a2", "c2"} {
		_, err := g.PlayString(m)
		is.NoErr(err)
	}
	store := seqstore.NewMemoryStore(3)
	e := NewEngine(store)
	is.NoErr(e.Evaluate(g, time.Time{}))
	is.Equal(store.Len(), 2)
	rec, ok := store.Get(4, g.CanonicalKey())
	is.True(ok)
	is.True(rec.Resolved)
	is.Equal(rec.Value, 12.0)
	is.Equal(len(g.LegalMoves()), 5)
	is.Equal(len(rec.Nexts), 5)
	for _, m := range g.LegalMoves() {
		next, err := g.After(m)
		is.NoErr(err)
		is.True(slices.Contains(rec.Nexts, next.CanonicalKey()))
		_, stored := store.Get(5, next.CanonicalKey())
		is.Equal(stored, next.Over())
	}
	is.Equal(e.Lines().Length(g), 1)
}

func TestLineLengths(t *testing.T) {
	is := is.New(t)
	store := seqstore.NewMemoryStore(3)
	store.Put(0, "r", &seqstore.Record{Value: 12, Resolved: true, Nexts: []string{"a", "b", "c"}})
	store.Put(1, "a", &seqstore.Record{Value: 12, Resolved: true, Nexts: []string{"x"}})
	store.Put(2, "x", &seqstore.Record{Value: 12, Resolved: true})
	store.Put(1, "b", &seqstore.Record{Value: 12, Resolved: true})
	store.Put(1, "c", &seqstore.Record{Value: 3, Resolved: true})
	// Black at "l" is losing and drags the game out.
	store.Put(1, "l", &seqstore.Record{Value: 12, Resolved: true, Nexts: []string{"y", "z"}})
	store.Put(2, "y", &seqstore.Record{Value: 12, Resolved: true})
	store.Put(2, "z", &seqstore.Record{Value: 12, Resolved: true, Nexts: []string{"w"}})
	store.Put(3, "w", &seqstore.Record{Value: 12, Resolved: true})

	l := NewEngine(store).Lines()
	is.Equal(l.length(0, "r"), 1)
	is.Equal(l.length(1, "a"), 1)
	is.Equal(l.length(1, "l"), 2)
	is.Equal(l.length(1, "c"), 0)
	is.Equal(l.length(0, "missing"), 0)
}

func TestLineLengthOfSolvedBoard(t *testing.T) {
	is := is.New(t)
	g := game.NewGame(3)
	e := NewEngine(seqstore.NewMemoryStore(3))
	is.NoErr(e.Evaluate(g, time.Time{}))
	n := e.Lines().Length(g)
	// White needs three stones and plays the last move.
	is.True(n >= 5 && n <= 9)
	is.Equal(n%2, 1)
}

func TestResolveBackward(t *testing.T) {
	is := is.New(t)
	store := seqstore.NewMemoryStore(3)
	store.Put(0, "r", &seqstore.Record{RawValue: 1, Nexts: []string{"a", "b", "c"}})
	store.Put(1, "a", &seqstore.Record{RawValue: 3})
	store.Put(1, "b", &seqstore.Record{RawValue: -2, Value: 5, Resolved: true})
	store.Put(1, "d", &seqstore.Record{RawValue: 0, Nexts: []string{"x", "y"}})
	store.Put(2, "x", &seqstore.Record{RawValue: 4})
	store.Put(2, "y", &seqstore.Record{RawValue: -1})

	e := NewEngine(store)
	is.NoErr(e.ResolveBackward(0))
	get := func(d int, k string) float64 {
		rec, ok := store.Get(d, k)
		is.True(ok)
		is.True(rec.Resolved)
		return rec.Value
	}
	is.Equal(get(0, "r"), 5.0)
	is.Equal(get(1, "a"), 3.0)
	is.Equal(get(1, "b"), 5.0)
	is.Equal(get(1, "d"), -1.0)
	is.Equal(get(2, "x"), 4.0)

	// resolved values are never recomputed.
	store.Put(2, "x", &seqstore.Record{RawValue: -20})
	is.NoErr(e.ResolveBackward(1))
	is.Equal(get(1, "d"), -1.0)
	is.Equal(get(2, "x"), -20.0)
}

func TestResolveBackwardRangeStops(t *testing.T) {
	is := is.New(t)
	store := seqstore.NewMemoryStore(3)
	store.Put(0, "r", &seqstore.Record{RawValue: 1, Nexts: []string{"a"}})
	store.Put(1, "a", &seqstore.Record{RawValue: 3})
	e := NewEngine(store)
	is.NoErr(e.ResolveBackward(1))
	rec, _ := store.Get(0, "r")
	is.True(!rec.Resolved)
}

type nanCalc struct{}

func (nanCalc) RawValue(*board.GameBoard) float64 {
	return math.NaN()
}

func TestInvalidValuation(t *testing.T) {
	is := is.New(t)
	g := game.NewGame(3)
	store := seqstore.NewMemoryStore(3)
	e := NewEngine(store, WithCalculator(nanCalc{}))
	err := e.Evaluate(g, time.Time{})
	is.True(errors.Is(err, equity.ErrInvalidValuation))

	x, err := e.Start(g, time.Time{})
	is.NoErr(err)
	is.True(errors.Is(x.Run(), equity.ErrInvalidValuation))
	// the failed expansion gave the store back.
	is.NoErr(store.Claim(12345))
	store.Release(12345)

	store = seqstore.NewMemoryStore(3)
	store.Put(0, "r", &seqstore.Record{RawValue: 0, Nexts: []string{"a"}})
	store.Put(1, "a", &seqstore.Record{RawValue: math.NaN()})
	err = NewEngine(store).ResolveBackward(0)
	is.True(errors.Is(err, equity.ErrInvalidValuation))
}

func TestStoreBusy(t *testing.T) {
	is := is.New(t)
	g := game.NewGame(3)
	store := seqstore.NewMemoryStore(3)
	e := NewEngine(store)
	x, err := e.Start(g, time.Time{})
	is.NoErr(err)
	done, err := x.Step()
	is.NoErr(err)
	is.True(!done)

	is.Equal(e.Evaluate(g, time.Time{}), seqstore.ErrStoreBusy)
	_, err = NewEngine(store).Start(g, time.Time{})
	is.Equal(err, seqstore.ErrStoreBusy)

	is.NoErr(x.Run())
	is.NoErr(e.Evaluate(g, time.Time{}))
}

type recordingTask struct {
	id    int
	x     *Expansion
	trace *[]int
}

func (r *recordingTask) Step() (bool, error) {
	*r.trace = append(*r.trace, r.id)
	return r.x.Step()
}

func TestSchedulerInterleaves(t *testing.T) {
	is := is.New(t)
	g1 := game.NewGame(3)
	g2 := game.NewGame(3)
	_, err := g2.PlayString("a1")
	is.NoErr(err)

	s1 := seqstore.NewMemoryStore(3)
	s2 := seqstore.NewMemoryStore(3)
	x1, err := NewEngine(s1).Start(g1, time.Time{})
	is.NoErr(err)
	x2, err := NewEngine(s2).Start(g2, time.Time{})
	is.NoErr(err)

	var trace []int
	sched := &Scheduler{}
	sched.Add(&recordingTask{id: 1, x: x1, trace: &trace})
	sched.Add(&recordingTask{id: 2, x: x2, trace: &trace})
	is.Equal(sched.Pending(), 2)
	is.NoErr(sched.Run())
	is.Equal(sched.Pending(), 0)
	is.True(x1.Done())
	is.True(x2.Done())
	is.Equal(trace[:4], []int{1, 2, 1, 2})

	ref1 := seqstore.NewMemoryStore(3)
	is.NoErr(NewEngine(ref1).Evaluate(g1, time.Time{}))
	ref2 := seqstore.NewMemoryStore(3)
	is.NoErr(NewEngine(ref2).Evaluate(g2, time.Time{}))
	assert.Equal(t, snapshot(ref1), snapshot(s1))
	assert.Equal(t, snapshot(ref2), snapshot(s2))
}

type failingTask struct{ steps int }

func (f *failingTask) Step() (bool, error) {
	f.steps++
	if f.steps == 2 {
		return true, errors.New("boom")
	}
	return false, nil
}

func TestSchedulerJoinsErrors(t *testing.T) {
	is := is.New(t)
	x, err := NewEngine(seqstore.NewMemoryStore(2)).Start(game.NewGame(2), time.Time{})
	is.NoErr(err)
	sched := &Scheduler{}
	sched.Add(&failingTask{})
	sched.Add(x)
	err = sched.Run()
	is.True(err != nil)
	is.Equal(err.Error(), "boom")
	is.True(x.Done())
}
