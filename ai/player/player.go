// Package player holds the automatic Hex players: one that searches, one
// that looks a single move ahead, and one that plays at random.
package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/hexbot/board"
	"github.com/domino14/hexbot/equity"
	"github.com/domino14/hexbot/game"
	"github.com/domino14/hexbot/search"
	"github.com/domino14/hexbot/seqstore"
)

const (
	SearchKind   = "search"
	RawValueKind = "rawvalue"
	RandomKind   = "random"
	HumanKind    = "human"
)

var ErrUnknownKind = errors.New("unknown player kind")

// Player is an automatic player of one color.
type Player interface {
	Kind() string
	Color() board.Color
	ChooseNext(g *game.Game) (board.Cell, error)
}

type SearchMode int

const (
	SyncSearch SearchMode = iota
	CooperativeSearch
)

func ParseSearchMode(s string) (SearchMode, error) {
	switch s {
	case "sync", "":
		return SyncSearch, nil
	case "cooperative":
		return CooperativeSearch, nil
	}
	return SyncSearch, fmt.Errorf("search mode %q is not sync or cooperative", s)
}

// Options configure the players built by New.
type Options struct {
	ThinkTime time.Duration
	Mode      SearchMode
	// MemoryFraction caps the search store; 0 means no cap.
	MemoryFraction float64
	// Seed makes the player's choices reproducible. Empty means random.
	Seed  []byte
	Clock search.Clock
}

// NewRNG returns a generator seeded from seed, or from the system when seed
// is empty.
func NewRNG(seed []byte) *frand.RNG {
	if len(seed) == 0 {
		return frand.New()
	}
	var key [32]byte
	for i := 0; i < 4; i++ {
		h := xxhash.Sum64(append([]byte{byte(i)}, seed...))
		binary.LittleEndian.PutUint64(key[i*8:], h)
	}
	return frand.NewCustom(key[:], 1024, 12)
}

// New builds an automatic player. HumanKind is not an automatic player.
func New(kind string, color board.Color, dim int, opts Options) (Player, error) {
	rng := NewRNG(opts.Seed)
	switch kind {
	case SearchKind:
		return NewSearchPlayer(color, dim, opts, rng), nil
	case RawValueKind:
		return NewRawValuePlayer(color, rng), nil
	case RandomKind:
		return NewRandomPlayer(color, rng), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// SearchPlayer searches the position for its think time, then lets a
// Selector pick among the resulting values. Every decision starts from an
// empty store.
type SearchPlayer struct {
	store     *seqstore.MemoryStore
	engine    *search.Engine
	selector  *Selector
	thinkTime time.Duration
	mode      SearchMode
}

func NewSearchPlayer(color board.Color, dim int, opts Options, rng *frand.RNG) *SearchPlayer {
	store := seqstore.NewMemoryStore(dim)
	store.SetMemoryFraction(opts.MemoryFraction)
	var engineOpts []search.EngineOption
	if opts.Clock != nil {
		engineOpts = append(engineOpts, search.WithClock(opts.Clock))
	}
	engine := search.NewEngine(store, engineOpts...)
	return &SearchPlayer{
		store:     store,
		engine:    engine,
		selector:  NewSelector(engine, color, rng),
		thinkTime: opts.ThinkTime,
		mode:      opts.Mode,
	}
}

func (p *SearchPlayer) Kind() string {
	return SearchKind
}

func (p *SearchPlayer) Color() board.Color {
	return p.selector.Color()
}

func (p *SearchPlayer) Engine() *search.Engine {
	return p.engine
}

func (p *SearchPlayer) Selector() *Selector {
	return p.selector
}

// Deadline is the end of a search started now. A non-positive think time
// means the search runs until the tree is exhausted.
func (p *SearchPlayer) Deadline() time.Time {
	if p.thinkTime <= 0 {
		return time.Time{}
	}
	return p.engine.Clock().Now().Add(p.thinkTime)
}

// Evaluate searches g with a fresh store.
func (p *SearchPlayer) Evaluate(g *game.Game) error {
	p.store.Reset()
	deadline := p.Deadline()
	switch p.mode {
	case CooperativeSearch:
		x, err := p.engine.Start(g, deadline)
		if err != nil {
			return err
		}
		sched := &search.Scheduler{}
		sched.Add(x)
		return sched.Run()
	default:
		return p.engine.Evaluate(g, deadline)
	}
}

func (p *SearchPlayer) ChooseNext(g *game.Game) (board.Cell, error) {
	if g.Over() {
		return board.Cell{}, game.ErrGameOver
	}
	if g.PlayerOnTurn() != p.Color() {
		return board.Cell{}, fmt.Errorf("%w: %s to move", ErrNotOnTurn, g.PlayerOnTurn())
	}
	if err := p.Evaluate(g); err != nil {
		return board.Cell{}, err
	}
	st := p.store.Stats()
	log.Debug().Int("records", st.Records).Uint64("hits", st.Hits).
		Uint64("bytes", st.Bytes).Str("position", g.PositionString()).
		Msg("search-player-evaluated")
	return p.selector.ChooseNext(g)
}

// RawValuePlayer looks one move ahead and takes the best heuristic value,
// breaking ties at random.
type RawValuePlayer struct {
	color board.Color
	calc  equity.Calculator
	rng   *frand.RNG
}

func NewRawValuePlayer(color board.Color, rng *frand.RNG) *RawValuePlayer {
	return &RawValuePlayer{color: color, calc: equity.NewChainHeuristic(), rng: rng}
}

func (p *RawValuePlayer) Kind() string {
	return RawValueKind
}

func (p *RawValuePlayer) Color() board.Color {
	return p.color
}

func (p *RawValuePlayer) ChooseNext(g *game.Game) (board.Cell, error) {
	if g.Over() {
		return board.Cell{}, game.ErrGameOver
	}
	if g.PlayerOnTurn() != p.color {
		return board.Cell{}, fmt.Errorf("%w: %s to move", ErrNotOnTurn, g.PlayerOnTurn())
	}
	sign := equity.Sign(p.color)
	var best []board.Cell
	bestValue := 0.0
	for _, m := range g.LegalMoves() {
		if _, err := g.Play(m); err != nil {
			return board.Cell{}, err
		}
		v := sign * p.calc.RawValue(g.Board())
		if err := g.Undo(); err != nil {
			return board.Cell{}, err
		}
		if err := equity.Check(v); err != nil {
			return board.Cell{}, err
		}
		switch {
		case len(best) == 0 || v > bestValue:
			best = append(best[:0], m)
			bestValue = v
		case v == bestValue:
			best = append(best, m)
		}
	}
	return best[p.rng.Intn(len(best))], nil
}

// RandomPlayer plays any empty cell.
type RandomPlayer struct {
	color board.Color
	rng   *frand.RNG
}

func NewRandomPlayer(color board.Color, rng *frand.RNG) *RandomPlayer {
	return &RandomPlayer{color: color, rng: rng}
}

func (p *RandomPlayer) Kind() string {
	return RandomKind
}

func (p *RandomPlayer) Color() board.Color {
	return p.color
}

func (p *RandomPlayer) ChooseNext(g *game.Game) (board.Cell, error) {
	if g.Over() {
		return board.Cell{}, game.ErrGameOver
	}
	if g.PlayerOnTurn() != p.color {
		return board.Cell{}, fmt.Errorf("%w: %s to move", ErrNotOnTurn, g.PlayerOnTurn())
	}
	moves := g.LegalMoves()
	return moves[p.rng.Intn(len(moves))], nil
}
