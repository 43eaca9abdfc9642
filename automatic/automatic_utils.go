package automatic

// Computer vs computer games, played several at a time.

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"expvar"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/hexbot/ai/player"
	"github.com/domino14/hexbot/board"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

// Settings describe a batch of games.
type Settings struct {
	Dim       int
	WhiteKind string
	BlackKind string
	Games     int
	Threads   int
	// PlayerOptions are shared by both players. A seed is varied per game
	// and color so that the batch is reproducible.
	PlayerOptions player.Options
	// Log receives one CSV line per move when not nil.
	Log io.Writer
}

func (s Settings) playerOptions(gameID int, color board.Color) player.Options {
	opts := s.PlayerOptions
	if len(opts.Seed) > 0 {
		seed := make([]byte, len(opts.Seed), len(opts.Seed)+9)
		copy(seed, opts.Seed)
		seed = binary.LittleEndian.AppendUint64(seed, uint64(gameID))
		opts.Seed = append(seed, byte(color))
	}
	return opts
}

func (s Settings) newRunner(gameID int, logchan chan string) (*GameRunner, error) {
	white, err := player.New(s.WhiteKind, board.White, s.Dim, s.playerOptions(gameID, board.White))
	if err != nil {
		return nil, err
	}
	black, err := player.New(s.BlackKind, board.Black, s.Dim, s.playerOptions(gameID, board.Black))
	if err != nil {
		return nil, err
	}
	return NewGameRunner(s.Dim, white, black, gameID, logchan)
}

// CompVsComp plays the games of the batch, s.Threads at a time. Every game
// has its own players and search stores. It stops early when ctx is done
// and returns the summary of the games finished so far with ctx's error.
func CompVsComp(ctx context.Context, s Settings) (*Summary, error) {
	if IsPlaying.Value() > 0 {
		return nil, ErrAlreadyPlaying
	}
	IsPlaying.Add(1)
	defer IsPlaying.Add(-1)
	CVCCounter.Set(0)

	log.Info().Int("games", s.Games).Int("threads", s.Threads).
		Str("white", s.WhiteKind).Str("black", s.BlackKind).Int("board-size", s.Dim).
		Msg("starting-autoplay")

	var logchan chan string
	var logDone chan error
	if s.Log != nil {
		logchan = make(chan string, 100)
		logDone = make(chan error, 1)
		go func() {
			w := bufio.NewWriter(s.Log)
			var werr error
			if _, err := io.WriteString(w, "game,ply,color,kind,move,raw_value\n"); err != nil {
				werr = err
			}
			for line := range logchan {
				if werr == nil {
					_, werr = io.WriteString(w, line)
				}
			}
			if werr == nil {
				werr = w.Flush()
			}
			logDone <- werr
		}()
	}

	summary := NewSummary(s)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Threads, 1))
	for i := 0; i < s.Games; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r, err := s.newRunner(i, logchan)
			if err != nil {
				return err
			}
			res, err := r.PlayGame(gctx)
			if err != nil {
				return err
			}
			CVCCounter.Add(1)
			mu.Lock()
			summary.Add(res)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	if logchan != nil {
		close(logchan)
		if lerr := <-logDone; lerr != nil && err == nil {
			err = lerr
		}
	}
	if err == nil {
		err = ctx.Err()
	}
	log.Info().Int("played", summary.Games).Err(err).Msg("autoplay-done")
	return summary, err
}
