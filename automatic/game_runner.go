// Package automatic plays computer-vs-computer Hex games and summarizes
// the results.
package automatic

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/hexbot/ai/player"
	"github.com/domino14/hexbot/board"
	"github.com/domino14/hexbot/game"
)

// GameRunner plays one game between two automatic players.
type GameRunner struct {
	game    *game.Game
	players [2]player.Player
	gameID  int
	logchan chan string
}

// NewGameRunner sets up a game on a dim×dim board. Each player must be of
// the color of its slot. logchan may be nil.
func NewGameRunner(dim int, white, black player.Player, gameID int, logchan chan string) (*GameRunner, error) {
	if white.Color() != board.White || black.Color() != board.Black {
		return nil, fmt.Errorf("players are %s and %s, want white and black",
			white.Color(), black.Color())
	}
	return &GameRunner{
		game:    game.NewGame(dim),
		players: [2]player.Player{white, black},
		gameID:  gameID,
		logchan: logchan,
	}, nil
}

func (r *GameRunner) Game() *game.Game {
	return r.game
}

func (r *GameRunner) playerOnTurn() player.Player {
	if r.game.PlayerOnTurn() == board.White {
		return r.players[0]
	}
	return r.players[1]
}

// PlayTurn lets the player on turn choose and play a move.
func (r *GameRunner) PlayTurn() error {
	p := r.playerOnTurn()
	c, err := p.ChooseNext(r.game)
	if err != nil {
		return err
	}
	if _, err := r.game.Play(c); err != nil {
		return fmt.Errorf("%s player chose %s: %w", p.Kind(), c, err)
	}
	if r.logchan != nil {
		r.logchan <- fmt.Sprintf("%d,%d,%s,%s,%s,%.3f\n",
			r.gameID, r.game.PlyDepth(), p.Color(), p.Kind(), c, r.game.RawValue())
	}
	return nil
}

// Result is the outcome of one finished game.
type Result struct {
	GameID   int
	Winner   board.Color
	Plies    int
	Sequence string
	Chain    string
}

// PlayGame plays turns until someone wins or ctx is done.
func (r *GameRunner) PlayGame(ctx context.Context) (*Result, error) {
	for !r.game.Over() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.PlayTurn(); err != nil {
			return nil, err
		}
	}
	last, _ := r.game.LastMove()
	winning := r.game.Board().ChainAt(last)
	res := &Result{
		GameID:   r.gameID,
		Winner:   r.game.Winner(),
		Plies:    r.game.PlyDepth(),
		Sequence: r.game.SequenceString(),
		Chain:    winning.String(),
	}
	log.Debug().Int("game", r.gameID).Str("winner", res.Winner.String()).
		Int("plies", res.Plies).Str("chain", res.Chain).Msg("game-over")
	return res, nil
}
