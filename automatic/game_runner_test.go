package automatic

import (
	"context"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/hexbot/ai/player"
	"github.com/domino14/hexbot/board"
)

func TestPlayGame(t *testing.T) {
	is := is.New(t)
	white, err := player.New(player.RandomKind, board.White, 4, player.Options{})
	is.NoErr(err)
	black, err := player.New(player.RawValueKind, board.Black, 4, player.Options{})
	is.NoErr(err)

	logchan := make(chan string, 100)
	runner, err := NewGameRunner(4, white, black, 7, logchan)
	is.NoErr(err)
	res, err := runner.PlayGame(context.Background())
	is.NoErr(err)
	close(logchan)

	is.True(runner.Game().Over())
	is.Equal(res.Winner, runner.Game().Winner())
	is.Equal(res.Plies, runner.Game().PlyDepth())
	is.Equal(len(strings.Fields(res.Sequence)), res.Plies)
	is.True(res.Plies >= 4)
	is.True(res.Chain != "")

	lines := 0
	for line := range logchan {
		is.True(strings.HasPrefix(line, "7,"))
		lines++
	}
	is.Equal(lines, res.Plies)
}

func TestGameRunnerWantsColors(t *testing.T) {
	is := is.New(t)
	white, err := player.New(player.RandomKind, board.White, 3, player.Options{})
	is.NoErr(err)
	_, err = NewGameRunner(3, white, white, 0, nil)
	is.True(err != nil)
}

func TestPlayGameCancelled(t *testing.T) {
	is := is.New(t)
	white, _ := player.New(player.RandomKind, board.White, 3, player.Options{})
	black, _ := player.New(player.RandomKind, board.Black, 3, player.Options{})
	runner, err := NewGameRunner(3, white, black, 0, nil)
	is.NoErr(err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runner.PlayGame(ctx)
	is.Equal(err, context.Canceled)
	is.Equal(runner.Game().PlyDepth(), 0)
}
