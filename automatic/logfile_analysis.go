package automatic

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/hexbot/board"
	"github.com/domino14/hexbot/game"
)

type loggedGame struct {
	kinds [2]string
	moves []board.Cell
}

// AnalyzeLogFile replays the games of a move log written by CompVsComp on a
// dim×dim board and summarizes the ones that were played to the end.
func AnalyzeLogFile(filepath string, dim int) (*Summary, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	r := csv.NewReader(file)
	r.FieldsPerRecord = 6

	// Record looks like:
	// game,ply,color,kind,move,raw_value
	games := map[int]*loggedGame{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if record[0] == "game" {
			// this is the header line
			continue
		}
		id, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, err
		}
		ply, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, err
		}
		c, err := board.ParseCell(record[4])
		if err != nil {
			return nil, err
		}
		lg, ok := games[id]
		if !ok {
			lg = &loggedGame{}
			games[id] = lg
		}
		if ply != len(lg.moves)+1 {
			return nil, fmt.Errorf("game %d: ply %d follows ply %d", id, ply, len(lg.moves))
		}
		lg.moves = append(lg.moves, c)
		lg.kinds[(ply+1)%2] = record[3]
	}

	ids := lo.Keys(games)
	slices.Sort(ids)
	s := Settings{Dim: dim}
	if len(ids) > 0 {
		first := games[ids[0]]
		s.WhiteKind, s.BlackKind = first.kinds[0], first.kinds[1]
	}
	summary := NewSummary(s)
	unfinished := 0
	for _, id := range ids {
		g, err := game.FromSequence(dim, games[id].moves)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", id, err)
		}
		if !g.Over() {
			unfinished++
			continue
		}
		last, _ := g.LastMove()
		summary.Add(&Result{
			GameID:   id,
			Winner:   g.Winner(),
			Plies:    g.PlyDepth(),
			Sequence: g.SequenceString(),
			Chain:    g.Board().ChainAt(last).String(),
		})
	}
	log.Debug().Int("games", len(ids)).Int("unfinished", unfinished).Msg("log-analyzed")
	return summary, nil
}
