package shell

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/hexbot/ai/player"
	"github.com/domino14/hexbot/automatic"
	"github.com/domino14/hexbot/board"
	"github.com/domino14/hexbot/config"
	"github.com/domino14/hexbot/equity"
	"github.com/domino14/hexbot/game"
	"github.com/domino14/hexbot/seqstore"
)

const (
	defaultGenPlays        = 15
	autoplayHistogramWidth = 40
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) startGame(g *game.Game) (*Response, error) {
	if err := sc.setupPlayers(g.Dim()); err != nil {
		return nil, err
	}
	sc.game = g
	sc.lastValues = nil
	log.Debug().Int("board-size", g.Dim()).Int("plies", g.PlyDepth()).Msg("game-started")
	moved, err := sc.botMoves()
	if err != nil {
		return nil, err
	}
	return msg(moved + sc.game.ToDisplayText()), nil
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	dim := sc.config.BoardSize()
	if len(cmd.args) > 0 {
		var err error
		dim, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	if dim < 1 || dim > config.MaxBoardSize {
		return nil, fmt.Errorf("board size must be between 1 and %d", config.MaxBoardSize)
	}
	return sc.startGame(game.NewGame(dim))
}

// load replays a sequence of moves, e.g. `load a1 b2 c3`.
func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	dim, err := cmd.options.IntDefault("size", sc.config.BoardSize())
	if err != nil {
		return nil, err
	}
	moves := make([]board.Cell, len(cmd.args))
	for i, a := range cmd.args {
		moves[i], err = board.ParseCell(a)
		if err != nil {
			return nil, err
		}
	}
	g, err := game.FromSequence(dim, moves)
	if err != nil {
		return nil, err
	}
	return sc.startGame(g)
}

// position shows the position string of the game, or sets up a game from
// the position string given.
func (sc *ShellController) position(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 {
		g, err := game.FromPosition(cmd.args[0])
		if err != nil {
			return nil, err
		}
		return sc.startGame(g)
	}
	if sc.game == nil {
		return nil, errNoGame
	}
	return msg(fmt.Sprintf("position:  %s\ncanonical: %s\nsequence:  %s",
		sc.game.PositionString(), sc.game.CanonicalKey(), sc.game.SequenceString())), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: play <cell>, e.g. play b2")
	}
	c, err := board.ParseCell(cmd.args[0])
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	if err := sc.playCell(c, &sb); err != nil {
		return nil, err
	}
	moved, err := sc.botMoves()
	if err != nil {
		return nil, err
	}
	sb.WriteString(moved)
	sb.WriteString(sc.game.ToDisplayText())
	return msg(sb.String()), nil
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	n := 1
	if len(cmd.args) > 0 {
		var err error
		n, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	for i := 0; i < n; i++ {
		if err := sc.game.Undo(); err != nil {
			return nil, err
		}
	}
	sc.lastValues = nil
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) moves(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	moves := sc.game.OrderedMoves()
	if len(moves) == 0 {
		return msg("no legal moves"), nil
	}
	names := lo.Map(moves, func(c board.Cell, _ int) string { return c.String() })
	return msg(strings.Join(names, " ")), nil
}

// analyst is a search player for the side on turn, with a fresh store.
func (sc *ShellController) analyst() (*player.SearchPlayer, error) {
	opts, err := sc.playerOptions()
	if err != nil {
		return nil, err
	}
	return player.NewSearchPlayer(sc.game.PlayerOnTurn(), sc.game.Dim(), opts,
		player.NewRNG(opts.Seed)), nil
}

func storeStats(sp *player.SearchPlayer) string {
	ms, ok := sp.Engine().Store().(*seqstore.MemoryStore)
	if !ok {
		return ""
	}
	st := ms.Stats()
	return fmt.Sprintf("store: %d records, %d lookups, %d hits, ~%d KiB",
		st.Records, st.Lookups, st.Hits, st.Bytes/1024)
}

func (sc *ShellController) generate(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if sc.game.Over() {
		return nil, game.ErrGameOver
	}
	numPlays := defaultGenPlays
	if len(cmd.args) > 0 {
		var err error
		numPlays, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	sp, err := sc.analyst()
	if err != nil {
		return nil, err
	}
	if err := sp.Evaluate(sc.game); err != nil {
		return nil, err
	}
	values, err := sp.Selector().Values(sc.game)
	if err != nil {
		return nil, err
	}
	sign := equity.Sign(sc.game.PlayerOnTurn())
	slices.SortStableFunc(values, func(a, b player.MoveValue) int {
		return cmp.Compare(sign*b.Value, sign*a.Value)
	})
	sc.lastValues = values
	return msg(sc.genDisplayMoveList(numPlays) + storeStats(sp)), nil
}

func (sc *ShellController) genDisplayMoveList(n int) string {
	var sb strings.Builder
	sb.WriteString("     Move   Value\n")
	color := sc.game.PlayerOnTurn()
	for i, mv := range sc.lastValues {
		if i == n {
			break
		}
		note := ""
		switch {
		case mv.Wins:
			note = "wins now"
		case player.IsWinning(color, mv.Value, sc.game.Dim()):
			note = "winning"
		case player.IsWinning(color.Opponent(), mv.Value, sc.game.Dim()):
			note = "losing"
		}
		fmt.Fprintf(&sb, "%3d: %-6s %7.2f %s\n", i+1, mv.Cell, mv.Value, note)
	}
	return sb.String()
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	sp, err := sc.analyst()
	if err != nil {
		return nil, err
	}
	if !sc.game.Over() {
		if err := sp.Evaluate(sc.game); err != nil {
			return nil, err
		}
	}
	v := sp.Engine().PositionValue(sc.game)
	var sb strings.Builder
	fmt.Fprintf(&sb, "raw value: %.2f\nsearched value: %.2f\n", sc.game.RawValue(), v)
	for _, c := range board.Players {
		if player.IsWinning(c, v, sc.game.Dim()) {
			fmt.Fprintf(&sb, "%s is winning\n", c)
		}
	}
	sb.WriteString(storeStats(sp))
	return msg(sb.String()), nil
}

// value shows the value of a move from the last gen.
func (sc *ShellController) value(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: value <cell>")
	}
	if sc.lastValues == nil {
		return nil, errors.New("please run `gen` first")
	}
	c, err := board.ParseCell(cmd.args[0])
	if err != nil {
		return nil, err
	}
	mv, ok := lo.Find(sc.lastValues, func(mv player.MoveValue) bool { return mv.Cell == c })
	if !ok {
		return nil, fmt.Errorf("%s is not a legal move", c)
	}
	return msg(fmt.Sprintf("%s: %.2f", mv.Cell, mv.Value)), nil
}

// aiplay lets the bot of the side on turn play one move, or a search
// player if that side is human.
func (sc *ShellController) aiplay(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	var p player.Player = sc.botFor(sc.game.PlayerOnTurn())
	if p == nil {
		sp, err := sc.analyst()
		if err != nil {
			return nil, err
		}
		p = sp
	}
	c, err := p.ChooseNext(sc.game)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s) played %s\n", p.Color(), p.Kind(), c)
	if err := sc.playCell(c, &sb); err != nil {
		return nil, err
	}
	sb.WriteString(sc.game.ToDisplayText())
	return msg(sb.String()), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		settings := sc.config.Settings()
		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&sb, "%-22s %v\n", k, settings[k])
		}
		return msg(sb.String()), nil
	}
	key := cmd.args[0]
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %v", key, sc.config.Get(key))), nil
	}
	old := sc.config.Get(key)
	sc.config.Set(key, cmd.args[1])
	if err := sc.config.Validate(); err != nil {
		sc.config.Set(key, old)
		return nil, err
	}
	if sc.game != nil {
		if err := sc.setupPlayers(sc.game.Dim()); err != nil {
			sc.config.Set(key, old)
			return nil, err
		}
	}
	return msg("set " + key + " to " + cmd.args[1]), nil
}

func (sc *ShellController) setConfig(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) < 2 {
		return nil, errors.New("usage: setconfig <key> <value>")
	}
	if _, err := sc.set(cmd); err != nil {
		return nil, err
	}
	if err := sc.config.Write(); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return msg(fmt.Sprintf("set config %s to %s and saved to file", cmd.args[0], cmd.args[1])), nil
}

// autoplay plays a batch of bot games: autoplay [white] [black] -games n
// -threads n -size n -log file -yaml true
func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	whiteKind := sc.config.GetString(config.ConfigWhitePlayer)
	blackKind := sc.config.GetString(config.ConfigBlackPlayer)
	if len(cmd.args) > 0 {
		whiteKind = cmd.args[0]
	}
	if len(cmd.args) > 1 {
		blackKind = cmd.args[1]
	}
	if whiteKind == player.HumanKind || blackKind == player.HumanKind {
		return nil, errors.New("autoplay needs two bots; name them, e.g. autoplay search random")
	}
	games, err := cmd.options.IntDefault("games", sc.config.GetInt(config.ConfigAutoplayGames))
	if err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", sc.config.GetInt(config.ConfigAutoplayThreads))
	if err != nil {
		return nil, err
	}
	dim, err := cmd.options.IntDefault("size", sc.config.BoardSize())
	if err != nil {
		return nil, err
	}
	if dim < 1 || dim > config.MaxBoardSize {
		return nil, fmt.Errorf("board size must be between 1 and %d", config.MaxBoardSize)
	}
	opts, err := sc.playerOptions()
	if err != nil {
		return nil, err
	}
	settings := automatic.Settings{
		Dim:           dim,
		WhiteKind:     whiteKind,
		BlackKind:     blackKind,
		Games:         games,
		Threads:       threads,
		PlayerOptions: opts,
	}
	if f := cmd.options.String("log"); f != "" {
		logfile, err := os.Create(f)
		if err != nil {
			return nil, err
		}
		defer logfile.Close()
		settings.Log = logfile
	}
	summary, err := automatic.CompVsComp(context.Background(), settings)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString(summary.String())
	if err := summary.Histogram(&sb, autoplayHistogramWidth); err != nil {
		return nil, err
	}
	if cmd.options.Bool("yaml") {
		y, err := summary.YAML()
		if err != nil {
			return nil, err
		}
		sb.WriteString(y)
	}
	return msg(sb.String()), nil
}

// analyzeLog summarizes a move log written by autoplay -log.
func (sc *ShellController) analyzeLog(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: analyzelog <file> [-size n]")
	}
	dim, err := cmd.options.IntDefault("size", sc.config.BoardSize())
	if err != nil {
		return nil, err
	}
	summary, err := automatic.AnalyzeLogFile(cmd.args[0], dim)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString(summary.String())
	if err := summary.Histogram(&sb, autoplayHistogramWidth); err != nil {
		return nil, err
	}
	return msg(sb.String()), nil
}
