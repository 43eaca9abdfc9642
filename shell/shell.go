// Package shell is the interactive Hex console: play against the bots,
// inspect search values and run computer-vs-computer batches.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/hexbot/ai/player"
	"github.com/domino14/hexbot/board"
	"github.com/domino14/hexbot/config"
	"github.com/domino14/hexbot/game"
)

const HistoryFile = "/tmp/hex_readline.tmp"

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("no game in progress; start one with `new`")
	errExit              = errors.New("exit requested")
)

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

type ShellController struct {
	l      *readline.Instance
	config *config.Config
	writer io.Writer

	game *game.Game
	// players are the bots for white and black; nil for a human.
	players [2]player.Player
	// lastValues are the move values of the last gen, best first.
	lastValues []player.MoveValue
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config) *ShellController {
	sc := &ShellController{config: cfg}
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mhex>\033[0m ",
		HistoryFile:     HistoryFile,
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.writer = l.Stderr()
	return sc
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.writer)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := &shellcmd{cmd: fields[0], options: CmdOptions{}}
	for i := 1; i < len(fields); i++ {
		if strings.HasPrefix(fields[i], "-") && len(fields[i]) > 1 {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			opt := fields[i][1:]
			cmd.options[opt] = append(cmd.options[opt], fields[i+1])
			i++
			continue
		}
		cmd.args = append(cmd.args, fields[i])
	}
	return cmd, nil
}

func (sc *ShellController) standardModeSwitch(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye":
		return nil, errExit
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newGame(cmd)
	case "load":
		return sc.load(cmd)
	case "position":
		return sc.position(cmd)
	case "s", "show":
		return sc.show(cmd)
	case "play":
		return sc.play(cmd)
	case "undo":
		return sc.undo(cmd)
	case "moves":
		return sc.moves(cmd)
	case "gen":
		return sc.generate(cmd)
	case "eval":
		return sc.eval(cmd)
	case "value":
		return sc.value(cmd)
	case "aiplay", "bot":
		return sc.aiplay(cmd)
	case "set":
		return sc.set(cmd)
	case "setconfig":
		return sc.setConfig(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "analyzelog":
		return sc.analyzeLog(cmd)
	default:
		log.Debug().Msgf("you said: %v", strconv.Quote(line))
		return nil, fmt.Errorf("unrecognized command %q, try `help`", cmd.cmd)
	}
}

// Execute runs a single command line, as given on the command line of the
// binary.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(line)
	if errors.Is(err, errExit) {
		sig <- syscall.SIGINT
		return
	}
	if err != nil {
		sc.showError(err)
		return
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
}

// Loop reads commands until exit or an interrupt. Cleanup closes the
// terminal afterwards.
func (sc *ShellController) Loop(sig chan os.Signal) {
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.standardModeSwitch(line)
		if errors.Is(err, errExit) {
			sig <- syscall.SIGINT
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

func (sc *ShellController) Cleanup() {
	if sc.l != nil {
		sc.l.Close()
	}
}

func (sc *ShellController) playerOptions() (player.Options, error) {
	mode, err := player.ParseSearchMode(sc.config.GetString(config.ConfigSearchMode))
	if err != nil {
		return player.Options{}, err
	}
	seed, err := sc.config.Seed()
	if err != nil {
		return player.Options{}, err
	}
	return player.Options{
		ThinkTime:      sc.config.ThinkTime(),
		Mode:           mode,
		MemoryFraction: sc.config.GetFloat64(config.ConfigStoreMemoryFraction),
		Seed:           seed,
	}, nil
}

// setupPlayers builds the bots of the configured kinds for a dim×dim game.
func (sc *ShellController) setupPlayers(dim int) error {
	opts, err := sc.playerOptions()
	if err != nil {
		return err
	}
	keys := [2]string{config.ConfigWhitePlayer, config.ConfigBlackPlayer}
	var players [2]player.Player
	for i, color := range board.Players {
		kind := sc.config.GetString(keys[i])
		if kind == player.HumanKind {
			continue
		}
		p, err := player.New(kind, color, dim, opts)
		if err != nil {
			return err
		}
		players[i] = p
	}
	sc.players = players
	return nil
}

func (sc *ShellController) botFor(c board.Color) player.Player {
	if c == board.White {
		return sc.players[0]
	}
	return sc.players[1]
}

// botMoves lets the bots play for as long as one of them is on turn.
func (sc *ShellController) botMoves() (string, error) {
	var sb strings.Builder
	for !sc.game.Over() {
		p := sc.botFor(sc.game.PlayerOnTurn())
		if p == nil {
			break
		}
		c, err := p.ChooseNext(sc.game)
		if err != nil {
			return sb.String(), err
		}
		fmt.Fprintf(&sb, "%s (%s) played %s\n", p.Color(), p.Kind(), c)
		if err := sc.playCell(c, &sb); err != nil {
			return sb.String(), err
		}
	}
	return sb.String(), nil
}

// playCell plays c for the side on turn and notes a win in sb.
func (sc *ShellController) playCell(c board.Cell, sb *strings.Builder) error {
	ch, err := sc.game.Play(c)
	if err != nil {
		return err
	}
	sc.lastValues = nil
	if ch != nil {
		fmt.Fprintf(sb, "winning chain: %s\n", ch)
	}
	return nil
}
