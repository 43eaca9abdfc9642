package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/domino14/hexbot/config"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string // Available options for this command (e.g., "-games")
	Args    []string // Possible argument values (for non-option arguments)
}

var playerKinds = []string{"search", "rawvalue", "random"}

var settingKeys = []string{
	config.ConfigBoardSize, config.ConfigThinkTime, config.ConfigSearchMode,
	config.ConfigStoreMemoryFraction, config.ConfigWhitePlayer,
	config.ConfigBlackPlayer, config.ConfigSeed, config.ConfigAutoplayGames,
	config.ConfigAutoplayThreads, config.ConfigDebug,
}

// commandMetadata maps command names to their options and arguments
var commandMetadata = map[string]CommandMetadata{
	"autoplay": {
		Options: []string{"-games", "-threads", "-size", "-log", "-yaml"},
		Args:    playerKinds,
	},
	"load": {
		Options: []string{"-size"},
	},
	"analyzelog": {
		Options: []string{"-size"},
	},
	"set": {
		Args: settingKeys,
	},
	"setconfig": {
		Args: settingKeys,
	},
	"help": {
		Args: []string{"autoplay", "gen", "play", "position", "set"},
	},
}

// Common command names for command completion
var commandNames = []string{
	"help", "new", "load", "position", "show", "s", "play", "undo", "moves",
	"gen", "value", "eval", "aiplay", "bot", "autoplay", "analyzelog", "set",
	"setconfig", "exit",
}

var boolValues = []string{"true", "false"}

// legalCells lists the empty cells of the current game in lower case.
func (c *ShellCompleter) legalCells() []string {
	if c.sc.game == nil {
		return nil
	}
	var cells []string
	for _, m := range c.sc.game.LegalMoves() {
		cells = append(cells, strings.ToLower(m.String()))
	}
	return cells
}

// Do implements the readline.AutoComplete interface
// It provides context-aware autocomplete based on what's been typed
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	// Parse the line using shellquote to handle quoted strings properly
	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}

	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]

		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		if strings.HasPrefix(lastCompleteField, "-") {
			switch strings.TrimPrefix(lastCompleteField, "-") {
			case "yaml":
				completions = boolValues
			default:
				// a value nobody can guess, such as a count or a file.
				return nil, 0
			}
		}

		if completions == nil {
			switch cmdName {
			case "play", "value":
				completions = c.legalCells()
			}
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			// Return only the part that needs to be added
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
