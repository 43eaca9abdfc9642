// Package config loads the settings of the hex bot from flags, the
// environment and an optional YAML file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug               = "debug"
	ConfigBoardSize           = "board-size"
	ConfigThinkTime           = "think-time"
	ConfigSearchMode          = "search-mode"
	ConfigStoreMemoryFraction = "store-memory-fraction"
	ConfigWhitePlayer         = "white-player"
	ConfigBlackPlayer         = "black-player"
	ConfigSeed                = "seed"
	ConfigAutoplayGames       = "autoplay-games"
	ConfigAutoplayThreads     = "autoplay-threads"
	ConfigFile                = "config-file"
)

const MaxBoardSize = 26

var ErrBadSetting = errors.New("bad setting")

type Config struct {
	*viper.Viper
	flags *pflag.FlagSet
}

// New returns a config holding only the defaults.
func New() *Config {
	c := &Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigBoardSize, 5)
	c.SetDefault(ConfigThinkTime, 1800*time.Millisecond)
	c.SetDefault(ConfigSearchMode, "sync")
	c.SetDefault(ConfigStoreMemoryFraction, 0.25)
	c.SetDefault(ConfigWhitePlayer, "human")
	c.SetDefault(ConfigBlackPlayer, "search")
	c.SetDefault(ConfigSeed, "")
	c.SetDefault(ConfigAutoplayGames, 10)
	c.SetDefault(ConfigAutoplayThreads, 4)
	c.SetDefault(ConfigFile, "")
}

// Load reads the command line flags in args, then HEX_* environment
// variables, then the config file if one is named. Flags win over the
// environment, which wins over the file. The remaining arguments are
// available through Args.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	c.setDefaults()

	fs := pflag.NewFlagSet("hex", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigBoardSize, 5, "size of the board")
	fs.Duration(ConfigThinkTime, 1800*time.Millisecond, "how long the search player thinks per move")
	fs.String(ConfigSearchMode, "sync", "sync or cooperative")
	fs.Float64(ConfigStoreMemoryFraction, 0.25, "fraction of system memory the search store may use, 0 for no limit")
	fs.String(ConfigWhitePlayer, "human", "human, search, rawvalue or random")
	fs.String(ConfigBlackPlayer, "search", "human, search, rawvalue or random")
	fs.String(ConfigSeed, "", "hex seed for reproducible bot choices")
	fs.Int(ConfigAutoplayGames, 10, "number of games the autoplay command plays")
	fs.Int(ConfigAutoplayThreads, 4, "number of autoplay games played at once")
	fs.String(ConfigFile, "", "YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.flags = fs
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetEnvPrefix("hex")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if f := c.GetString(ConfigFile); f != "" {
		c.SetConfigFile(f)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", f, err)
		}
		log.Debug().Str("file", f).Msg("config-file-loaded")
	}
	return c.Validate()
}

// Args are the arguments left over after flag parsing.
func (c *Config) Args() []string {
	if c.flags == nil {
		return nil
	}
	return c.flags.Args()
}

// Validate checks the settings that have a limited range.
func (c *Config) Validate() error {
	if n := c.BoardSize(); n < 1 || n > MaxBoardSize {
		return fmt.Errorf("%w: board size %d not in [1, %d]", ErrBadSetting, n, MaxBoardSize)
	}
	if f := c.GetFloat64(ConfigStoreMemoryFraction); f < 0 || f > 1 {
		return fmt.Errorf("%w: memory fraction %v not in [0, 1]", ErrBadSetting, f)
	}
	if _, err := c.Seed(); err != nil {
		return err
	}
	switch m := c.GetString(ConfigSearchMode); m {
	case "sync", "cooperative":
	default:
		return fmt.Errorf("%w: search mode %q", ErrBadSetting, m)
	}
	return nil
}

func (c *Config) BoardSize() int {
	return c.GetInt(ConfigBoardSize)
}

func (c *Config) ThinkTime() time.Duration {
	return c.GetDuration(ConfigThinkTime)
}

// Seed decodes the hex seed. Nil means no seed.
func (c *Config) Seed() ([]byte, error) {
	s := c.GetString(ConfigSeed)
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: seed: %w", ErrBadSetting, err)
	}
	return b, nil
}

// Write saves the settings to the config file, or to hex.yaml in the
// user's config directory if none was named.
func (c *Config) Write() error {
	f := c.GetString(ConfigFile)
	if f == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(dir, "hexbot")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		f = filepath.Join(dir, "hex.yaml")
	}
	log.Info().Str("file", f).Msg("writing-config")
	return c.WriteConfigAs(f)
}

// Settings lists every key with its current value, for display.
func (c *Config) Settings() map[string]any {
	out := make(map[string]any)
	for _, k := range c.AllKeys() {
		out[k] = c.Get(k)
	}
	return out
}
