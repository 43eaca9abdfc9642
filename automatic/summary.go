package automatic

import (
	"fmt"
	"io"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/cespare/xxhash"
	"gopkg.in/yaml.v3"

	"github.com/domino14/hexbot/board"
	"github.com/domino14/hexbot/stats"
)

const (
	confidence    = 95.0
	histogramBins = 10
)

// Summary aggregates the results of a batch of games.
type Summary struct {
	BoardSize     int     `yaml:"board_size"`
	White         string  `yaml:"white"`
	Black         string  `yaml:"black"`
	Games         int     `yaml:"games"`
	WhiteWins     int     `yaml:"white_wins"`
	BlackWins     int     `yaml:"black_wins"`
	WhiteWinPct   float64 `yaml:"white_win_pct"`
	WinPctMargin  float64 `yaml:"white_win_pct_margin"`
	MeanPlies     float64 `yaml:"mean_plies"`
	StdevPlies    float64 `yaml:"stdev_plies"`
	MinPlies      int     `yaml:"min_plies"`
	MaxPlies      int     `yaml:"max_plies"`
	DistinctGames int     `yaml:"distinct_games"`

	plies    stats.Statistic
	lengths  []float64
	seen     map[uint64]struct{}
	shortest *Result
}

func NewSummary(s Settings) *Summary {
	return &Summary{
		BoardSize: s.Dim,
		White:     s.WhiteKind,
		Black:     s.BlackKind,
		seen:      make(map[uint64]struct{}),
	}
}

// Add counts one finished game.
func (s *Summary) Add(r *Result) {
	s.Games++
	switch r.Winner {
	case board.White:
		s.WhiteWins++
	case board.Black:
		s.BlackWins++
	}
	s.plies.Push(float64(r.Plies))
	s.lengths = append(s.lengths, float64(r.Plies))
	s.seen[xxhash.Sum64String(r.Sequence)] = struct{}{}
	if s.shortest == nil || r.Plies < s.shortest.Plies {
		s.shortest = r
	}

	s.WhiteWinPct, s.WinPctMargin = stats.WinRate(float64(s.WhiteWins), s.Games, confidence)
	s.MeanPlies = s.plies.Mean()
	s.StdevPlies = s.plies.Stdev()
	s.MinPlies = int(s.plies.Min())
	s.MaxPlies = int(s.plies.Max())
	s.DistinctGames = len(s.seen)
}

// Shortest is the quickest game won, nil if no game was played.
func (s *Summary) Shortest() *Result {
	return s.shortest
}

func (s *Summary) YAML() (string, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Histogram draws the distribution of game lengths.
func (s *Summary) Histogram(w io.Writer, width int) error {
	if len(s.lengths) == 0 {
		_, err := io.WriteString(w, "no games played\n")
		return err
	}
	h := histogram.Hist(histogramBins, s.lengths)
	return histogram.Fprint(w, h, histogram.Linear(width))
}

func (s *Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d games on %dx%d, %s (white) vs %s (black)\n",
		s.Games, s.BoardSize, s.BoardSize, s.White, s.Black)
	fmt.Fprintf(&sb, "white wins %d, black wins %d\n", s.WhiteWins, s.BlackWins)
	fmt.Fprintf(&sb, "white win %% %.2f ± %.2f (%.0f%% confidence)\n",
		s.WhiteWinPct, s.WinPctMargin, confidence)
	fmt.Fprintf(&sb, "plies: mean %.2f, stdev %.2f, min %d, max %d\n",
		s.MeanPlies, s.StdevPlies, s.MinPlies, s.MaxPlies)
	fmt.Fprintf(&sb, "distinct games: %d\n", s.DistinctGames)
	if s.shortest != nil {
		fmt.Fprintf(&sb, "shortest game: %s (%s wins with %s)\n",
			s.shortest.Sequence, s.shortest.Winner, s.shortest.Chain)
	}
	return sb.String()
}
