package game

import (
	"fmt"
	"strings"
)

const maxTextSize = 42

func splitSubN(s string, n int) []string {
	var subs []string
	runes := []rune(s)
	for len(runes) > n {
		subs = append(subs, string(runes[:n]))
		runes = runes[n:]
	}
	return append(subs, string(runes))
}

// addText writes text to the right of the board, starting at row and
// wrapping onto the rows below.
func addText(lines []string, width int, row int, hpad int, text string) []string {
	for _, chunk := range splitSubN(text, maxTextSize) {
		for len(lines) <= row {
			lines = append(lines, "")
		}
		lines[row] += strings.Repeat(" ", width-len(lines[row])+hpad) + chunk
		row++
	}
	return lines
}

// ToDisplayText renders the board with the state of the game beside it.
func (g *Game) ToDisplayText() string {
	bts := strings.Split(strings.TrimSuffix(g.board.ToDisplayText(), "\n"), "\n")
	width := 0
	for _, l := range bts {
		width = max(width, len(l))
	}
	hpadding := 3
	vpadding := 1

	var status string
	if g.Over() {
		status = fmt.Sprintf("%v wins after %d moves", g.winner, len(g.sequence))
	} else {
		status = fmt.Sprintf("%v to play (move %d)", g.onturn, len(g.sequence)+1)
	}
	bts = addText(bts, width, vpadding, hpadding, status)
	if last, ok := g.LastMove(); ok {
		bts = addText(bts, width, vpadding+1, hpadding, "Last move: "+last.String())
	}
	bts = addText(bts, width, vpadding+2, hpadding, fmt.Sprintf("Raw value: %.2f", g.RawValue()))
	return strings.Join(bts, "\n") + "\n"
}
