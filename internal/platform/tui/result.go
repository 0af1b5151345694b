package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/edu-arcade/internal/engine"
)

var (
	resultBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 4)
	resultTitle = lipgloss.NewStyle().Bold(true)
	starOn      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	starOff     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	dimText     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func outcomeHeadline(o engine.Outcome) (string, lipgloss.Color) {
	switch o {
	case engine.OutcomeWon:
		return "LEVEL COMPLETE", lipgloss.Color("10")
	case engine.OutcomeTimedOut:
		return "TIME'S UP", lipgloss.Color("208")
	default:
		return "TRY AGAIN", lipgloss.Color("9")
	}
}

// renderStars draws n of three stars.
func renderStars(n int) string {
	var b strings.Builder
	for i := range 3 {
		if i > 0 {
			b.WriteString(" ")
		}
		if i < n {
			b.WriteString(starOn.Render("★"))
		} else {
			b.WriteString(starOff.Render("☆"))
		}
	}
	return b.String()
}

// renderResult draws the card shown after a session ends.
func renderResult(res engine.Result, standalone bool) string {
	headline, color := outcomeHeadline(res.Outcome)

	lines := []string{
		resultTitle.Foreground(color).Render(headline),
		"",
		res.Title,
		"",
		renderStars(res.Stars),
		"",
		fmt.Sprintf("Points  %d", res.Points),
		fmt.Sprintf("Score   %d", res.Score),
		fmt.Sprintf("Time    %s", res.Elapsed.Round(100*time.Millisecond)),
	}
	if res.Perfect {
		lines = append(lines, "", starOn.Render("Collectible earned!"))
	}

	controls := "r: play again  esc: menu  q: quit"
	if standalone {
		controls = "r: play again  esc/q: quit"
	} else if res.Won() {
		controls = "r: play again  n: next level  esc: menu  q: quit"
	}
	lines = append(lines, "", dimText.Render(controls))

	return resultBox.Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}
