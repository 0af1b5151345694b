// Package tui provides the Bubble Tea integration for the arcade platform.
// It drives the engine from the terminal UI loop, maps input, and runs the
// menu, play and result screens locally or over SSH.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a game simulation frame.
// Loop identifies the play screen that scheduled it.
type TickMsg struct {
	Time time.Time
	Loop int64
}

var loopIDs atomic.Int64

// nextLoop returns a fresh tick loop identifier.
func nextLoop() int64 {
	return loopIDs.Add(1)
}

// tickCmd returns a Bubble Tea command that sends one tick after interval.
func tickCmd(loop int64, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, Loop: loop}
	})
}
