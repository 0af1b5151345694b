package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/core"
	"github.com/vovakirdan/edu-arcade/internal/engine"
	"github.com/vovakirdan/edu-arcade/internal/level"
	"github.com/vovakirdan/edu-arcade/internal/report"
)

// Services are the shared dependencies of every screen.
type Services struct {
	Levels     *level.Registry
	Progress   ProgressView // Nil unlocks every level
	Scores     ScoreSource  // Nil hides the scoreboard
	Reporter   *report.Reporter
	Audio      engine.AudioPlayer
	Difficulty config.DifficultyConfig
	Runtime    core.RuntimeConfig
	Logger     *log.Logger
}

// Sink returns the result sink for a player, or nil without a reporter.
func (s Services) Sink(user string, d config.Difficulty) engine.ResultSink {
	if s.Reporter == nil {
		return nil
	}
	return s.Reporter.For(user, d)
}

func (s Services) log() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}

type screenMode int

const (
	modeMenu screenMode = iota
	modePlay
	modeScores
)

// SessionModel manages the full arcade flow: menu -> level -> result -> menu.
// It is the top-level model for both local and SSH sessions.
type SessionModel struct {
	svc        Services
	user       string
	difficulty config.Difficulty
	width      int
	height     int
	mode       screenMode
	menu       MenuModel
	play       *PlayModel
	scores     *ScoreboardModel
	quitting   bool
}

// NewSessionModel creates a new session model for user.
func NewSessionModel(svc Services, user string, d config.Difficulty) SessionModel {
	w, h := svc.Runtime.ScreenW, svc.Runtime.ScreenH
	return SessionModel{
		svc:        svc,
		user:       user,
		difficulty: d,
		width:      w,
		height:     h,
		menu:       NewMenuModel(svc.Levels, svc.Progress, user, d, w, h),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	switch m.mode {
	case modePlay:
		return m.updatePlay(msg)
	case modeScores:
		return m.updateScores(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}
	m.difficulty = m.menu.Difficulty()

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.menu.WantsScoreboard() {
		board := NewScoreboardModel(m.svc.Levels, m.svc.Scores, m.width, m.height)
		m.scores = &board
		m.mode = modeScores
		return m, board.Init()
	}

	if selected := m.menu.Selected(); selected != nil {
		return m.startLevel(selected.LevelID)
	}

	return m, cmd
}

func (m SessionModel) startLevel(id string) (tea.Model, tea.Cmd) {
	lvl, err := m.svc.Levels.Get(id)
	if err != nil {
		m.svc.log().Warn("level disappeared", "level", id, "error", err)
		return m.backToMenu(fmt.Sprintf("Level %q is no longer available", id))
	}

	play := NewPlayModel(lvl, m.svc, m.difficulty, m.svc.Sink(m.user, m.difficulty))
	play.help.Width = m.width
	m.play = &play
	m.mode = modePlay
	m.svc.log().Debug("level started", "user", m.user, "level", id, "difficulty", m.difficulty)
	return m, m.play.Init()
}

// updatePlay handles updates when a level is running.
func (m SessionModel) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.play.Update(msg)
	if playModel, ok := newModel.(PlayModel); ok {
		m.play = &playModel
	}

	if m.play.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.play.WantsNext() {
		res, _ := m.play.Result()
		next, err := m.svc.Levels.ByOrdinal(res.Ordinal + 1)
		if err != nil {
			return m.backToMenu("You finished every level!")
		}
		if m.svc.Progress != nil && m.svc.Progress.Unlocked(context.Background(), m.user, m.difficulty) < next.Ordinal() {
			return m.backToMenu(fmt.Sprintf("Level %d is still locked", next.Ordinal()))
		}
		return m.startLevel(next.ID())
	}

	if m.play.BackToMenu() {
		return m.backToMenu("")
	}

	return m, cmd
}

// updateScores handles updates when the scoreboard is shown.
func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.scores.Update(msg)
	if board, ok := newModel.(ScoreboardModel); ok {
		m.scores = &board
	}

	if m.scores.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scores.IsGoingBack() {
		return m.backToMenu("")
	}
	return m, cmd
}

func (m SessionModel) backToMenu(message string) (tea.Model, tea.Cmd) {
	m.mode = modeMenu
	m.play = nil
	m.scores = nil
	m.menu = NewMenuModel(m.svc.Levels, m.svc.Progress, m.user, m.difficulty, m.width, m.height)
	m.menu.message = message
	return m, m.menu.Init()
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.mode {
	case modePlay:
		return m.play.View()
	case modeScores:
		return m.scores.View()
	}
	return m.menu.View()
}

// RunSession runs the menu-driven arcade in the local terminal.
func RunSession(svc Services, user string, d config.Difficulty) error {
	p := tea.NewProgram(
		NewSessionModel(svc, user, d),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
