package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/core"
	"github.com/vovakirdan/edu-arcade/internal/engine"
	"github.com/vovakirdan/edu-arcade/internal/level"
)

// navigator records where the engine asked to go. The engine calls it
// synchronously from Frame, Input and Exit.
type navigator struct {
	screen string
	params map[string]any
	back   bool
}

func (n *navigator) GoBack() {
	n.back = true
}

func (n *navigator) Navigate(screen string, params map[string]any) {
	n.screen = screen
	n.params = params
}

func (n *navigator) reset() {
	n.screen = ""
	n.params = nil
	n.back = false
}

// PlayModel runs one level inside Bubble Tea.
type PlayModel struct {
	game     *engine.Game
	nav      *navigator
	screen   *core.Screen
	interval time.Duration
	loop     int64
	keys     *KeyMapper
	help     help.Model
	helpKeys PlayKeyMap

	result     *engine.Result
	err        error
	quitting   bool
	backToMenu bool
	wantsNext  bool
	standalone bool // Quit the program instead of returning to a menu
}

// NewPlayModel creates a play model for the level. sink receives the result
// of every finished session and may be nil.
func NewPlayModel(lvl level.Level, svc Services, d config.Difficulty, sink engine.ResultSink) PlayModel {
	nav := &navigator{}
	game := engine.New(lvl.Spec, engine.Options{
		Tier:    d.Tier(),
		Scaler:  lvl.Scaler(svc.Difficulty),
		Runtime: svc.Runtime,
		Audio:   svc.Audio,
		Sink:    sink,
		Nav:     nav,
	})

	fire := "action"
	switch {
	case lvl.Spec.Actor.Mode == engine.ActorCursor:
		fire = "tap"
	case lvl.Spec.Actor.Mode == engine.ActorRunner:
		fire = "jump"
	case lvl.Spec.Effect != nil:
		fire = "throw"
	}

	w, h := ScreenSize(lvl.Spec)
	return PlayModel{
		game:     game,
		nav:      nav,
		screen:   core.NewScreen(w, h),
		interval: svc.Runtime.FrameDuration(),
		loop:     nextLoop(),
		keys:     NewKeyMapper(),
		help:     help.New(),
		helpKeys: DefaultPlayKeyMap(fire),
	}
}

// Init starts the first session and the tick loop.
func (m PlayModel) Init() tea.Cmd {
	if err := m.game.Start(); err != nil {
		return func() tea.Msg { return startErrMsg{err} }
	}
	return tickCmd(m.loop, m.interval)
}

type startErrMsg struct{ err error }

// Update handles messages.
func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.result != nil {
			return m.handleResultKey(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.game.Tap(ToField(msg.X, msg.Y))
			return m.afterEngine(nil)
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case TickMsg:
		if msg.Loop != m.loop || m.result != nil || m.game.Session() == nil {
			return m, nil
		}
		m.game.Frame(msg.Time)
		return m.afterEngine(tickCmd(m.loop, m.interval))

	case startErrMsg:
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m PlayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		m.game.Exit()
		m.quitting = true
		return m, tea.Quit
	}

	switch action {
	case core.ActionNone:
		return m, nil
	case core.ActionBack:
		if m.game.Session() == nil {
			return m.leave()
		}
		m.game.Exit()
		return m.afterEngine(nil)
	}

	m.game.Input(action)
	return m.afterEngine(nil)
}

func (m PlayModel) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "r", "enter", " ":
		m.result = nil
		m.nav.reset()
		if err := m.game.Start(); err != nil {
			m.err = err
			return m, nil
		}
		// A tick from the finished session may still be in flight
		m.loop = nextLoop()
		return m, tickCmd(m.loop, m.interval)
	case "n":
		if m.result.Won() && !m.standalone {
			m.wantsNext = true
		}
	case "b", "esc":
		return m.leave()
	}
	return m, nil
}

// afterEngine reacts to navigation requested by the engine. next is the
// command to return when the session keeps running.
func (m PlayModel) afterEngine(next tea.Cmd) (tea.Model, tea.Cmd) {
	switch {
	case m.nav.back:
		m.nav.reset()
		return m.leave()
	case m.nav.screen == engine.ScreenResult:
		m.nav.reset()
		if res, ok := m.game.LastResult(); ok {
			m.result = &res
		}
		return m, nil
	}
	return m, next
}

func (m PlayModel) leave() (tea.Model, tea.Cmd) {
	m.backToMenu = true
	if m.standalone {
		return m, tea.Quit
	}
	return m, nil
}

// View renders the field or the result card.
func (m PlayModel) View() string {
	if m.quitting {
		return ""
	}
	if m.err != nil {
		return fmt.Sprintf("\n  Could not start level: %v\n\n  Press q to quit.\n", m.err)
	}
	if m.result != nil {
		return renderResult(*m.result, m.standalone)
	}

	DrawGame(m.screen, m.game)
	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(m.help.View(m.helpKeys)))
	return b.String()
}

// Game returns the engine game being played.
func (m PlayModel) Game() *engine.Game {
	return m.game
}

// Result returns the last finished session shown on screen, if any.
func (m PlayModel) Result() (engine.Result, bool) {
	if m.result == nil {
		return engine.Result{}, false
	}
	return *m.result, true
}

// IsQuitting returns true if user requested to quit entirely.
func (m PlayModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m PlayModel) BackToMenu() bool {
	return m.backToMenu
}

// WantsNext returns true if user asked for the next level after a win.
func (m PlayModel) WantsNext() bool {
	return m.wantsNext
}

// RunPlay plays a single level until the user quits or goes back.
func RunPlay(lvl level.Level, svc Services, d config.Difficulty, sink engine.ResultSink) error {
	model := NewPlayModel(lvl, svc, d, sink)
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
