package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/level"
)

// ProgressView reports how many levels a player has unlocked.
// *progress.Store implements it.
type ProgressView interface {
	Unlocked(ctx context.Context, userID string, d config.Difficulty) int
}

// MenuItem represents a selectable level in the menu.
type MenuItem struct {
	LevelID string
	Title   string
	Ordinal int
	Mode    string
}

// MenuModel is the Bubble Tea model for the level picker menu.
type MenuModel struct {
	items          []MenuItem
	cursor         int
	width          int
	height         int
	user           string
	difficulty     config.Difficulty
	progress       ProgressView
	unlocked       int
	keyMapper      *KeyMapper
	message        string
	quitting       bool
	selected       *MenuItem // Set when user selects a level
	openScoreboard bool      // True if user pressed Tab for scoreboard
}

// NewMenuModel creates a new menu model. A nil progress view unlocks every level.
func NewMenuModel(levels *level.Registry, prog ProgressView, user string, d config.Difficulty, width, height int) MenuModel {
	var infos []level.Info
	if levels != nil {
		infos = levels.List()
	}
	items := make([]MenuItem, 0, len(infos))
	for _, l := range infos {
		items = append(items, MenuItem{
			LevelID: l.ID,
			Title:   l.Title,
			Ordinal: l.Ordinal,
			Mode:    l.Mode,
		})
	}

	m := MenuModel{
		items:      items,
		width:      width,
		height:     height,
		user:       user,
		difficulty: d,
		progress:   prog,
		keyMapper:  NewKeyMapper(),
	}
	m.refresh()

	// Start on the furthest unlocked level
	for i, item := range m.items {
		if m.playable(item) {
			m.cursor = i
		}
	}
	return m
}

func (m *MenuModel) refresh() {
	if m.progress == nil {
		m.unlocked = len(m.items)
		for _, item := range m.items {
			m.unlocked = max(m.unlocked, item.Ordinal)
		}
		return
	}
	m.unlocked = m.progress.Unlocked(context.Background(), m.user, m.difficulty)
}

func (m MenuModel) playable(item MenuItem) bool {
	return item.Ordinal >= 1 && item.Ordinal <= m.unlocked
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keyMapper.MapKeyToMenuAction(msg)
	m.message = ""

	switch action {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionLeft:
		m.difficulty = cycleDifficulty(m.difficulty, -1)
		m.refresh()

	case MenuActionRight:
		m.difficulty = cycleDifficulty(m.difficulty, 1)
		m.refresh()

	case MenuActionSelect:
		if len(m.items) == 0 {
			return m, nil
		}
		item := m.items[m.cursor]
		if !m.playable(item) {
			m.message = fmt.Sprintf("Locked: finish level %d first", item.Ordinal-1)
			return m, nil
		}
		m.selected = &item
		return m, nil

	case MenuActionScoreboard:
		m.openScoreboard = true
		return m, nil
	}

	return m, nil
}

func cycleDifficulty(d config.Difficulty, step int) config.Difficulty {
	all := config.Difficulties
	for i, v := range all {
		if v == d {
			return all[(i+step+len(all))%len(all)]
		}
	}
	return d
}

var (
	menuTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	menuCursor  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	menuLocked  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	menuWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(menuTitle.Render("  L E A R N   &   P L A Y  "), m.width))
	b.WriteString("\n\n")

	sub := fmt.Sprintf("Player: %s   Difficulty: < %s >", m.user, m.difficulty)
	b.WriteString(centerText(sub, m.width))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(centerText(dimText.Render("No levels found."), m.width))
		b.WriteString("\n")
	}

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%2d. %-24s", cursor, item.Ordinal, item.Title)
		switch {
		case !m.playable(item):
			line = menuLocked.Render(line + " [locked]")
		case i == m.cursor:
			line = menuCursor.Render(line + " " + item.Mode)
		default:
			line += " " + item.Mode
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(centerText(menuWarning.Render(m.message), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Left/Right: Difficulty  |  Enter: Play  |  Tab: Scores  |  Q: Quit"
	b.WriteString(centerText(dimText.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// Difficulty returns the difficulty chosen in the menu.
func (m MenuModel) Difficulty() config.Difficulty {
	return m.difficulty
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}
