package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/level"
	"github.com/vovakirdan/edu-arcade/internal/storage"
)

const (
	minWidthForSidebar = 90  // Show the level list beside the table
	sidebarWidth       = 24
	maxScores          = 100 // Scores loaded per level
)

var (
	boardTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	boardFrame   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	boardCurrent = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	boardEmpty   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true).Padding(2, 4)
)

// ScoreSource provides stored scores per level. *storage.Store implements it.
type ScoreSource interface {
	TopScores(levelID string, limit int) ([]storage.ScoreEntry, error)
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Prev   key.Binding
	Next   key.Binding
	Filter key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Prev, k.Next, k.Filter, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Prev, k.Next},
		{k.Filter, k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns the default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "scroll up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "scroll down")),
		Prev:   key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("left", "prev level")),
		Next:   key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("right", "next level")),
		Filter: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "difficulty")),
		Back:   key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "back")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ScoreboardModel lists the best scores of one level at a time, optionally
// narrowed to a single difficulty track.
type ScoreboardModel struct {
	levels      []level.Info
	levelCursor int
	source      ScoreSource
	all         []storage.ScoreEntry // Loaded for the current level
	scores      []storage.ScoreEntry // After the difficulty filter
	filter      int                  // 0 shows every track, otherwise index+1 into config.Difficulties
	table       table.Model
	help        help.Model
	keys        ScoreboardKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	standalone  bool // Quit the program on back
}

// NewScoreboardModel creates a new scoreboard model.
func NewScoreboardModel(levels *level.Registry, source ScoreSource, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		source: source,
		keys:   DefaultScoreboardKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	if levels != nil {
		m.levels = levels.List()
	}
	m.table = m.createTable()
	m.load()
	return m
}

func (m *ScoreboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Points", Width: 8},
		{Title: "Stars", Width: 6},
		{Title: "Player", Width: 10},
		{Title: "Track", Width: 7},
		{Title: "Date", Width: 13},
	}
	// Spare width goes to the player column
	avail := m.width - 4
	if m.width >= minWidthForSidebar {
		avail -= sidebarWidth + 3
	}
	if spare := avail - 61; spare > 0 {
		columns[3].Width += min(spare, 10)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-9, 5)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// load fetches scores for the current level and applies the filter.
func (m *ScoreboardModel) load() {
	m.all = nil
	if m.source != nil && len(m.levels) > 0 {
		if scores, err := m.source.TopScores(m.Level(), maxScores); err == nil {
			m.all = scores
		}
	}
	m.applyFilter()
}

func (m *ScoreboardModel) applyFilter() {
	track := m.Track()
	var shown []storage.ScoreEntry
	for _, s := range m.all {
		if track == "" || s.Difficulty == track {
			shown = append(shown, s)
		}
	}
	m.scores = shown

	rows := make([]table.Row, len(m.scores))
	for i, s := range m.scores {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			fmt.Sprintf("%d", s.Points),
			strings.Repeat("*", s.Stars),
			s.UserID,
			s.Difficulty,
			s.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m *ScoreboardModel) moveLevel(delta int) {
	if len(m.levels) == 0 {
		return
	}
	m.levelCursor = (m.levelCursor + delta + len(m.levels)) % len(m.levels)
	m.load()
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			if m.standalone {
				return m, tea.Quit
			}
			return m, nil
		case key.Matches(msg, m.keys.Next):
			m.moveLevel(1)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.moveLevel(-1)
			return m, nil
		case key.Matches(msg, m.keys.Filter):
			m.filter = (m.filter + 1) % (len(config.Difficulties) + 1)
			m.applyFilter()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table = m.createTable()
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	title := "HIGH SCORES"
	if len(m.levels) > 0 {
		title += " - " + m.levels[m.levelCursor].Title
	}
	track := m.Track()
	if track == "" {
		track = "all tracks"
	}

	var b strings.Builder
	b.WriteString(centerText(boardTitle.Render(title), m.width))
	b.WriteString("\n")
	b.WriteString(centerText(dimText.Render(track+"  "+m.summary()), m.width))
	b.WriteString("\n\n")

	body := boardFrame.Render(m.tableContent())
	if m.width >= minWidthForSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar(), "  ", body))
	} else {
		b.WriteString(centerText(m.levelStrip(), m.width))
		b.WriteString("\n\n")
		b.WriteString(centerText(body, m.width))
	}

	b.WriteString("\n")
	b.WriteString(dimText.Render(m.help.View(m.keys)))
	return b.String()
}

// summary describes the shown scores: best points and perfect runs.
func (m ScoreboardModel) summary() string {
	if len(m.scores) == 0 {
		return "no runs"
	}
	perfect := 0
	for _, s := range m.scores {
		if s.Stars == 3 {
			perfect++
		}
	}
	return fmt.Sprintf("best %d  runs %d  perfect %d", m.scores[0].Points, len(m.scores), perfect)
}

func (m ScoreboardModel) sidebar() string {
	var b strings.Builder
	b.WriteString("Levels\n")
	b.WriteString(strings.Repeat("-", sidebarWidth-4))
	for i, l := range m.levels {
		name := truncate(fmt.Sprintf("%d. %s", l.Ordinal, l.Title), sidebarWidth-6)
		b.WriteString("\n")
		if i == m.levelCursor {
			b.WriteString(boardCurrent.Render("> " + name))
		} else {
			b.WriteString("  " + name)
		}
	}
	return boardFrame.Width(sidebarWidth).Render(b.String())
}

// levelStrip shows neighbouring levels around the current one.
func (m ScoreboardModel) levelStrip() string {
	if len(m.levels) == 0 {
		return ""
	}
	cur := m.levels[m.levelCursor]
	return fmt.Sprintf("< %d/%d  %s >", cur.Ordinal, len(m.levels), boardCurrent.Render(truncate(cur.Title, 20)))
}

func (m ScoreboardModel) tableContent() string {
	if len(m.scores) == 0 {
		return boardEmpty.Render("No scores recorded yet.\nPlay this level to set a high score!")
	}
	return m.table.View()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}

// Level returns the ID of the level whose scores are shown.
func (m ScoreboardModel) Level() string {
	if len(m.levels) == 0 {
		return ""
	}
	return m.levels[m.levelCursor].ID
}

// Track returns the difficulty the scores are narrowed to, or "" for all.
func (m ScoreboardModel) Track() string {
	if m.filter == 0 {
		return ""
	}
	return config.Difficulties[m.filter-1].String()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunScoreboard(levels *level.Registry, source ScoreSource, width, height int) (goBack bool, err error) {
	model := NewScoreboardModel(levels, source, width, height)
	model.standalone = true

	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(ScoreboardModel)
	return ok && m.IsGoingBack(), nil
}
