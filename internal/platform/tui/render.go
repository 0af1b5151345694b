package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/edu-arcade/internal/core"
	"github.com/vovakirdan/edu-arcade/internal/engine"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same color for efficiency
		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// Playfield placement on the screen: a HUD row, then the bordered field.
const (
	fieldX = 1
	fieldY = 2

	minScreenWidth = 40 // Room for the HUD on narrow fields
)

// boxSize returns the size of the bordered field.
func boxSize(spec engine.LevelSpec) (w, h int) {
	return int(math.Ceil(spec.Field.X)) + 2, int(math.Ceil(spec.Field.Y)) + 2
}

// ScreenSize returns the screen dimensions needed to draw a level.
func ScreenSize(spec engine.LevelSpec) (w, h int) {
	bw, bh := boxSize(spec)
	return max(bw, minScreenWidth), bh + 1
}

// ToField converts a screen cell to the field position at its centre.
func ToField(sx, sy int) core.Vec {
	return core.V(float64(sx-fieldX)+0.5, float64(sy-fieldY)+0.5)
}

func toScreen(p core.Vec) (int, int) {
	return fieldX + int(math.Floor(p.X)), fieldY + int(math.Floor(p.Y))
}

// DrawGame draws the HUD, the field border and every visible body.
func DrawGame(scr *core.Screen, g *engine.Game) {
	spec := g.Spec()
	scr.Clear()
	w, h := boxSize(spec)
	scr.DrawBox(0, fieldY-1, w, h, core.ColorGray)
	midY := fieldY - 1 + h/2

	s := g.Session()
	if s == nil {
		drawCentered(scr, w, midY, spec.Title)
		return
	}

	drawHUD(scr, spec, s)
	for _, e := range s.Store().Live() {
		if !e.Hidden {
			drawEntity(scr, spec, e)
		}
	}
	if fx := s.Effect(); fx != nil && fx.Active() {
		drawEffect(scr, spec, s.Actor().Pos, fx)
	}
	drawActor(scr, spec, s.Actor())

	switch g.State() {
	case engine.StatePreview:
		drawCentered(scr, w, fieldY-1, " Remember the cards! ")
	case engine.StatePaused:
		drawCentered(scr, w, midY, " PAUSED ")
	}
}

// drawCentered centres text over the first w columns.
func drawCentered(scr *core.Screen, w, y int, text string) {
	x := max((w-len([]rune(text)))/2, 0)
	scr.DrawText(x, y, text)
}

func drawHUD(scr *core.Screen, spec engine.LevelSpec, s *engine.Session) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  Score %d  ", spec.Title, s.Score)
	if s.MaxLives > 1 || s.Lives > 1 {
		fmt.Fprintf(&b, "%s  ", strings.Repeat("♥", max(s.Lives, 0)))
	}
	if spec.TimeLimit > 0 {
		fmt.Fprintf(&b, "%ds  ", int(math.Ceil(s.Remaining.Seconds())))
	}
	for _, p := range s.PowerUps().Active() {
		fmt.Fprintf(&b, "%c %s ", p.Kind.Glyph(), s.PowerUps().Remaining(p.Kind).Round(time.Second))
	}
	scr.DrawText(0, 0, b.String())
}

func inField(spec engine.LevelSpec, p core.Vec) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < spec.Field.X && p.Y < spec.Field.Y
}

// cells calls fn for every field cell covered by r.
func cells(spec engine.LevelSpec, r core.Rect, fn func(x, y int)) {
	x0, y0 := math.Floor(r.X), math.Floor(r.Y)
	x1, y1 := math.Ceil(r.Right()), math.Ceil(r.Bottom())
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if inField(spec, core.V(x, y)) {
				sx, sy := toScreen(core.V(x, y))
				fn(sx, sy)
			}
		}
	}
}

func drawEntity(scr *core.Screen, spec engine.LevelSpec, e *engine.Entity) {
	if e.Pair > 0 {
		drawCard(scr, spec, e)
		return
	}
	glyph := e.Glyph
	if glyph == 0 {
		glyph = '*'
	}
	cells(spec, e.Bounds(), func(x, y int) {
		scr.SetColored(x, y, glyph, e.Color)
	})
}

func drawCard(scr *core.Screen, spec engine.LevelSpec, e *engine.Entity) {
	r := e.Bounds()
	if !e.Revealed {
		cells(spec, r, func(x, y int) { scr.SetColored(x, y, '░', core.ColorBlue) })
		return
	}
	cells(spec, r, func(x, y int) { scr.SetColored(x, y, ' ', core.ColorDefault) })
	x, y := toScreen(core.V(r.X, r.Y))
	scr.DrawBox(x, y, int(math.Ceil(r.W)), int(math.Ceil(r.H)), core.ColorGray)
	cx, cy := toScreen(e.Pos)
	scr.SetColored(cx, cy, engine.CardGlyph(e.Pair), core.ColorBrightYellow)
}

func drawEffect(scr *core.Screen, spec engine.LevelSpec, origin core.Vec, fx *engine.Effect) {
	dir := fx.Spec.Dir.Norm()
	for d := 0.5; d <= fx.Length; d += 0.5 {
		p := origin.Add(dir.Scale(d))
		if !inField(spec, p) {
			break
		}
		x, y := toScreen(p)
		scr.SetColored(x, y, '~', core.ColorBrightMagenta)
	}
}

func drawActor(scr *core.Screen, spec engine.LevelSpec, a *engine.Actor) {
	switch a.Spec.Mode {
	case engine.ActorNone:
		return
	case engine.ActorCursor:
		x, y := toScreen(a.Pos)
		cell := scr.GetCell(x, y)
		r := cell.Rune
		if r == ' ' {
			r = '+'
		}
		scr.SetColored(x, y, r, core.ColorBrightWhite)
		scr.SetColored(x-1, y, '[', core.ColorBrightWhite)
		scr.SetColored(x+1, y, ']', core.ColorBrightWhite)
		return
	}
	glyph := a.Spec.Glyph
	if glyph == 0 {
		glyph = '@'
	}
	color := a.Spec.Color
	if color == core.ColorDefault {
		color = core.ColorBrightGreen
	}
	cells(spec, a.Bounds(), func(x, y int) {
		scr.SetColored(x, y, glyph, color)
	})
}
