package level

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vovakirdan/edu-arcade/internal/core"
	"github.com/vovakirdan/edu-arcade/internal/engine"
)

// maxPairs is the number of distinct card faces.
const maxPairs = 26

// compiler collects validation issues while building a spec.
type compiler struct {
	id     string
	issues []error
}

func (c *compiler) fail(code, format string, args ...any) {
	c.issues = append(c.issues, ValidationError{Level: c.id, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Compile validates a descriptor and converts it to an engine spec.
// Every problem found is returned, joined into one error.
func Compile(d Descriptor) (engine.LevelSpec, error) {
	c := &compiler{id: d.ID}
	if d.ID == "" {
		c.id = "?"
		c.fail("MISSING_ID", "id is required")
	}
	if d.Ordinal < 1 {
		c.fail("BAD_ORDINAL", "ordinal must be at least 1, got %d", d.Ordinal)
	}

	spec := engine.LevelSpec{
		ID:         d.ID,
		Title:      d.Title,
		Ordinal:    d.Ordinal,
		Mode:       engine.Mode(strings.ToLower(d.Mode)),
		Field:      core.V(d.Field.W, d.Field.H),
		TimeLimit:  d.TimeLimit,
		Lives:      d.Lives,
		MaxLives:   d.MaxLives,
		Leniency:   d.Leniency,
		Preview:    d.Preview,
		Stars:      d.Stars,
		TimeBonus:  d.TimeBonus,
		Layout:     d.Layout,
		Gravity:    d.Gravity,
		MagnetPull: d.MagnetPull,
	}
	if spec.Title == "" {
		spec.Title = d.ID
	}

	switch spec.Mode {
	case engine.ModeCatch, engine.ModeTap, engine.ModeMatch:
	case "":
		spec.Mode = engine.ModeCatch
	default:
		c.fail("BAD_MODE", "unknown mode %q", d.Mode)
	}
	if d.Field.W <= 0 || d.Field.H <= 0 {
		c.fail("BAD_FIELD", "field must be positive, got %vx%v", d.Field.W, d.Field.H)
	}
	if d.TimeLimit < 0 {
		c.fail("BAD_TIME_LIMIT", "time_limit must not be negative")
	}
	if d.Lives < 1 {
		c.fail("BAD_LIVES", "lives must be at least 1, got %d", d.Lives)
	}
	if spec.MaxLives < spec.Lives {
		spec.MaxLives = spec.Lives
	}
	switch {
	case spec.Leniency == 0:
		spec.Leniency = engine.DefaultLeniency
	case spec.Leniency < 1:
		c.fail("BAD_LENIENCY", "leniency must be at least 1, got %v", spec.Leniency)
	}
	for i := 1; i < len(d.Stars); i++ {
		if d.Stars[i] < d.Stars[i-1] {
			c.fail("BAD_STARS", "star thresholds must not decrease: %v", d.Stars)
			break
		}
	}

	spec.Actor = c.actor(d.Actor, spec.Mode)
	if d.Effect != nil {
		if d.Effect.MaxLength <= 0 || d.Effect.Speed <= 0 {
			c.fail("BAD_EFFECT", "effect needs positive max_length and speed")
		}
		dir := core.V(d.Effect.Dir.X, d.Effect.Dir.Y)
		if dir.Len() == 0 {
			c.fail("BAD_EFFECT", "effect direction must not be zero")
		}
		width := d.Effect.Width
		if width <= 0 {
			width = 1
		}
		spec.Effect = &engine.EffectSpec{Dir: dir.Norm(), MaxLength: d.Effect.MaxLength, Width: width, Speed: d.Effect.Speed}
	}

	if spec.Mode == engine.ModeMatch {
		if d.Match == nil {
			c.fail("MISSING_MATCH", "match mode needs a match block")
		} else {
			if d.Match.Pairs < 1 || d.Match.Pairs > maxPairs {
				c.fail("BAD_MATCH", "pairs must be in 1..%d, got %d", maxPairs, d.Match.Pairs)
			}
			spec.Match = &engine.MatchSpec{
				Pairs:    d.Match.Pairs,
				Columns:  d.Match.Columns,
				CardSize: core.V(d.Match.Card.W, d.Match.Card.H),
				Gap:      d.Match.Gap,
				Value:    d.Match.Value,
				FlipBack: d.Match.FlipBack,
			}
		}
	} else if d.Preview > 0 {
		c.fail("BAD_PREVIEW", "preview is only supported in match mode")
	}

	spec.Win = c.win(d)
	c.layout(d)

	if len(d.PowerUps) > 0 {
		spec.Durations = make(map[engine.PowerUpKind]time.Duration, len(d.PowerUps))
		for name, dur := range d.PowerUps {
			k := engine.PowerUpKind(name)
			if !k.Timed() {
				c.fail("BAD_POWERUP", "duration given for %q, which is not a timed power-up", name)
				continue
			}
			spec.Durations[k] = dur
		}
	}

	seen := make(map[string]bool)
	for i, sd := range d.Spawns {
		if sd.Tag != "" && seen[sd.Tag] {
			c.fail("DUPLICATE_TAG", "spawn %d reuses tag %q", i, sd.Tag)
		}
		seen[sd.Tag] = true
		spec.Spawns = append(spec.Spawns, c.spawn(i, sd))
	}

	if len(c.issues) > 0 {
		return engine.LevelSpec{}, errors.Join(c.issues...)
	}
	return spec, nil
}

func (c *compiler) actor(a ActorDescriptor, mode engine.Mode) engine.ActorSpec {
	m := engine.ActorMode(strings.ToLower(a.Mode))
	switch m {
	case engine.ActorHorizontal, engine.ActorFree, engine.ActorRunner, engine.ActorGrid,
		engine.ActorCursor, engine.ActorNone:
	case "":
		if mode == engine.ModeCatch {
			m = engine.ActorHorizontal
		} else {
			m = engine.ActorCursor
		}
	default:
		c.fail("BAD_ACTOR", "unknown actor mode %q", a.Mode)
	}
	if m == engine.ActorRunner && (a.Jump <= 0 || a.Gravity <= 0) {
		c.fail("BAD_ACTOR", "runner needs positive jump and gravity")
	}

	size := core.V(a.Size.W, a.Size.H)
	if size.X <= 0 || size.Y <= 0 {
		size = core.V(1, 1)
	}
	color, ok := ParseColor(a.Color)
	if !ok {
		c.fail("BAD_COLOR", "unknown actor color %q", a.Color)
	}
	return engine.ActorSpec{
		Mode:    m,
		Start:   core.V(a.Start.X, a.Start.Y),
		Size:    size,
		Step:    a.Step,
		StepY:   a.StepY,
		Jump:    a.Jump,
		Gravity: a.Gravity,
		Glyph:   glyph(a.Glyph, '@'),
		Color:   color,
	}
}

func (c *compiler) win(d Descriptor) engine.WinRule {
	w := engine.WinRule{Kind: engine.WinKind(strings.ToLower(d.Win.Kind)), Score: d.Win.Score, Tag: d.Win.Tag}
	switch w.Kind {
	case engine.WinScore:
		if w.Score <= 0 {
			c.fail("BAD_WIN", "score win needs a positive score")
		}
	case engine.WinCleared:
		if w.Tag == "" && strings.EqualFold(d.Mode, string(engine.ModeMatch)) {
			w.Tag = "card"
		}
	case engine.WinGoal:
		if !hasCell(d.Layout, engine.CellGoal) {
			c.fail("BAD_WIN", "goal win needs a %q cell in the layout", engine.CellGoal)
		}
	case engine.WinSurvive:
		if d.TimeLimit <= 0 {
			c.fail("BAD_WIN", "survive win needs a time_limit")
		}
	case engine.WinNone:
	case "":
		w.Kind = engine.WinNone
	default:
		c.fail("BAD_WIN", "unknown win kind %q", d.Win.Kind)
	}
	return w
}

func (c *compiler) layout(d Descriptor) {
	if len(d.Layout) == 0 {
		return
	}
	starts := 0
	for row, line := range d.Layout {
		if float64(row) >= d.Field.H || float64(len([]rune(line))) > d.Field.W {
			c.fail("BAD_LAYOUT", "layout row %d does not fit the field", row)
			return
		}
		for _, ch := range line {
			switch ch {
			case engine.CellStart:
				starts++
			case engine.CellWall, engine.CellGoal, engine.CellCoin, engine.CellHazard, ' ', '.':
			default:
				c.fail("BAD_LAYOUT", "unknown layout cell %q in row %d", ch, row)
			}
		}
	}
	if starts > 1 {
		c.fail("BAD_LAYOUT", "layout has %d start cells", starts)
	}
}

func (c *compiler) spawn(i int, sd SpawnDescriptor) engine.SpawnRule {
	r := engine.SpawnRule{
		Tag:        sd.Tag,
		Interval:   sd.Interval,
		Cap:        sd.Cap,
		Chance:     1,
		Total:      sd.Total,
		Edge:       engine.Edge(strings.ToLower(sd.Edge)),
		Size:       core.V(sd.Size.W, sd.Size.H),
		Value:      sd.Value,
		Damage:     sd.Damage,
		MissDamage: sd.MissDamage,
		PowerUp:    engine.PowerUpKind(sd.PowerUp),
		TTL:        sd.TTL,
	}
	if r.Tag == "" {
		c.fail("BAD_SPAWN", "spawn %d needs a tag", i)
	}
	if sd.Chance != nil {
		r.Chance = *sd.Chance
		if r.Chance < 0 || r.Chance > 1 {
			c.fail("BAD_SPAWN", "spawn %s chance must be in [0, 1]", sd.Tag)
		}
	}
	if r.Interval <= 0 {
		c.fail("BAD_SPAWN", "spawn %s needs a positive interval", sd.Tag)
	}

	kind, ok := engine.ParseKind(strings.ToLower(sd.Kind))
	if !ok || kind == engine.KindPlayer {
		c.fail("BAD_SPAWN", "spawn %s has invalid kind %q", sd.Tag, sd.Kind)
	}
	r.Kind = kind
	if kind == engine.KindPowerUp && !r.PowerUp.Valid() {
		c.fail("BAD_SPAWN", "spawn %s has unknown power-up %q", sd.Tag, sd.PowerUp)
	}

	switch r.Edge {
	case engine.EdgeTop, engine.EdgeBottom, engine.EdgeLeft, engine.EdgeRight, engine.EdgeInside:
	case "":
		r.Edge = engine.EdgeTop
	default:
		c.fail("BAD_SPAWN", "spawn %s has unknown edge %q", sd.Tag, sd.Edge)
	}

	if len(sd.Band) == 2 {
		r.Band = [2]float64{sd.Band[0], sd.Band[1]}
	} else if len(sd.Band) != 0 {
		c.fail("BAD_SPAWN", "spawn %s band needs two values", sd.Tag)
	}
	switch len(sd.Speed) {
	case 0:
	case 1:
		r.SpeedMin, r.SpeedMax = sd.Speed[0], sd.Speed[0]
	case 2:
		r.SpeedMin, r.SpeedMax = sd.Speed[0], sd.Speed[1]
	default:
		c.fail("BAD_SPAWN", "spawn %s speed needs one or two values", sd.Tag)
	}
	if r.SpeedMin < 0 || r.SpeedMax < r.SpeedMin {
		c.fail("BAD_SPAWN", "spawn %s has an invalid speed range %v", sd.Tag, sd.Speed)
	}
	if r.Size.X <= 0 || r.Size.Y <= 0 {
		r.Size = core.V(1, 1)
	}

	switch strings.ToLower(sd.Shape) {
	case "", "rect":
		r.Shape = engine.ShapeRect
	case "circle":
		r.Shape = engine.ShapeCircle
	default:
		c.fail("BAD_SPAWN", "spawn %s has unknown shape %q", sd.Tag, sd.Shape)
	}

	for _, b := range sd.Behavior {
		switch strings.ToLower(b) {
		case "gravity":
			r.Behavior |= engine.BehaviorGravity
		case "bounce":
			r.Behavior |= engine.BehaviorBounce
		default:
			c.fail("BAD_SPAWN", "spawn %s has unknown behavior %q", sd.Tag, b)
		}
	}

	color, ok := ParseColor(sd.Color)
	if !ok {
		c.fail("BAD_COLOR", "spawn %s has unknown color %q", sd.Tag, sd.Color)
	}
	r.Color = color
	r.Glyph = glyph(sd.Glyph, defaultGlyph(kind, r.PowerUp))
	return r
}

func defaultGlyph(k engine.Kind, p engine.PowerUpKind) rune {
	switch k {
	case engine.KindCollectible:
		return '*'
	case engine.KindHazard:
		return 'X'
	case engine.KindObstacle:
		return '#'
	case engine.KindPowerUp:
		return p.Glyph()
	default:
		return '?'
	}
}

func hasCell(layout []string, cell rune) bool {
	for _, line := range layout {
		if strings.ContainsRune(line, cell) {
			return true
		}
	}
	return false
}
