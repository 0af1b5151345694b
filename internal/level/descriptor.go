// Package level loads YAML level descriptors and compiles them into
// engine-ready specs. One parameterized engine plays every level; the
// descriptors carry all per-level data.
package level

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/core"
	"github.com/vovakirdan/edu-arcade/internal/engine"
	"gopkg.in/yaml.v3"
)

// Descriptor is the YAML structure of a level file.
type Descriptor struct {
	ID         string                   `yaml:"id"`
	Ordinal    int                      `yaml:"ordinal"`
	Title      string                   `yaml:"title"`
	Mode       string                   `yaml:"mode"`
	Field      Size                     `yaml:"field"`
	TimeLimit  time.Duration            `yaml:"time_limit,omitempty"`
	Lives      int                      `yaml:"lives"`
	MaxLives   int                      `yaml:"max_lives,omitempty"`
	Leniency   float64                  `yaml:"leniency,omitempty"`
	Gravity    float64                  `yaml:"gravity,omitempty"`
	MagnetPull float64                  `yaml:"magnet_pull,omitempty"`
	Actor      ActorDescriptor          `yaml:"actor"`
	Effect     *EffectDescriptor        `yaml:"effect,omitempty"`
	Preview    time.Duration            `yaml:"preview,omitempty"`
	Match      *MatchDescriptor         `yaml:"match,omitempty"`
	Win        WinDescriptor            `yaml:"win"`
	Stars      [3]int                   `yaml:"stars"`
	TimeBonus  int                      `yaml:"time_bonus,omitempty"`
	Layout     []string                 `yaml:"layout,omitempty"`
	PowerUps   map[string]time.Duration `yaml:"powerups,omitempty"` // Per-kind durations
	Scaling    *config.ScalingConfig    `yaml:"scaling,omitempty"`  // Overrides the app scaling
	Spawns     []SpawnDescriptor        `yaml:"spawns,omitempty"`
}

// Size is a width and height in cells.
type Size struct {
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// Point is a position in cells.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ActorDescriptor configures the player actor.
type ActorDescriptor struct {
	Mode    string  `yaml:"mode"`
	Start   Point   `yaml:"start"`
	Size    Size    `yaml:"size"`
	Step    float64 `yaml:"step,omitempty"`
	StepY   float64 `yaml:"step_y,omitempty"`
	Jump    float64 `yaml:"jump,omitempty"`
	Gravity float64 `yaml:"gravity,omitempty"`
	Glyph   string  `yaml:"glyph,omitempty"`
	Color   string  `yaml:"color,omitempty"`
}

// EffectDescriptor configures a thrown effect.
type EffectDescriptor struct {
	Dir       Point   `yaml:"dir"`
	MaxLength float64 `yaml:"max_length"`
	Width     float64 `yaml:"width"`
	Speed     float64 `yaml:"speed"`
}

// MatchDescriptor configures memory cards.
type MatchDescriptor struct {
	Pairs    int           `yaml:"pairs"`
	Columns  int           `yaml:"columns,omitempty"`
	Card     Size          `yaml:"card,omitempty"`
	Gap      float64       `yaml:"gap,omitempty"`
	Value    int           `yaml:"value,omitempty"`
	FlipBack time.Duration `yaml:"flip_back,omitempty"`
}

// WinDescriptor configures the win predicate.
type WinDescriptor struct {
	Kind  string `yaml:"kind"`
	Score int    `yaml:"score,omitempty"`
	Tag   string `yaml:"tag,omitempty"`
}

// SpawnDescriptor configures one spawn rule.
type SpawnDescriptor struct {
	Tag        string        `yaml:"tag"`
	Kind       string        `yaml:"kind"`
	Interval   time.Duration `yaml:"interval"`
	Cap        int           `yaml:"cap,omitempty"`
	Chance     *float64      `yaml:"chance,omitempty"` // Defaults to 1
	Total      int           `yaml:"total,omitempty"`
	Edge       string        `yaml:"edge"`
	Band       []float64     `yaml:"band,omitempty"`
	Speed      []float64     `yaml:"speed,omitempty"` // [min, max] or [fixed]
	Size       Size          `yaml:"size"`
	Shape      string        `yaml:"shape,omitempty"`
	Value      int           `yaml:"value,omitempty"`
	Damage     int           `yaml:"damage,omitempty"`
	MissDamage int           `yaml:"miss_damage,omitempty"`
	PowerUp    string        `yaml:"powerup,omitempty"`
	TTL        time.Duration `yaml:"ttl,omitempty"`
	Behavior   []string      `yaml:"behavior,omitempty"`
	Glyph      string        `yaml:"glyph,omitempty"`
	Color      string        `yaml:"color,omitempty"`
}

// ValidationError describes why a descriptor cannot be played.
type ValidationError struct {
	Level   string
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("level %s: [%s] %s", e.Level, e.Code, e.Message)
}

// Parse decodes a YAML descriptor.
func Parse(data []byte) (Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return d, nil
}

// Level is a validated descriptor together with its compiled spec.
type Level struct {
	Descriptor Descriptor
	Spec       engine.LevelSpec
	Source     string // File path, or "embedded"
}

// ID returns the level identifier.
func (l Level) ID() string { return l.Spec.ID }

// Title returns the display title.
func (l Level) Title() string { return l.Spec.Title }

// Ordinal returns the level's position in the unlock order.
func (l Level) Ordinal() int { return l.Spec.Ordinal }

// Scaler returns the difficulty scaler for the level.
// A descriptor scaling block replaces the app-wide factors; the ramp is kept.
func (l Level) Scaler(cfg config.DifficultyConfig) config.Scaler {
	if l.Descriptor.Scaling != nil {
		cfg.Scaling = *l.Descriptor.Scaling
	}
	return config.NewScaler(cfg)
}

var colorNames = map[string]core.Color{
	"":               core.ColorDefault,
	"default":        core.ColorDefault,
	"red":            core.ColorRed,
	"green":          core.ColorGreen,
	"yellow":         core.ColorYellow,
	"blue":           core.ColorBlue,
	"magenta":        core.ColorMagenta,
	"cyan":           core.ColorCyan,
	"white":          core.ColorWhite,
	"bright_red":     core.ColorBrightRed,
	"bright_green":   core.ColorBrightGreen,
	"bright_yellow":  core.ColorBrightYellow,
	"bright_blue":    core.ColorBrightBlue,
	"bright_magenta": core.ColorBrightMagenta,
	"bright_cyan":    core.ColorBrightCyan,
	"bright_white":   core.ColorBrightWhite,
	"orange":         core.ColorOrange,
	"gray":           core.ColorGray,
	"grey":           core.ColorGray,
}

// ParseColor maps a descriptor color name to a screen color.
func ParseColor(s string) (core.Color, bool) {
	c, ok := colorNames[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

func glyph(s string, fallback rune) rune {
	if s == "" {
		return fallback
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
