package engine

import (
	"time"

	"github.com/vovakirdan/edu-arcade/internal/core"
)

// Mode selects level-specific interaction on top of the common engine.
type Mode string

const (
	ModeCatch Mode = "catch" // Actor touches entities
	ModeTap   Mode = "tap"   // Entities are tapped
	ModeMatch Mode = "match" // Memory cards are flipped in pairs
)

// WinKind selects the win predicate of a level.
type WinKind string

const (
	WinScore   WinKind = "score"   // Score reaches a threshold
	WinCleared WinKind = "cleared" // All targets removed and their spawns exhausted
	WinGoal    WinKind = "goal"    // Actor reaches a goal entity
	WinSurvive WinKind = "survive" // Still alive when time runs out
	WinNone    WinKind = "none"
)

// TagGoal marks goal entities.
const TagGoal = "goal"

// WinRule is a level's win predicate.
type WinRule struct {
	Kind  WinKind
	Score int
	Tag   string // Target tag for WinCleared; empty means all collectibles
}

// MatchSpec configures memory-card levels.
type MatchSpec struct {
	Pairs    int
	Columns  int
	CardSize core.Vec
	Gap      float64
	Value    int
	FlipBack time.Duration // Delay before a mismatched pair turns face down
}

// LevelSpec is the compiled, engine-ready form of a level descriptor.
type LevelSpec struct {
	ID        string
	Title     string
	Ordinal   int
	Mode      Mode
	Field     core.Vec // Width and height in cells
	TimeLimit time.Duration
	Lives     int
	MaxLives  int
	Leniency  float64
	Actor     ActorSpec
	Effect    *EffectSpec
	Preview   time.Duration
	Match     *MatchSpec
	Win       WinRule
	Stars     [3]int // Point thresholds for one, two and three stars
	TimeBonus int    // Points per whole second left on a win
	Layout    []string
	Spawns    []SpawnRule

	Gravity    float64
	MagnetPull float64
	Durations  map[PowerUpKind]time.Duration
}

// FieldRect returns the playfield rectangle.
func (l LevelSpec) FieldRect() core.Rect {
	return core.NewRect(0, 0, l.Field.X, l.Field.Y)
}

// Duration returns the configured duration of a power-up.
func (l LevelSpec) Duration(k PowerUpKind) time.Duration {
	if d, ok := l.Durations[k]; ok && d > 0 {
		return d
	}
	return DefaultDuration
}
