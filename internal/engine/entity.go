package engine

import (
	"math"
	"time"

	"github.com/vovakirdan/edu-arcade/internal/core"
)

// Kind classifies an entity for the rules.
type Kind int

const (
	KindPlayer Kind = iota
	KindCollectible
	KindObstacle
	KindHazard
	KindPowerUp
)

// String returns the descriptor name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindCollectible:
		return "collectible"
	case KindObstacle:
		return "obstacle"
	case KindHazard:
		return "hazard"
	case KindPowerUp:
		return "powerup"
	default:
		return "unknown"
	}
}

// ParseKind maps a descriptor name to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "player":
		return KindPlayer, true
	case "collectible":
		return KindCollectible, true
	case "obstacle":
		return KindObstacle, true
	case "hazard":
		return KindHazard, true
	case "powerup":
		return KindPowerUp, true
	default:
		return 0, false
	}
}

// Harmful reports whether touching the kind costs lives.
func (k Kind) Harmful() bool {
	return k == KindHazard || k == KindObstacle
}

// Shape selects the collision test used for an entity.
type Shape int

const (
	ShapeRect Shape = iota
	ShapeCircle
)

// Behavior is a set of motion flags.
type Behavior uint8

const (
	BehaviorGravity Behavior = 1 << iota // Accelerates downward
	BehaviorBounce                       // Reflects off field edges
)

// Has reports whether all flags in f are set.
func (b Behavior) Has(f Behavior) bool {
	return b&f == f
}

// Entity is anything in the field other than the actor.
// Pos is the centre; Size is the full width and height.
type Entity struct {
	ID         int
	Kind       Kind
	Tag        string
	Pos        core.Vec
	Vel        core.Vec
	Size       core.Vec
	Shape      Shape
	Damage     int
	Value      int
	MissDamage int
	PowerUp    PowerUpKind
	TTL        time.Duration // Remaining lifetime; 0 means unlimited
	Behavior   Behavior

	Glyph    rune
	Color    core.Color
	Hidden   bool // Not visible and not collidable
	Solid    bool // Blocks the actor instead of colliding
	Pair     int  // Match group for memory cards; 0 for none
	Revealed bool // Memory card face up

	dead bool
}

// Bounds returns the entity's bounding rectangle.
func (e *Entity) Bounds() core.Rect {
	return core.RectAround(e.Pos, e.Size.X, e.Size.Y)
}

// Circle returns the entity's inscribed circle.
func (e *Entity) Circle() core.Circle {
	return core.Circle{C: e.Pos, R: math.Min(e.Size.X, e.Size.Y) / 2}
}

// Alive reports whether the entity is still in play.
func (e *Entity) Alive() bool {
	return !e.dead
}

// Touchable reports whether the detector should test the entity.
func (e *Entity) Touchable() bool {
	return !e.dead && !e.Hidden && !e.Solid
}

// Contains reports whether p lies inside the entity's shape.
func (e *Entity) Contains(p core.Vec) bool {
	if e.Shape == ShapeCircle {
		return e.Circle().Contains(p)
	}
	return e.Bounds().Contains(p)
}
