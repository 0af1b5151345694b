package engine

import (
	"github.com/vovakirdan/edu-arcade/internal/core"
)

// DefaultLeniency expands the actor hitbox to favour catches over misses.
const DefaultLeniency = 1.3

// Source identifies what touched an entity.
type Source int

const (
	SourceActor  Source = iota // The actor's hitbox
	SourceEffect               // A thrown effect such as a tongue
	SourceTap                  // A pointer tap
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceActor:
		return "actor"
	case SourceEffect:
		return "effect"
	case SourceTap:
		return "tap"
	default:
		return "unknown"
	}
}

// CollisionEvent is one entity touched during a detection pass.
type CollisionEvent struct {
	Entity *Entity
	Source Source
	Tick   uint64
}

// Detector finds entities overlapping the actor or its effect.
type Detector struct {
	Leniency float64
}

// hitbox returns the actor box expanded by the leniency factor.
func (d Detector) hitbox(actor core.Rect) core.Rect {
	l := d.Leniency
	if l < 1 {
		l = 1
	}
	return actor.Expand(l)
}

// Detect tests the actor box and the optional effect against every touchable
// entity. Each entity yields at most one event per pass; the actor wins ties.
// Leniency widens the box for pickups only; harmful entities must touch the
// actor itself. A nil actor means the level has no actor hitbox.
func (d Detector) Detect(store *Store, actor *core.Rect, effect *core.OBB, tick uint64) []CollisionEvent {
	var box, strict core.Rect
	if actor != nil {
		box = d.hitbox(*actor)
		strict = *actor
	}

	var events []CollisionEvent
	for _, e := range store.Live() {
		if !e.Touchable() {
			continue
		}
		hit := box
		if e.Kind.Harmful() {
			hit = strict
		}
		switch {
		case actor != nil && overlapsRect(e, hit):
			events = append(events, CollisionEvent{Entity: e, Source: SourceActor, Tick: tick})
		case effect != nil && overlapsOBB(e, *effect):
			events = append(events, CollisionEvent{Entity: e, Source: SourceEffect, Tick: tick})
		}
	}
	return events
}

// Tap returns the topmost touchable entity containing p.
func (d Detector) Tap(store *Store, p core.Vec, tick uint64) (CollisionEvent, bool) {
	live := store.Live()
	for i := len(live) - 1; i >= 0; i-- {
		e := live[i]
		if e.Touchable() && e.Contains(p) {
			return CollisionEvent{Entity: e, Source: SourceTap, Tick: tick}, true
		}
	}
	return CollisionEvent{}, false
}

// Blocked reports whether box overlaps any solid entity.
func (d Detector) Blocked(store *Store, box core.Rect) bool {
	for _, e := range store.Live() {
		if e.Solid && !e.Hidden && e.Bounds().Intersects(box) {
			return true
		}
	}
	return false
}

func overlapsRect(e *Entity, box core.Rect) bool {
	if e.Shape == ShapeCircle {
		return e.Circle().OverlapsRect(box)
	}
	return e.Bounds().Intersects(box)
}

func overlapsOBB(e *Entity, b core.OBB) bool {
	if e.Shape == ShapeCircle {
		return b.OverlapsCircle(e.Circle())
	}
	return b.OverlapsRect(e.Bounds())
}
