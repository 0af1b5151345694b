package engine

import (
	"time"

	"github.com/vovakirdan/edu-arcade/internal/core"
)

// ExitReason tells why an entity left play without a collision.
type ExitReason string

const (
	ExitEscaped ExitReason = "escaped" // Left the field in its direction of travel
	ExitExpired ExitReason = "expired" // TTL ran out
)

// Exit reports an entity removed by the integrator.
type Exit struct {
	Entity *Entity
	Reason ExitReason
}

// Motion advances entities by velocity and applies secondary effects.
type Motion struct {
	Field      core.Rect
	Gravity    float64 // Cells per second squared for entities with BehaviorGravity
	MagnetPull float64 // Cells per second squared toward the actor under a magnet
}

// Step integrates every live entity exactly once.
// Position uses the velocity at the start of the tick; gravity, magnetism and
// bounce are applied afterwards. Escaped and expired entities are killed and returned.
func (m Motion) Step(store *Store, dt time.Duration, actor core.Vec, fx Effects) []Exit {
	secs := dt.Seconds()
	var exits []Exit

	for _, e := range store.Live() {
		vel := e.Vel
		e.Pos = e.Pos.Add(vel.Scale(secs))

		if e.Behavior.Has(BehaviorGravity) {
			e.Vel.Y += m.Gravity * secs
		}
		if fx.Magnet && e.Kind == KindCollectible && m.MagnetPull > 0 {
			toward := actor.Sub(e.Pos).Norm()
			e.Vel = e.Vel.Add(toward.Scale(m.MagnetPull * secs))
		}
		if e.Behavior.Has(BehaviorBounce) {
			m.bounce(e)
		} else if m.escaped(e) {
			store.Kill(e.ID)
			exits = append(exits, Exit{Entity: e, Reason: ExitEscaped})
			continue
		}

		if e.TTL > 0 {
			e.TTL -= dt
			if e.TTL <= 0 {
				store.Kill(e.ID)
				exits = append(exits, Exit{Entity: e, Reason: ExitExpired})
			}
		}
	}
	return exits
}

// escaped reports whether e is wholly outside the field on the side it is heading to.
func (m Motion) escaped(e *Entity) bool {
	b := e.Bounds()
	f := m.Field
	switch {
	case e.Vel.Y > 0 && b.Y >= f.Bottom():
		return true
	case e.Vel.Y < 0 && b.Bottom() <= f.Y:
		return true
	case e.Vel.X > 0 && b.X >= f.Right():
		return true
	case e.Vel.X < 0 && b.Right() <= f.X:
		return true
	}
	return false
}

// bounce reflects e back inside the field and inverts the crossing component.
func (m Motion) bounce(e *Entity) {
	b := e.Bounds()
	f := m.Field
	hw, hh := e.Size.X/2, e.Size.Y/2

	if b.X < f.X && e.Vel.X < 0 {
		e.Pos.X = f.X + (f.X - b.X) + hw
		e.Vel.X = -e.Vel.X
	} else if b.Right() > f.Right() && e.Vel.X > 0 {
		e.Pos.X = f.Right() - (b.Right() - f.Right()) - hw
		e.Vel.X = -e.Vel.X
	}
	if b.Y < f.Y && e.Vel.Y < 0 {
		e.Pos.Y = f.Y + (f.Y - b.Y) + hh
		e.Vel.Y = -e.Vel.Y
	} else if b.Bottom() > f.Bottom() && e.Vel.Y > 0 {
		e.Pos.Y = f.Bottom() - (b.Bottom() - f.Bottom()) - hh
		e.Vel.Y = -e.Vel.Y
	}
}
