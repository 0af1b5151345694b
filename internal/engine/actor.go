package engine

import (
	"time"

	"github.com/vovakirdan/edu-arcade/internal/core"
)

// ActorMode selects how input moves the actor.
type ActorMode string

const (
	ActorHorizontal ActorMode = "horizontal" // Left/right along the bottom
	ActorFree       ActorMode = "free"       // Four directions
	ActorRunner     ActorMode = "runner"     // Fixed column, jumps
	ActorGrid       ActorMode = "grid"       // One cell per press, walls block
	ActorCursor     ActorMode = "cursor"     // Selection cursor for tap levels, no hitbox
	ActorNone       ActorMode = "none"
)

// ActorSpec configures the actor of a level.
type ActorSpec struct {
	Mode    ActorMode
	Start   core.Vec // Centre at session start
	Size    core.Vec
	Step    float64 // Horizontal distance per key press
	StepY   float64 // Vertical distance per key press; 0 uses Step
	Jump    float64 // Initial upward speed for runners, cells per second
	Gravity float64 // Runner gravity, cells per second squared
	Glyph   rune
	Color   core.Color
}

// Actor is the player-controlled body.
type Actor struct {
	Spec     ActorSpec
	Pos      core.Vec
	vy       float64
	grounded bool
	ground   float64
}

func newActor(spec ActorSpec) *Actor {
	return &Actor{
		Spec:     spec,
		Pos:      spec.Start,
		grounded: true,
		ground:   spec.Start.Y,
	}
}

// Bounds returns the actor's unexpanded hitbox.
func (a *Actor) Bounds() core.Rect {
	return core.RectAround(a.Pos, a.Spec.Size.X, a.Spec.Size.Y)
}

// HasHitbox reports whether the actor collides with entities.
func (a *Actor) HasHitbox() bool {
	return a.Spec.Mode != ActorCursor && a.Spec.Mode != ActorNone
}

// Grounded reports whether a runner is on the ground.
func (a *Actor) Grounded() bool {
	return a.grounded
}

// target returns where a movement action would put the actor, and whether it moves at all.
func (a *Actor) target(act core.Action) (core.Vec, bool) {
	dir := act.Direction()
	if dir == (core.Vec{}) {
		return a.Pos, false
	}
	switch a.Spec.Mode {
	case ActorHorizontal:
		if dir.X == 0 {
			return a.Pos, false
		}
		dir.Y = 0
	case ActorRunner, ActorNone:
		return a.Pos, false
	}
	step := a.Spec.Step
	if step <= 0 {
		step = 1
	}
	stepY := a.Spec.StepY
	if stepY <= 0 {
		stepY = step
	}
	return a.Pos.Add(core.V(dir.X*step, dir.Y*stepY)), true
}

// jump starts a runner jump if grounded.
func (a *Actor) jump() bool {
	if a.Spec.Mode != ActorRunner || !a.grounded {
		return false
	}
	a.vy = -a.Spec.Jump
	a.grounded = false
	return true
}

// update applies runner gravity.
func (a *Actor) update(dt time.Duration) {
	if a.Spec.Mode != ActorRunner || a.grounded {
		return
	}
	secs := dt.Seconds()
	a.Pos.Y += a.vy * secs
	a.vy += a.Spec.Gravity * secs
	if a.Pos.Y >= a.ground {
		a.Pos.Y = a.ground
		a.vy = 0
		a.grounded = true
	}
}

// EffectSpec configures a thrown effect such as a tongue or slash.
type EffectSpec struct {
	Dir       core.Vec
	MaxLength float64
	Width     float64
	Speed     float64 // Extension speed, cells per second
}

// Effect is a thrown effect that extends from the actor and retracts.
type Effect struct {
	Spec       EffectSpec
	Length     float64
	extending  bool
	retracting bool
}

// Active reports whether the effect is out.
func (e *Effect) Active() bool {
	return e.extending || e.retracting
}

// fire launches the effect if it is not already out.
func (e *Effect) fire() bool {
	if e.Active() {
		return false
	}
	e.Length = 0
	e.extending = true
	return true
}

// retract pulls the effect back, as after a hit.
func (e *Effect) retract() {
	if e.extending {
		e.extending = false
		e.retracting = true
	}
}

func (e *Effect) update(dt time.Duration) {
	d := e.Spec.Speed * dt.Seconds()
	switch {
	case e.extending:
		e.Length += d
		if e.Length >= e.Spec.MaxLength {
			e.Length = e.Spec.MaxLength
			e.extending = false
			e.retracting = true
		}
	case e.retracting:
		e.Length -= d
		if e.Length <= 0 {
			e.Length = 0
			e.retracting = false
		}
	}
}

// Box returns the swept rectangle of the effect from origin.
func (e *Effect) Box(origin core.Vec) core.OBB {
	return core.OBB{Origin: origin, Dir: e.Spec.Dir, Length: e.Length, Width: e.Spec.Width}
}
