package engine

import (
	"math"
	"math/rand"
	"time"

	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/core"
)

// Edge is where a spawn rule introduces entities.
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
	EdgeLeft   Edge = "left"
	EdgeRight  Edge = "right"
	EdgeInside Edge = "inside"
)

// SpawnRule describes one stream of spawned entities.
type SpawnRule struct {
	Tag        string
	Kind       Kind
	Interval   time.Duration // Base interval at level 0
	Cap        int           // Base population cap; 0 means unlimited
	Chance     float64       // Probability of spawning when the interval is crossed
	Total      int           // Finite number of spawns; 0 means endless
	Edge       Edge
	Band       [2]float64 // Fraction of the edge to spawn along, default [0, 1]
	SpeedMin   float64
	SpeedMax   float64
	Size       core.Vec
	Shape      Shape
	Value      int
	Damage     int
	MissDamage int
	PowerUp    PowerUpKind
	TTL        time.Duration
	Behavior   Behavior
	Glyph      rune
	Color      core.Color
}

// Spawner introduces entities per rule, scaled by difficulty.
type Spawner struct {
	rules   []SpawnRule
	acc     []time.Duration
	spawned []int
	scaler  config.Scaler
	tier    int
	field   core.Rect
	rng     *rand.Rand
	elapsed time.Duration
}

// NewSpawner creates a spawner for the given rules, tier and playfield.
func NewSpawner(rules []SpawnRule, scaler config.Scaler, tier int, field core.Rect, rng *rand.Rand) *Spawner {
	return &Spawner{
		rules:   rules,
		acc:     make([]time.Duration, len(rules)),
		spawned: make([]int, len(rules)),
		scaler:  scaler,
		tier:    tier,
		field:   field,
		rng:     rng,
	}
}

// Level returns the current effective difficulty level.
func (sp *Spawner) Level() float64 {
	return sp.scaler.Level(sp.tier, sp.elapsed)
}

// Update accumulates elapsed time and spawns due entities into store.
// avoid is the actor's box; inside spawns try not to land on it.
func (sp *Spawner) Update(dt time.Duration, store *Store, avoid core.Rect) []*Entity {
	sp.elapsed += dt
	level := sp.Level()

	var out []*Entity
	for i := range sp.rules {
		r := &sp.rules[i]
		if r.Total > 0 && sp.spawned[i] >= r.Total {
			continue
		}
		interval := sp.scaler.Interval(r.Interval, level)
		if interval <= 0 {
			continue
		}

		sp.acc[i] += dt
		for sp.acc[i] >= interval {
			sp.acc[i] -= interval
			if r.Total > 0 && sp.spawned[i] >= r.Total {
				break
			}
			if r.Chance < 1 && sp.rng.Float64() >= r.Chance {
				continue
			}
			if limit := sp.scaler.Cap(r.Cap, level); limit > 0 && store.Count(r.Tag) >= limit {
				continue
			}
			out = append(out, sp.spawn(i, level, store, avoid))
		}
	}
	return out
}

// Force spawns one entity for the tagged rule regardless of timing or chance.
// The population cap still applies.
func (sp *Spawner) Force(tag string, store *Store, avoid core.Rect) (*Entity, bool) {
	level := sp.Level()
	for i := range sp.rules {
		r := &sp.rules[i]
		if r.Tag != tag {
			continue
		}
		if r.Total > 0 && sp.spawned[i] >= r.Total {
			return nil, false
		}
		if limit := sp.scaler.Cap(r.Cap, level); limit > 0 && store.Count(r.Tag) >= limit {
			return nil, false
		}
		return sp.spawn(i, level, store, avoid), true
	}
	return nil, false
}

// Exhausted reports whether every finite rule for tag has spawned its total.
// An empty tag checks all rules. Endless rules are never exhausted.
func (sp *Spawner) Exhausted(tag string) bool {
	for i, r := range sp.rules {
		if tag != "" && r.Tag != tag {
			continue
		}
		if r.Total <= 0 || sp.spawned[i] < r.Total {
			return false
		}
	}
	return true
}

// spawn creates one entity for rule i on its entry edge.
func (sp *Spawner) spawn(i int, level float64, store *Store, avoid core.Rect) *Entity {
	r := &sp.rules[i]
	sp.spawned[i]++

	speed := r.SpeedMin
	if r.SpeedMax > r.SpeedMin {
		speed = r.SpeedMin + sp.rng.Float64()*(r.SpeedMax-r.SpeedMin)
	}
	speed = sp.scaler.Speed(speed, level)

	pos, vel := sp.place(r, speed, avoid)

	e := &Entity{
		Kind:       r.Kind,
		Tag:        r.Tag,
		Pos:        pos,
		Vel:        vel,
		Size:       r.Size,
		Shape:      r.Shape,
		Damage:     r.Damage,
		Value:      r.Value,
		MissDamage: r.MissDamage,
		PowerUp:    r.PowerUp,
		TTL:        r.TTL,
		Behavior:   r.Behavior,
		Glyph:      r.Glyph,
		Color:      r.Color,
	}
	return store.Add(e)
}

// place picks a position just outside the entry edge (or inside the field)
// and a velocity pointing into the field.
func (sp *Spawner) place(r *SpawnRule, speed float64, avoid core.Rect) (core.Vec, core.Vec) {
	f := sp.field
	w, h := r.Size.X, r.Size.Y
	lo, hi := r.Band[0], r.Band[1]
	if hi <= lo {
		lo, hi = 0, 1
	}

	along := func(start, length, size float64) float64 {
		usable := length - size
		if usable < 0 {
			usable = 0
		}
		frac := lo + sp.rng.Float64()*(hi-lo)
		return start + size/2 + frac*usable
	}

	switch r.Edge {
	case EdgeTop:
		return core.V(along(f.X, f.W, w), f.Y-h/2), core.V(0, speed)
	case EdgeBottom:
		return core.V(along(f.X, f.W, w), f.Bottom()+h/2), core.V(0, -speed)
	case EdgeLeft:
		return core.V(f.X-w/2, along(f.Y, f.H, h)), core.V(speed, 0)
	case EdgeRight:
		return core.V(f.Right()+w/2, along(f.Y, f.H, h)), core.V(-speed, 0)
	}

	// Inside: a few tries to avoid landing on the actor
	var pos core.Vec
	for try := 0; try < 8; try++ {
		pos = core.V(along(f.X, f.W, w), along(f.Y, f.H, h))
		if !core.RectAround(pos, w, h).Intersects(avoid) {
			break
		}
	}
	var vel core.Vec
	if speed > 0 {
		angle := sp.rng.Float64() * 2 * math.Pi
		vel = core.V(math.Cos(angle), math.Sin(angle)).Scale(speed)
	}
	return pos, vel
}
