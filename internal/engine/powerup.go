package engine

import "time"

// PowerUpKind names a power-up effect.
type PowerUpKind string

const (
	PowerUpNone         PowerUpKind = ""
	PowerUpShield       PowerUpKind = "shield"        // Hazards are deflected
	PowerUpMagnet       PowerUpKind = "magnet"        // Collectibles drift toward the actor
	PowerUpSlowMotion   PowerUpKind = "slow_motion"   // Entities move at half speed
	PowerUpDoubleScore  PowerUpKind = "double_score"  // Collectibles score twice
	PowerUpExtraLife    PowerUpKind = "extra_life"    // +1 life up to the maximum
	PowerUpTimeBonus    PowerUpKind = "time_bonus"    // Adds time to the countdown
	PowerUpClearHazards PowerUpKind = "clear_hazards" // Removes every live hazard
)

// Timed reports whether the power-up lasts for a duration.
func (k PowerUpKind) Timed() bool {
	switch k {
	case PowerUpShield, PowerUpMagnet, PowerUpSlowMotion, PowerUpDoubleScore:
		return true
	default:
		return false
	}
}

// Valid reports whether k is a known power-up.
func (k PowerUpKind) Valid() bool {
	switch k {
	case PowerUpShield, PowerUpMagnet, PowerUpSlowMotion, PowerUpDoubleScore,
		PowerUpExtraLife, PowerUpTimeBonus, PowerUpClearHazards:
		return true
	default:
		return false
	}
}

// Glyph returns the display character for a power-up pickup.
func (k PowerUpKind) Glyph() rune {
	switch k {
	case PowerUpShield:
		return 'S'
	case PowerUpMagnet:
		return 'M'
	case PowerUpSlowMotion:
		return '~'
	case PowerUpDoubleScore:
		return '2'
	case PowerUpExtraLife:
		return '♥'
	case PowerUpTimeBonus:
		return '+'
	case PowerUpClearHazards:
		return '!'
	default:
		return '?'
	}
}

// DefaultDuration is used for timed power-ups without a configured duration.
const DefaultDuration = 5 * time.Second

// ActivePowerUp is a running timed effect.
type ActivePowerUp struct {
	Kind      PowerUpKind
	ExpiresAt time.Duration // Session game time
	timer     TimerID
}

// Effects is the per-tick snapshot of active power-ups.
// Motion, detection and rules all read the same snapshot within a tick.
type Effects struct {
	Shield      bool
	Magnet      bool
	SlowMotion  bool
	DoubleScore bool
}

// Multiplier returns the collectible score multiplier.
func (fx Effects) Multiplier() int {
	if fx.DoubleScore {
		return 2
	}
	return 1
}

// PowerUps tracks the active timed effects of a session.
// Expiry is driven by handles in the session's timer set.
type PowerUps struct {
	active []*ActivePowerUp
	timers *Timers
	onEnd  func(PowerUpKind)
}

// NewPowerUps creates a tracker whose expiry timers live in timers.
func NewPowerUps(timers *Timers, onEnd func(PowerUpKind)) *PowerUps {
	return &PowerUps{
		active: make([]*ActivePowerUp, 0, 4),
		timers: timers,
		onEnd:  onEnd,
	}
}

// Activate adds or extends a timed effect to expire d from now.
func (p *PowerUps) Activate(kind PowerUpKind, d time.Duration) {
	if d <= 0 {
		d = DefaultDuration
	}
	expires := p.timers.Now() + d

	// Check if effect already exists
	for _, a := range p.active {
		if a.Kind == kind {
			if expires > a.ExpiresAt {
				p.timers.Cancel(a.timer)
				a.ExpiresAt = expires
				a.timer = p.timers.After(d, func() { p.expire(kind) })
			}
			return
		}
	}

	a := &ActivePowerUp{Kind: kind, ExpiresAt: expires}
	a.timer = p.timers.After(d, func() { p.expire(kind) })
	p.active = append(p.active, a)
}

// expire removes an effect by kind.
func (p *PowerUps) expire(kind PowerUpKind) {
	for i, a := range p.active {
		if a.Kind == kind {
			p.active = append(p.active[:i], p.active[i+1:]...)
			if p.onEnd != nil {
				p.onEnd(kind)
			}
			return
		}
	}
}

// Has returns true if the given effect is active.
func (p *PowerUps) Has(kind PowerUpKind) bool {
	for _, a := range p.active {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// Remaining returns the time left on an effect, or 0 if not active.
func (p *PowerUps) Remaining(kind PowerUpKind) time.Duration {
	for _, a := range p.active {
		if a.Kind == kind {
			if r := a.ExpiresAt - p.timers.Now(); r > 0 {
				return r
			}
			return 0
		}
	}
	return 0
}

// Active returns a copy of the active effects.
func (p *PowerUps) Active() []ActivePowerUp {
	out := make([]ActivePowerUp, 0, len(p.active))
	for _, a := range p.active {
		out = append(out, *a)
	}
	return out
}

// Snapshot captures the current effects for one tick.
func (p *PowerUps) Snapshot() Effects {
	var fx Effects
	for _, a := range p.active {
		switch a.Kind {
		case PowerUpShield:
			fx.Shield = true
		case PowerUpMagnet:
			fx.Magnet = true
		case PowerUpSlowMotion:
			fx.SlowMotion = true
		case PowerUpDoubleScore:
			fx.DoubleScore = true
		}
	}
	return fx
}
