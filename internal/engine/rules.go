package engine

import "time"

// Audio cue names emitted by the engine.
const (
	CueStart     = "start"
	CueCollect   = "collect"
	CueHit       = "hit"
	CueDeflect   = "deflect"
	CuePowerUp   = "powerup"
	CuePowerDown = "powerdown"
	CueMiss      = "miss"
	CueFlip      = "flip"
	CueMatch     = "match"
	CueGoal      = "goal"
	CueCountdown = "countdown"
	CueWin       = "win"
	CueLose      = "lose"
	CueTimeout   = "timeout"
)

// Rules turns collision events and exits into score, lives and terminal signals.
type Rules struct {
	spec *LevelSpec
	cue  func(string)
}

// Collide resolves one collision event. It returns false if the event was
// ignored, e.g. because the entity was already claimed this session.
func (r Rules) Collide(s *Session, ev CollisionEvent) bool {
	e := ev.Entity
	if s.ended || e == nil {
		return false
	}
	if e.Pair > 0 {
		return r.flip(s, ev)
	}
	if !s.store.Kill(e.ID) {
		return false
	}
	s.Hits++

	switch e.Kind {
	case KindCollectible:
		if e.Tag == TagGoal {
			s.GoalReached = true
			r.cue(CueGoal)
		} else {
			r.cue(CueCollect)
		}
		s.Score += e.Value * s.fx.Multiplier()
	case KindHazard, KindObstacle:
		if s.fx.Shield {
			s.Deflected++
			r.cue(CueDeflect)
		} else {
			s.damage(e.Damage)
			r.cue(CueHit)
		}
	case KindPowerUp:
		r.powerUp(s, e.PowerUp)
		r.cue(CuePowerUp)
	}

	if ev.Source == SourceEffect && s.effect != nil {
		s.effect.retract()
	}
	return true
}

// Exit applies the miss penalty of an entity that escaped or expired.
func (r Rules) Exit(s *Session, x Exit) {
	if s.ended || x.Entity.MissDamage <= 0 {
		return
	}
	s.Misses++
	s.damage(x.Entity.MissDamage)
	r.cue(CueMiss)
}

// powerUp applies an instant effect or registers a timed one.
func (r Rules) powerUp(s *Session, kind PowerUpKind) {
	switch kind {
	case PowerUpExtraLife:
		if s.Lives < s.MaxLives {
			s.Lives++
		}
	case PowerUpTimeBonus:
		if r.spec.TimeLimit > 0 {
			s.Remaining += r.spec.Duration(kind)
		}
	case PowerUpClearHazards:
		for _, e := range s.store.Live() {
			if e.Kind == KindHazard || (e.Kind == KindObstacle && !e.Solid) {
				s.store.Kill(e.ID)
			}
		}
	default:
		if kind.Timed() {
			s.powerUps.Activate(kind, r.spec.Duration(kind))
		}
	}
}

// flip handles a tap on a memory card.
func (r Rules) flip(s *Session, ev CollisionEvent) bool {
	e := ev.Entity
	if ev.Source != SourceTap || s.locked || e.Revealed || !e.Alive() {
		return false
	}
	e.Revealed = true
	r.cue(CueFlip)

	first := s.firstCard
	if first == nil {
		s.firstCard = e
		return true
	}
	s.firstCard = nil

	if first.Pair == e.Pair {
		s.store.Kill(first.ID)
		s.store.Kill(e.ID)
		s.Hits += 2
		s.Score += (first.Value + e.Value) * s.fx.Multiplier()
		r.cue(CueMatch)
		return true
	}

	s.Mistakes++
	s.locked = true
	delay := time.Second
	if r.spec.Match != nil && r.spec.Match.FlipBack > 0 {
		delay = r.spec.Match.FlipBack
	}
	s.timers.After(delay, func() {
		first.Revealed = false
		e.Revealed = false
		s.locked = false
	})
	return true
}

// Won evaluates the level's win predicate.
func (r Rules) Won(s *Session) bool {
	w := r.spec.Win
	switch w.Kind {
	case WinScore:
		return w.Score > 0 && s.Score >= w.Score
	case WinCleared:
		var left int
		if w.Tag == "" {
			left = s.store.CountKind(KindCollectible)
		} else {
			left = s.store.Count(w.Tag)
		}
		return left == 0 && s.spawner.Exhausted(w.Tag)
	case WinGoal:
		return s.GoalReached
	case WinSurvive:
		return r.spec.TimeLimit > 0 && s.Remaining <= 0 && s.Lives > 0
	default:
		return false
	}
}

// Points returns the final points for a session with the given outcome.
func (r Rules) Points(s *Session, o Outcome) int {
	points := s.Score
	if o == OutcomeWon && r.spec.TimeBonus > 0 {
		points += r.spec.TimeBonus * int(s.Remaining/time.Second)
	}
	return points
}

// Stars rates a result from zero to three.
func (r Rules) Stars(points int, o Outcome) int {
	if o != OutcomeWon {
		return 0
	}
	stars := 0
	for _, threshold := range r.spec.Stars {
		if points >= threshold {
			stars++
		}
	}
	return stars
}
