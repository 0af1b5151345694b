package engine

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the terminal signal of a session.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWon
	OutcomeLost
	OutcomeTimedOut
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "none"
	}
}

// State returns the lifecycle state for the outcome.
func (o Outcome) State() State {
	switch o {
	case OutcomeWon:
		return StateWon
	case OutcomeLost:
		return StateLost
	case OutcomeTimedOut:
		return StateTimedOut
	default:
		return StateIdle
	}
}

// Session is one play attempt of a level. It is created on start and
// discarded at the end; a restart always creates a new one.
type Session struct {
	ID        string
	Score     int
	Lives     int
	MaxLives  int
	Remaining time.Duration
	Elapsed   time.Duration
	Tier      int
	Tick      uint64

	Hits        int // Collision events resolved
	Deflected   int // Hazards stopped by a shield
	Misses      int // Exits that cost lives
	Mistakes    int // Mismatched card pairs
	GoalReached bool

	store    *Store
	timers   *Timers
	powerUps *PowerUps
	spawner  *Spawner
	actor    *Actor
	effect   *Effect
	fx       Effects

	firstCard *Entity
	locked    bool

	raised Outcome
	ended  bool
}

func newSession(spec *LevelSpec, tier int) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Lives:     spec.Lives,
		MaxLives:  spec.MaxLives,
		Remaining: spec.TimeLimit,
		Tier:      tier,
		store:     NewStore(),
		actor:     newActor(spec.Actor),
	}
	if s.MaxLives < s.Lives {
		s.MaxLives = s.Lives
	}
	s.timers = NewTimers(func() bool { return !s.ended })
	if spec.Effect != nil {
		s.effect = &Effect{Spec: *spec.Effect}
	}
	return s
}

// Store returns the session's entity store.
func (s *Session) Store() *Store { return s.store }

// Timers returns the session's timer set.
func (s *Session) Timers() *Timers { return s.timers }

// PowerUps returns the session's active power-ups.
func (s *Session) PowerUps() *PowerUps { return s.powerUps }

// Spawner returns the session's spawner.
func (s *Session) Spawner() *Spawner { return s.spawner }

// Actor returns the player actor.
func (s *Session) Actor() *Actor { return s.actor }

// Effect returns the thrown effect, or nil if the level has none.
func (s *Session) Effect() *Effect { return s.effect }

// Effects returns the power-up snapshot of the current tick.
func (s *Session) Effects() Effects { return s.fx }

// Ended reports whether the session has finished or was exited.
func (s *Session) Ended() bool { return s.ended }

// Outcome returns the raised terminal signal, if any.
func (s *Session) Outcome() Outcome { return s.raised }

// Guard wraps fn so it does nothing once the session has ended.
func (s *Session) Guard(fn func()) func() {
	return func() {
		if s.ended {
			return
		}
		fn()
	}
}

// raise records the first terminal signal; later signals are ignored.
func (s *Session) raise(o Outcome) {
	if s.raised == OutcomeNone {
		s.raised = o
	}
}

// damage removes lives, clamping at zero, and raises Lost at zero.
func (s *Session) damage(n int) {
	if n < 1 {
		n = 1
	}
	s.Lives -= n
	if s.Lives <= 0 {
		s.Lives = 0
		s.raise(OutcomeLost)
	}
}
