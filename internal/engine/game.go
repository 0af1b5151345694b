package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/core"
)

// AudioPlayer plays named cues. Calls must not block.
type AudioPlayer interface {
	Play(cue string)
}

// ResultSink receives finished sessions. Submit must not block on the network.
type ResultSink interface {
	Submit(Result)
}

// Navigator is told where to go when a session ends or is exited.
type Navigator interface {
	GoBack()
	Navigate(screen string, params map[string]any)
}

// ScreenResult is the navigation target after a finished session.
const ScreenResult = "result"

// Result is the summary of a finished session.
type Result struct {
	SessionID  string
	LevelID    string
	Title      string
	Ordinal    int
	Tier       int
	Outcome    Outcome
	Score      int
	Points     int
	Stars      int
	Lives      int
	Elapsed    time.Duration
	Remaining  time.Duration
	Perfect    bool // Three stars; earns the level's collectible
	FinishedAt time.Time
}

// Won reports whether the session was won.
func (r Result) Won() bool {
	return r.Outcome == OutcomeWon
}

// Options configures a Game.
type Options struct {
	Tier    int
	Scaler  config.Scaler
	Runtime core.RuntimeConfig
	Audio   AudioPlayer
	Sink    ResultSink
	Nav     Navigator
	Now     func() time.Time // Defaults to time.Now
	Rand    *rand.Rand       // Defaults to a generator seeded from Runtime.Seed
}

// Game runs sessions of one level.
// It is not safe for concurrent use; the platform drives it from one goroutine.
type Game struct {
	spec     LevelSpec
	opts     Options
	machine  *Machine
	clock    *Clock
	sess     *Session
	last     *Result
	rng      *rand.Rand
	now      func() time.Time
	tick     uint64
	detector Detector
	motion   Motion
	rules    Rules
}

// New creates a game for the level. Call Start to begin a session.
func New(spec LevelSpec, opts Options) *Game {
	if opts.Runtime.TickRate <= 0 {
		seed := opts.Runtime.Seed
		opts.Runtime = core.DefaultConfig()
		opts.Runtime.Seed = seed
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	rng := opts.Rand
	if rng == nil {
		seed := opts.Runtime.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	g := &Game{
		spec:     spec,
		opts:     opts,
		machine:  NewMachine(),
		rng:      rng,
		now:      opts.Now,
		detector: Detector{Leniency: spec.Leniency},
		motion: Motion{
			Field:      spec.FieldRect(),
			Gravity:    spec.Gravity,
			MagnetPull: spec.MagnetPull,
		},
	}
	g.rules = Rules{spec: &g.spec, cue: g.play}
	return g
}

// Spec returns the level being played.
func (g *Game) Spec() LevelSpec { return g.spec }

// State returns the lifecycle state.
func (g *Game) State() State { return g.machine.State() }

// Trail returns every state visited so far.
func (g *Game) Trail() []State { return g.machine.Trail() }

// Session returns the running session, or nil when idle.
func (g *Game) Session() *Session { return g.sess }

// LastResult returns the result of the most recently finished session.
func (g *Game) LastResult() (Result, bool) {
	if g.last == nil {
		return Result{}, false
	}
	return *g.last, true
}

// Start begins a new session. Only valid from Idle.
func (g *Game) Start() error {
	if g.machine.State() != StateIdle {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, g.machine.State())
	}

	s := newSession(&g.spec, g.opts.Tier)
	s.powerUps = NewPowerUps(s.timers, func(PowerUpKind) { g.play(CuePowerDown) })
	s.spawner = NewSpawner(g.spec.Spawns, g.opts.Scaler, g.opts.Tier, g.spec.FieldRect(), g.rng)

	if len(g.spec.Layout) > 0 {
		if start, ok := buildLayout(g.spec.Layout, s.store); ok {
			s.actor.Pos = start
		}
	}
	if g.spec.Match != nil {
		origin, step := dealCards(*g.spec.Match, g.spec.Field, s.store, g.rng)
		s.actor.Pos = origin
		s.actor.Spec.Step = step.X
		s.actor.Spec.StepY = step.Y
	}

	if g.spec.TimeLimit > 0 {
		s.timers.Every(time.Second, func() {
			if s.Remaining > 0 && s.Remaining <= 5*time.Second {
				g.play(CueCountdown)
			}
		})
	}

	g.sess = s
	g.clock = NewClock(g.opts.Runtime.FrameDuration(), g.opts.Runtime.MaxFrames)
	g.clock.Start(g.now())

	if g.spec.Preview > 0 {
		g.reveal(s, true)
		if err := g.machine.To(StatePreview); err != nil {
			return err
		}
		s.timers.After(g.spec.Preview, func() {
			g.reveal(s, false)
			g.machine.To(StatePlaying) //nolint:errcheck
		})
	} else if err := g.machine.To(StatePlaying); err != nil {
		return err
	}

	g.play(CueStart)
	return nil
}

// reveal turns every card face up or down.
func (g *Game) reveal(s *Session, up bool) {
	for _, e := range s.store.Live() {
		if e.Pair > 0 {
			e.Revealed = up
		}
	}
}

// Frame advances the session by the wall time since the previous frame.
func (g *Game) Frame(now time.Time) {
	if g.clock == nil {
		return
	}
	if dt, ok := g.clock.Delta(now); ok {
		g.Tick(dt)
	}
}

// Tick advances the session by dt of game time.
// Order: timers, power-up snapshot, countdown, spawn, actor, motion,
// collisions, sweep, then lose/win/timeout evaluation.
func (g *Game) Tick(dt time.Duration) {
	s := g.sess
	if s == nil || s.ended {
		return
	}
	if dt < 0 {
		dt = 0
	}

	switch g.machine.State() {
	case StatePreview:
		s.timers.Advance(dt)
		return
	case StatePlaying:
	default:
		return
	}

	g.tick++
	s.Tick = g.tick
	s.Elapsed += dt
	s.timers.Advance(dt)
	if s.ended || g.machine.State() != StatePlaying {
		return
	}

	s.fx = s.powerUps.Snapshot()
	if g.spec.TimeLimit > 0 {
		s.Remaining -= dt
		if s.Remaining < 0 {
			s.Remaining = 0
		}
	}

	edt := dt
	if s.fx.SlowMotion {
		edt = dt / 2
	}

	s.spawner.Update(edt, s.store, s.actor.Bounds())
	s.actor.update(dt)
	if s.effect != nil {
		s.effect.update(dt)
	}

	for _, x := range g.motion.Step(s.store, edt, s.actor.Pos, s.fx) {
		g.rules.Exit(s, x)
	}
	g.detect(s)
	s.store.Sweep()
	g.evaluate(s)
}

// detect runs one detection pass and resolves its events.
func (g *Game) detect(s *Session) {
	if s.raised != OutcomeNone {
		return
	}
	var box *core.Rect
	if s.actor.HasHitbox() {
		b := s.actor.Bounds()
		box = &b
	}
	var obb *core.OBB
	if s.effect != nil && s.effect.Active() {
		o := s.effect.Box(s.actor.Pos)
		obb = &o
	}

	for _, ev := range g.detector.Detect(s.store, box, obb, g.tick) {
		g.rules.Collide(s, ev)
		if s.raised != OutcomeNone {
			return
		}
	}
}

// evaluate raises Win or Timeout if no terminal signal is pending and
// finishes the session once one is.
func (g *Game) evaluate(s *Session) {
	if s.raised == OutcomeNone && g.rules.Won(s) {
		s.raise(OutcomeWon)
	}
	if s.raised == OutcomeNone && g.spec.TimeLimit > 0 && s.Remaining <= 0 {
		s.raise(OutcomeTimedOut)
	}
	if s.raised != OutcomeNone {
		g.finish(s)
	}
}

// finish stops the clock and cancels every timer before any side effect,
// then reports and returns to Idle.
func (g *Game) finish(s *Session) {
	if s.ended {
		return
	}
	s.ended = true
	g.clock.Stop()
	s.timers.CancelAll()
	g.machine.To(s.raised.State()) //nolint:errcheck

	points := g.rules.Points(s, s.raised)
	stars := g.rules.Stars(points, s.raised)
	res := Result{
		SessionID:  s.ID,
		LevelID:    g.spec.ID,
		Title:      g.spec.Title,
		Ordinal:    g.spec.Ordinal,
		Tier:       s.Tier,
		Outcome:    s.raised,
		Score:      s.Score,
		Points:     points,
		Stars:      stars,
		Lives:      s.Lives,
		Elapsed:    s.Elapsed,
		Remaining:  s.Remaining,
		Perfect:    stars == 3,
		FinishedAt: g.now(),
	}
	g.last = &res

	switch s.raised {
	case OutcomeWon:
		g.play(CueWin)
	case OutcomeLost:
		g.play(CueLose)
	case OutcomeTimedOut:
		g.play(CueTimeout)
	}

	g.machine.To(StateReporting) //nolint:errcheck
	if g.opts.Sink != nil {
		g.opts.Sink.Submit(res)
	}
	g.machine.To(StateIdle) //nolint:errcheck
	g.sess = nil

	if g.opts.Nav != nil {
		g.opts.Nav.Navigate(ScreenResult, map[string]any{
			"level":   res.LevelID,
			"outcome": res.Outcome.String(),
			"points":  res.Points,
			"stars":   res.Stars,
		})
	}
}

// Exit tears down the running session without reporting it.
func (g *Game) Exit() {
	s := g.sess
	if s == nil {
		return
	}
	s.ended = true
	g.clock.Stop()
	s.timers.CancelAll()
	g.machine.To(StateIdle) //nolint:errcheck
	g.sess = nil

	if g.opts.Nav != nil {
		g.opts.Nav.GoBack()
	}
}

// Pause freezes the session.
func (g *Game) Pause() error {
	if err := g.machine.To(StatePaused); err != nil {
		return err
	}
	g.clock.Pause()
	return nil
}

// Resume unfreezes a paused session.
func (g *Game) Resume() error {
	if g.machine.State() != StatePaused {
		return fmt.Errorf("%w: resume from %s", ErrInvalidTransition, g.machine.State())
	}
	if err := g.machine.To(StatePlaying); err != nil {
		return err
	}
	g.clock.Resume(g.now())
	return nil
}

// TogglePause pauses a playing session or resumes a paused one.
func (g *Game) TogglePause() {
	switch g.machine.State() {
	case StatePlaying:
		g.Pause() //nolint:errcheck
	case StatePaused:
		g.Resume() //nolint:errcheck
	}
}

// Input applies one gameplay action. Actions outside Playing are ignored,
// except Pause, and Restart from Idle.
func (g *Game) Input(a core.Action) {
	switch a {
	case core.ActionPause:
		g.TogglePause()
		return
	case core.ActionRestart:
		if g.machine.State() == StateIdle {
			g.Start() //nolint:errcheck
		}
		return
	}

	s := g.sess
	if s == nil || s.ended || g.machine.State() != StatePlaying {
		return
	}

	switch a {
	case core.ActionUp:
		if s.actor.Spec.Mode == ActorRunner {
			if s.actor.jump() {
				return
			}
		}
		g.move(s, a)
	case core.ActionDown, core.ActionLeft, core.ActionRight:
		g.move(s, a)
	case core.ActionFire:
		if s.actor.Spec.Mode == ActorCursor {
			g.Tap(s.actor.Pos)
			return
		}
		if s.effect != nil {
			s.effect.fire()
		}
	}
}

// move shifts the actor one step, staying inside the field and out of walls.
func (g *Game) move(s *Session, a core.Action) {
	target, ok := s.actor.target(a)
	if !ok {
		return
	}

	half := s.actor.Spec.Size.Scale(0.5)
	if s.actor.Spec.Mode == ActorCursor {
		half = core.Vec{}
	}
	target.X = core.ClampF(target.X, half.X, g.spec.Field.X-half.X)
	target.Y = core.ClampF(target.Y, half.Y, g.spec.Field.Y-half.Y)
	if target == s.actor.Pos {
		return
	}

	if s.actor.HasHitbox() {
		box := core.RectAround(target, s.actor.Spec.Size.X, s.actor.Spec.Size.Y)
		if g.detector.Blocked(s.store, box) {
			return
		}
	}
	s.actor.Pos = target

	g.detect(s)
	g.evaluate(s)
}

// Tap resolves a pointer tap at p through the same routine as the tick.
func (g *Game) Tap(p core.Vec) {
	s := g.sess
	if s == nil || s.ended || g.machine.State() != StatePlaying {
		return
	}
	ev, ok := g.detector.Tap(s.store, p, g.tick)
	if !ok {
		return
	}
	g.rules.Collide(s, ev)
	g.evaluate(s)
}

// Spawn adds an entity to the running session.
func (g *Game) Spawn(e Entity) (*Entity, error) {
	s := g.sess
	if s == nil || s.ended || g.machine.State() != StatePlaying {
		return nil, ErrNotPlaying
	}
	return s.store.Add(&e), nil
}

// SpawnCallback returns a callback that forces one spawn of the tagged rule
// into the current session. Once that session ends the callback does nothing.
func (g *Game) SpawnCallback(tag string) func() {
	s := g.sess
	if s == nil {
		return func() {}
	}
	return s.Guard(func() {
		s.spawner.Force(tag, s.store, s.actor.Bounds())
	})
}

func (g *Game) play(cue string) {
	if g.opts.Audio != nil {
		g.opts.Audio.Play(cue)
	}
}
