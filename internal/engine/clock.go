// Package engine implements the descriptor-driven mini-game engine: clock,
// entity store, spawner, motion, collision detection, rules and the session
// state machine. It contains pure logic with no terminal or network
// dependencies; the platform feeds it time and input.
package engine

import (
	"context"
	"time"
)

// Clock converts wall-clock frame times into bounded simulation deltas.
// Paused wall time never reaches the simulation and a stopped clock stays stopped.
type Clock struct {
	nominal  time.Duration
	maxDelta time.Duration
	last     time.Time
	started  bool
	paused   bool
	stopped  bool
}

// NewClock creates a clock with the given nominal frame duration.
// Deltas are clamped to maxFrames nominal frames (at least one).
func NewClock(nominal time.Duration, maxFrames int) *Clock {
	if maxFrames < 1 {
		maxFrames = 1
	}
	return &Clock{
		nominal:  nominal,
		maxDelta: nominal * time.Duration(maxFrames),
	}
}

// Start bases the clock at now.
func (c *Clock) Start(now time.Time) {
	if c.stopped {
		return
	}
	c.last = now
	c.started = true
	c.paused = false
}

// Delta returns the elapsed time since the previous call, clamped to the
// maximum delta. It returns false while paused, stopped or not yet started.
func (c *Clock) Delta(now time.Time) (time.Duration, bool) {
	if c.stopped || c.paused {
		return 0, false
	}
	if !c.started {
		c.Start(now)
		return 0, false
	}

	d := now.Sub(c.last)
	c.last = now
	if d < 0 {
		d = 0
	}
	if d > c.maxDelta {
		d = c.maxDelta
	}
	return d, true
}

// Pause freezes the clock.
func (c *Clock) Pause() {
	if c.stopped {
		return
	}
	c.paused = true
}

// Resume unfreezes the clock, rebasing at now so paused time is skipped.
func (c *Clock) Resume(now time.Time) {
	if c.stopped || !c.paused {
		return
	}
	c.paused = false
	c.last = now
}

// Stop halts the clock permanently.
func (c *Clock) Stop() {
	c.stopped = true
}

// Paused reports whether the clock is paused.
func (c *Clock) Paused() bool { return c.paused }

// Stopped reports whether the clock has been stopped.
func (c *Clock) Stopped() bool { return c.stopped }

// Nominal returns the nominal frame duration.
func (c *Clock) Nominal() time.Duration { return c.nominal }

// Loop calls fn at a fixed interval until ctx is cancelled or fn returns false.
func Loop(ctx context.Context, interval time.Duration, fn func(now time.Time) bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if !fn(now) {
				return nil
			}
		}
	}
}
