package core

import "time"

// RuntimeConfig contains configuration passed to a session at start.
type RuntimeConfig struct {
	ScreenW   int   // Screen width in characters
	ScreenH   int   // Screen height in characters
	TickRate  int   // Simulation ticks per second (default 30)
	MaxFrames int   // Largest elapsed delta accepted, in nominal frames
	Seed      int64 // RNG seed; 0 means use current time
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:   80,
		ScreenH:   24,
		TickRate:  30,
		MaxFrames: 4,
		Seed:      0, // 0 means use current time
	}
}

// FrameDuration returns the nominal duration of one tick.
func (c RuntimeConfig) FrameDuration() time.Duration {
	rate := c.TickRate
	if rate <= 0 {
		rate = 30
	}
	return time.Second / time.Duration(rate)
}
