package config

import (
	"math"
	"time"
)

// Scaler applies the difficulty scaling law to spawn parameters.
// All three laws are non-decreasing in level; negative factors are treated as zero.
type Scaler struct {
	RateScale  float64
	CapStep    float64
	SpeedScale float64
	ramp       RampConfig
}

// NewScaler creates a scaler from the difficulty configuration.
func NewScaler(cfg DifficultyConfig) Scaler {
	return Scaler{
		RateScale:  math.Max(cfg.Scaling.RateScale, 0),
		CapStep:    math.Max(cfg.Scaling.CapStep, 0),
		SpeedScale: math.Max(cfg.Scaling.SpeedScale, 0),
		ramp:       cfg.Ramp,
	}
}

// Interval returns the spawn interval at the given level.
// interval = base / (1 + level*RateScale)
func (s Scaler) Interval(base time.Duration, level float64) time.Duration {
	if base <= 0 {
		return 0
	}
	f := 1 + math.Max(level, 0)*math.Max(s.RateScale, 0)
	return time.Duration(float64(base) / f)
}

// Cap returns the population cap at the given level.
// A base cap of zero or less means unlimited and stays unlimited.
func (s Scaler) Cap(base int, level float64) int {
	if base <= 0 {
		return 0
	}
	return base + int(math.Floor(math.Max(level, 0)*math.Max(s.CapStep, 0)))
}

// Speed returns the entity speed at the given level.
// speed = base * (1 + level*SpeedScale)
func (s Scaler) Speed(base float64, level float64) float64 {
	return base * (1 + math.Max(level, 0)*math.Max(s.SpeedScale, 0))
}

// Level returns the effective level for a tier after elapsed session time.
// With a "time" ramp the level interpolates from tier to tier+Max at MaxAt.
func (s Scaler) Level(tier int, elapsed time.Duration) float64 {
	base := float64(tier)
	if s.ramp.Type != "time" || s.ramp.Max <= 0 {
		return base
	}

	maxAt := s.ramp.MaxAt
	if maxAt <= 0 {
		maxAt = 1 // Prevent division by zero
	}
	progress := clampF(float64(elapsed)/float64(maxAt), 0.0, 1.0)
	return base + progress*s.ramp.Max
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
