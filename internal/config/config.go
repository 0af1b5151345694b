// Package config provides YAML-based application configuration loading and
// difficulty scaling for the arcade platform.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains all application-level configuration.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Player     PlayerConfig     `yaml:"player"`
	Runtime    RuntimeSettings  `yaml:"runtime"`
	Audio      AudioConfig      `yaml:"audio"`
	Profile    ProfileConfig    `yaml:"profile"`
	Reporter   ReporterConfig   `yaml:"reporter"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
	Levels     LevelsConfig     `yaml:"levels"`
	Server     ServerConfig     `yaml:"server"`
}

// StorageConfig defines where progress and scores are persisted.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// PlayerConfig identifies the local player.
type PlayerConfig struct {
	User       string `yaml:"user"`
	Difficulty string `yaml:"difficulty"` // easy, medium or hard
}

// RuntimeSettings controls the simulation clock.
type RuntimeSettings struct {
	TickRate  int `yaml:"tick_rate"`  // Ticks per second
	MaxFrames int `yaml:"max_frames"` // Elapsed clamp in nominal frames
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
}

// AudioConfig controls cue playback.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"` // 0.0 - 1.0
}

// ProfileConfig points at the remote score/profile API.
type ProfileConfig struct {
	BaseURL string        `yaml:"base_url"` // Empty means offline
	Timeout time.Duration `yaml:"timeout"`
}

// ReporterConfig sizes the result reporter.
type ReporterConfig struct {
	QueueSize   int `yaml:"queue_size"`
	ResyncLimit int `yaml:"resync_limit"`
}

// DifficultyConfig defines the difficulty scaling law and the in-session ramp.
type DifficultyConfig struct {
	Tiers   int           `yaml:"tiers"`
	Scaling ScalingConfig `yaml:"scaling"`
	Ramp    RampConfig    `yaml:"ramp"`
}

// ScalingConfig defines how much each tier scales the spawn parameters.
type ScalingConfig struct {
	RateScale  float64 `yaml:"rate_scale"`  // Spawn rate gain per tier
	CapStep    float64 `yaml:"cap_step"`    // Population cap gain per tier
	SpeedScale float64 `yaml:"speed_scale"` // Entity speed gain per tier
}

// RampConfig defines how difficulty increases during a session.
type RampConfig struct {
	Type  string        `yaml:"type"`   // "time" or "none"
	MaxAt time.Duration `yaml:"max_at"` // Elapsed time at which the ramp peaks
	Max   float64       `yaml:"max"`    // Extra tiers added at the peak
}

// LevelsConfig locates level descriptors.
type LevelsConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig defines SSH server settings.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	HostKeyPath string `yaml:"host_key_path"`
}

// Difficulty is a named progression track. Each track has its own unlock state.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

// Difficulties lists every track in tier order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// String returns the preset name.
func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	default:
		return fmt.Sprintf("tier%d", int(d))
	}
}

// Tier returns the scaling tier for the track.
func (d Difficulty) Tier() int {
	return int(d)
}

// ParseDifficulty maps a preset name to its track.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "":
		return DifficultyEasy, nil
	case "medium", "normal":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	default:
		return DifficultyEasy, fmt.Errorf("config: unknown difficulty %q", s)
	}
}
