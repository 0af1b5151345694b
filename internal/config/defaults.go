package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/arcade.yaml
var defaultArcadeYAML []byte

// Default returns the hardcoded default configuration.
// It mirrors defaults/arcade.yaml and is used if the embedded file cannot be parsed.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Path: "~/.arcade/edu-arcade.db",
		},
		Player: PlayerConfig{
			User:       "player",
			Difficulty: "easy",
		},
		Runtime: RuntimeSettings{
			TickRate:  30,
			MaxFrames: 4,
			Width:     60,
			Height:    20,
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.5,
		},
		Profile: ProfileConfig{
			BaseURL: "",
			Timeout: 5 * time.Second,
		},
		Reporter: ReporterConfig{
			QueueSize:   32,
			ResyncLimit: 100,
		},
		Difficulty: DifficultyConfig{
			Tiers: 3,
			Scaling: ScalingConfig{
				RateScale:  0.5,
				CapStep:    1,
				SpeedScale: 0.25,
			},
			Ramp: RampConfig{
				Type:  "time",
				MaxAt: 60 * time.Second,
				Max:   0.5,
			},
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        2222,
			HostKeyPath: ".ssh/arcade_ed25519",
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultArcadeYAML
}
