package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEmbeddedDefaultMatchesHardcoded(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := Default()
	if cfg.Runtime != want.Runtime {
		t.Errorf("Runtime = %+v, expected %+v", cfg.Runtime, want.Runtime)
	}
	if cfg.Difficulty.Scaling != want.Difficulty.Scaling {
		t.Errorf("Scaling = %+v, expected %+v", cfg.Difficulty.Scaling, want.Difficulty.Scaling)
	}
	if cfg.Profile.Timeout != 5*time.Second {
		t.Errorf("Profile.Timeout = %v, expected 5s", cfg.Profile.Timeout)
	}
}

func TestLoadCustomPathOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := []byte("player:\n  user: ada\nruntime:\n  tick_rate: 60\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Player.User != "ada" {
		t.Errorf("User = %q, expected ada", cfg.Player.User)
	}
	if cfg.Runtime.TickRate != 60 {
		t.Errorf("TickRate = %d, expected 60", cfg.Runtime.TickRate)
	}
	// Unset fields keep their defaults
	if cfg.Runtime.MaxFrames != 4 {
		t.Errorf("MaxFrames = %d, expected default 4", cfg.Runtime.MaxFrames)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing custom config")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("runtime: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed custom config")
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    Difficulty
		wantErr bool
	}{
		{"easy", DifficultyEasy, false},
		{"", DifficultyEasy, false},
		{"Medium", DifficultyMedium, false},
		{"normal", DifficultyMedium, false},
		{" hard ", DifficultyHard, false},
		{"nightmare", DifficultyEasy, true},
	}

	for _, tc := range tests {
		got, err := ParseDifficulty(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseDifficulty(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDifficulty(%q) = %v, expected %v", tc.in, got, tc.want)
		}
	}

	for _, d := range Difficulties {
		back, err := ParseDifficulty(d.String())
		if err != nil || back != d {
			t.Errorf("round trip of %v gave %v, %v", d, back, err)
		}
	}
}

func TestScalerMonotonic(t *testing.T) {
	scalers := []Scaler{
		NewScaler(Default().Difficulty),
		NewScaler(DifficultyConfig{Scaling: ScalingConfig{RateScale: 2, CapStep: 0.5, SpeedScale: 1}}),
		// Negative factors must not invert the law
		NewScaler(DifficultyConfig{Scaling: ScalingConfig{RateScale: -1, CapStep: -3, SpeedScale: -0.5}}),
	}

	for i, s := range scalers {
		prevInterval := s.Interval(2*time.Second, 0)
		prevCap := s.Cap(3, 0)
		prevSpeed := s.Speed(4, 0)
		for level := 0.25; level <= 5; level += 0.25 {
			iv := s.Interval(2*time.Second, level)
			cp := s.Cap(3, level)
			sp := s.Speed(4, level)
			if iv > prevInterval {
				t.Errorf("scaler %d: interval grew from %v to %v at level %v", i, prevInterval, iv, level)
			}
			if cp < prevCap {
				t.Errorf("scaler %d: cap shrank from %d to %d at level %v", i, prevCap, cp, level)
			}
			if sp < prevSpeed {
				t.Errorf("scaler %d: speed shrank from %v to %v at level %v", i, prevSpeed, sp, level)
			}
			prevInterval, prevCap, prevSpeed = iv, cp, sp
		}
	}
}

func TestScalerValues(t *testing.T) {
	s := NewScaler(DifficultyConfig{Scaling: ScalingConfig{RateScale: 0.5, CapStep: 1, SpeedScale: 0.25}})

	if got := s.Interval(3*time.Second, 2); got != 1500*time.Millisecond {
		t.Errorf("Interval(3s, 2) = %v, expected 1.5s", got)
	}
	if got := s.Cap(3, 2); got != 5 {
		t.Errorf("Cap(3, 2) = %d, expected 5", got)
	}
	if got := s.Cap(0, 2); got != 0 {
		t.Errorf("Cap(0, 2) = %d, expected unlimited (0)", got)
	}
	if got := s.Speed(8, 2); got != 12 {
		t.Errorf("Speed(8, 2) = %v, expected 12", got)
	}
}

func TestScalerRamp(t *testing.T) {
	s := NewScaler(DifficultyConfig{Ramp: RampConfig{Type: "time", MaxAt: 10 * time.Second, Max: 1}})

	tests := []struct {
		elapsed time.Duration
		want    float64
	}{
		{0, 1},
		{5 * time.Second, 1.5},
		{10 * time.Second, 2},
		{time.Minute, 2}, // clamped at peak
	}
	for _, tc := range tests {
		if got := s.Level(1, tc.elapsed); got != tc.want {
			t.Errorf("Level(1, %v) = %v, expected %v", tc.elapsed, got, tc.want)
		}
	}

	flat := NewScaler(DifficultyConfig{Ramp: RampConfig{Type: "none", Max: 1}})
	if got := flat.Level(2, time.Hour); got != 2 {
		t.Errorf("Level with no ramp = %v, expected 2", got)
	}
}
