package level

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/core"
	"github.com/vovakirdan/edu-arcade/internal/engine"
)

const minimalYAML = `
id: tiny
ordinal: 42
mode: catch
field: {w: 20, h: 10}
time_limit: 30s
lives: 2
actor:
  start: {x: 10, y: 9.5}
win: {kind: score, score: 10}
stars: [10, 20, 30]
spawns:
  - tag: drop
    kind: collectible
    interval: 500ms
    speed: [3, 5]
    value: 1
`

func TestEmbeddedLevelsCompile(t *testing.T) {
	levels, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error: %v", err)
	}
	if len(levels) != 10 {
		t.Fatalf("expected 10 embedded levels, got %d", len(levels))
	}
	for i, lvl := range levels {
		if lvl.Ordinal() != i+1 {
			t.Errorf("level %d (%s) has ordinal %d", i, lvl.ID(), lvl.Ordinal())
		}
		if lvl.Source != SourceEmbedded {
			t.Errorf("%s Source = %q", lvl.ID(), lvl.Source)
		}
	}

	reg, err := NewRegistry(levels)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	for _, id := range []string{"fruit-catch", "memory-pairs", "whack-a-mole", "meteor-run", "star-magnet",
		"frog-flies", "maze-escape", "bubble-bounce", "memory-big", "treasure-dive"} {
		if !reg.Exists(id) {
			t.Errorf("embedded level %q missing", id)
		}
	}
}

func TestEmbeddedLevelsStart(t *testing.T) {
	levels, err := LoadEmbedded()
	if err != nil {
		t.Fatal(err)
	}
	for _, lvl := range levels {
		t.Run(lvl.ID(), func(t *testing.T) {
			g := engine.New(lvl.Spec, engine.Options{Runtime: core.RuntimeConfig{TickRate: 30, MaxFrames: 4, Seed: 1}})
			if err := g.Start(); err != nil {
				t.Fatalf("Start() error: %v", err)
			}
			for i := 0; i < 60 && g.Session() != nil; i++ {
				g.Tick(33 * time.Millisecond)
			}
		})
	}
}

func TestCompileDefaults(t *testing.T) {
	d, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	spec, err := Compile(d)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	if spec.Title != "tiny" {
		t.Errorf("Title = %q, expected the ID", spec.Title)
	}
	if spec.Leniency != engine.DefaultLeniency {
		t.Errorf("Leniency = %v, expected default", spec.Leniency)
	}
	if spec.MaxLives != 2 {
		t.Errorf("MaxLives = %d, expected lives", spec.MaxLives)
	}
	if spec.Actor.Mode != engine.ActorHorizontal {
		t.Errorf("actor mode = %q, expected horizontal for catch", spec.Actor.Mode)
	}
	if spec.TimeLimit != 30*time.Second {
		t.Errorf("TimeLimit = %v", spec.TimeLimit)
	}

	r := spec.Spawns[0]
	if r.Chance != 1 || r.Edge != engine.EdgeTop || r.Interval != 500*time.Millisecond {
		t.Errorf("unexpected spawn defaults %+v", r)
	}
	if r.SpeedMin != 3 || r.SpeedMax != 5 {
		t.Errorf("speed = [%v, %v]", r.SpeedMin, r.SpeedMax)
	}
	if r.Glyph != '*' || r.Size.X != 1 {
		t.Errorf("glyph = %q size = %v", r.Glyph, r.Size)
	}
}

func TestCompileErrors(t *testing.T) {
	base := func() Descriptor {
		d, err := Parse([]byte(minimalYAML))
		if err != nil {
			t.Fatal(err)
		}
		return d
	}

	tests := []struct {
		name   string
		mutate func(d *Descriptor)
		code   string
	}{
		{"missing id", func(d *Descriptor) { d.ID = "" }, "MISSING_ID"},
		{"zero ordinal", func(d *Descriptor) { d.Ordinal = 0 }, "BAD_ORDINAL"},
		{"bad mode", func(d *Descriptor) { d.Mode = "puzzle" }, "BAD_MODE"},
		{"no lives", func(d *Descriptor) { d.Lives = 0 }, "BAD_LIVES"},
		{"shrinking hitbox", func(d *Descriptor) { d.Leniency = 0.5 }, "BAD_LENIENCY"},
		{"decreasing stars", func(d *Descriptor) { d.Stars = [3]int{30, 20, 10} }, "BAD_STARS"},
		{"score win without score", func(d *Descriptor) { d.Win.Score = 0 }, "BAD_WIN"},
		{"survive without time", func(d *Descriptor) { d.Win.Kind = "survive"; d.TimeLimit = 0 }, "BAD_WIN"},
		{"goal without layout", func(d *Descriptor) { d.Win.Kind = "goal" }, "BAD_WIN"},
		{"match without block", func(d *Descriptor) { d.Mode = "match" }, "MISSING_MATCH"},
		{"preview outside match", func(d *Descriptor) { d.Preview = time.Second }, "BAD_PREVIEW"},
		{"zero interval", func(d *Descriptor) { d.Spawns[0].Interval = 0 }, "BAD_SPAWN"},
		{"unknown kind", func(d *Descriptor) { d.Spawns[0].Kind = "ghost" }, "BAD_SPAWN"},
		{"powerup without kind", func(d *Descriptor) { d.Spawns[0].Kind = "powerup" }, "BAD_SPAWN"},
		{"duplicate tag", func(d *Descriptor) { d.Spawns = append(d.Spawns, d.Spawns[0]) }, "DUPLICATE_TAG"},
		{"bad color", func(d *Descriptor) { d.Spawns[0].Color = "plaid" }, "BAD_COLOR"},
		{"instant powerup duration", func(d *Descriptor) {
			d.PowerUps = map[string]time.Duration{"extra_life": time.Second}
		}, "BAD_POWERUP"},
		{"unknown layout cell", func(d *Descriptor) { d.Layout = []string{"#?#"} }, "BAD_LAYOUT"},
		{"runner without jump", func(d *Descriptor) { d.Actor.Mode = "runner" }, "BAD_ACTOR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := base()
			tc.mutate(&d)
			_, err := Compile(d)
			if err == nil {
				t.Fatal("expected an error")
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected a ValidationError, got %v", err)
			}
			if !hasCode(err, tc.code) {
				t.Errorf("error %v does not contain code %s", err, tc.code)
			}
		})
	}
}

func hasCode(err error, code string) bool {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			if hasCode(e, code) {
				return true
			}
		}
		return false
	}
	var verr ValidationError
	return errors.As(err, &verr) && verr.Code == code
}

func TestLoaderOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	override := `
id: fruit-catch
ordinal: 1
title: Custom Fruit
field: {w: 30, h: 10}
lives: 5
win: {kind: score, score: 50}
`
	writeFile(t, filepath.Join(dir, "fruit.yaml"), override)
	writeFile(t, filepath.Join(dir, "extra", "tiny.yml"), minimalYAML)
	writeFile(t, filepath.Join(dir, "broken.yaml"), "id: [unterminated")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	l := &Loader{Dirs: []string{dir}}
	levels, err := l.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if len(levels) != 11 {
		t.Fatalf("expected 11 levels, got %d", len(levels))
	}

	reg, err := NewRegistry(levels)
	if err != nil {
		t.Fatal(err)
	}
	fruit, err := reg.Get("fruit-catch")
	if err != nil {
		t.Fatal(err)
	}
	if fruit.Title() != "Custom Fruit" || fruit.Spec.Lives != 5 {
		t.Errorf("override not applied: %+v", fruit.Spec)
	}
	if fruit.Source != filepath.Join(dir, "fruit.yaml") {
		t.Errorf("Source = %q", fruit.Source)
	}
	if last := reg.List()[len(levels)-1]; last.ID != "tiny" {
		t.Errorf("last level = %q, expected tiny by ordinal", last.ID)
	}
}

func TestLoaderPriority(t *testing.T) {
	high, low := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(high, "a.yaml"), minimalYAML)
	writeFile(t, filepath.Join(low, "a.yaml"), replaceTitle(minimalYAML, "Low"))

	l := &Loader{Dirs: []string{high, low, filepath.Join(t.TempDir(), "missing")}}
	levels, err := l.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	for _, lvl := range levels {
		if lvl.ID() == "tiny" && lvl.Source != filepath.Join(high, "a.yaml") {
			t.Errorf("tiny loaded from %s, expected the higher-priority dir", lvl.Source)
		}
	}
}

func TestRegistry(t *testing.T) {
	levels, err := LoadEmbedded()
	if err != nil {
		t.Fatal(err)
	}
	reg, err := NewRegistry(levels)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := reg.Get("nope"); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("Get(nope) error = %v, expected ErrUnknownLevel", err)
	}
	lvl, err := reg.ByOrdinal(7)
	if err != nil || lvl.ID() != "maze-escape" {
		t.Errorf("ByOrdinal(7) = %q, %v", lvl.ID(), err)
	}
	if _, err := reg.ByOrdinal(99); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("ByOrdinal(99) error = %v", err)
	}

	list := reg.List()
	for i := 1; i < len(list); i++ {
		if list[i].Ordinal <= list[i-1].Ordinal {
			t.Fatalf("List() not sorted by ordinal: %v", list)
		}
	}

	dup := append([]Level{}, levels...)
	clash := levels[0]
	clash.Spec.ID = "clash"
	dup = append(dup, clash)
	if err := reg.Replace(dup); err == nil {
		t.Error("Replace should reject a shared ordinal")
	}
	if reg.Len() != 10 || reg.Exists("clash") {
		t.Error("failed Replace should leave the registry unchanged")
	}
}

func TestLevelScaler(t *testing.T) {
	d, _ := Parse([]byte(minimalYAML))
	spec, err := Compile(d)
	if err != nil {
		t.Fatal(err)
	}
	lvl := Level{Descriptor: d, Spec: spec}
	app := config.DifficultyConfig{Scaling: config.ScalingConfig{RateScale: 1}}

	if got := lvl.Scaler(app).Interval(time.Second, 1); got != 500*time.Millisecond {
		t.Errorf("app scaling interval = %v, expected 500ms", got)
	}

	lvl.Descriptor.Scaling = &config.ScalingConfig{RateScale: 3}
	if got := lvl.Scaler(app).Interval(time.Second, 1); got != 250*time.Millisecond {
		t.Errorf("level scaling interval = %v, expected 250ms", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func replaceTitle(doc, title string) string {
	return doc + "title: " + title + "\n"
}
