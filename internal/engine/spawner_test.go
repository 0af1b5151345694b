package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/core"
)

var (
	testField = core.NewRect(0, 0, 40, 20)
	farAway   = core.NewRect(-100, -100, 1, 1)
)

func dropRule() SpawnRule {
	return SpawnRule{
		Tag:      "drop",
		Kind:     KindCollectible,
		Interval: 100 * time.Millisecond,
		Chance:   1,
		Edge:     EdgeTop,
		SpeedMin: 4,
		SpeedMax: 8,
		Size:     core.V(1, 1),
		Value:    1,
	}
}

// countSpawns runs the spawner for d in 10ms steps and returns how many entities it made.
func countSpawns(rule SpawnRule, scaler config.Scaler, tier int, d time.Duration, seed int64) int {
	store := NewStore()
	sp := NewSpawner([]SpawnRule{rule}, scaler, tier, testField, rand.New(rand.NewSource(seed)))
	for elapsed := time.Duration(0); elapsed < d; elapsed += 10 * time.Millisecond {
		sp.Update(10*time.Millisecond, store, farAway)
	}
	return store.Len()
}

func TestSpawnerRateStatistics(t *testing.T) {
	rule := dropRule()
	rule.Chance = 0.5

	// 1000 interval crossings at p=0.5: mean 500, sd ~16
	n := countSpawns(rule, config.Scaler{}, 0, 100*time.Second, 7)
	if n < 420 || n > 580 {
		t.Errorf("spawned %d entities, expected about 500", n)
	}
}

func TestSpawnerRateMonotonicInTier(t *testing.T) {
	scaler := config.NewScaler(config.DifficultyConfig{
		Scaling: config.ScalingConfig{RateScale: 0.5, CapStep: 1, SpeedScale: 0.25},
	})
	rule := dropRule()
	rule.Chance = 0.8

	prev := -1
	for tier := 0; tier <= 3; tier++ {
		n := countSpawns(rule, scaler, tier, 30*time.Second, 11)
		if n < prev {
			t.Errorf("tier %d spawned %d, fewer than tier %d (%d)", tier, n, tier-1, prev)
		}
		prev = n
	}
}

func TestSpawnerCap(t *testing.T) {
	rule := dropRule()
	rule.Cap = 3

	n := countSpawns(rule, config.Scaler{}, 0, time.Second, 1)
	if n != 3 {
		t.Errorf("population = %d, expected cap 3", n)
	}

	scaler := config.NewScaler(config.DifficultyConfig{Scaling: config.ScalingConfig{CapStep: 1}})
	n = countSpawns(rule, scaler, 2, time.Second, 1)
	if n != 5 {
		t.Errorf("population at tier 2 = %d, expected cap 5", n)
	}
}

func TestSpawnerTotalAndExhausted(t *testing.T) {
	rule := dropRule()
	rule.Total = 5

	store := NewStore()
	sp := NewSpawner([]SpawnRule{rule}, config.Scaler{}, 0, testField, rand.New(rand.NewSource(1)))
	if sp.Exhausted("drop") {
		t.Fatal("fresh finite rule should not be exhausted")
	}
	for i := 0; i < 100; i++ {
		sp.Update(100*time.Millisecond, store, farAway)
	}
	if store.Len() != 5 {
		t.Errorf("spawned %d, expected total 5", store.Len())
	}
	if !sp.Exhausted("drop") {
		t.Error("rule should be exhausted after its total")
	}
	if _, ok := sp.Force("drop", store, farAway); ok {
		t.Error("Force should not exceed the total")
	}

	endless := NewSpawner([]SpawnRule{dropRule()}, config.Scaler{}, 0, testField, rand.New(rand.NewSource(1)))
	if endless.Exhausted("drop") {
		t.Error("endless rule is never exhausted")
	}
}

func TestSpawnerEdges(t *testing.T) {
	tests := []struct {
		edge  Edge
		check func(e *Entity) bool
	}{
		{EdgeTop, func(e *Entity) bool { return e.Pos.Y == -0.5 && e.Vel.Y > 0 && e.Vel.X == 0 }},
		{EdgeBottom, func(e *Entity) bool { return e.Pos.Y == 20.5 && e.Vel.Y < 0 }},
		{EdgeLeft, func(e *Entity) bool { return e.Pos.X == -0.5 && e.Vel.X > 0 }},
		{EdgeRight, func(e *Entity) bool { return e.Pos.X == 40.5 && e.Vel.X < 0 }},
		{EdgeInside, func(e *Entity) bool { return testField.Contains(e.Pos) }},
	}

	for _, tc := range tests {
		t.Run(string(tc.edge), func(t *testing.T) {
			rule := dropRule()
			rule.Edge = tc.edge
			store := NewStore()
			sp := NewSpawner([]SpawnRule{rule}, config.Scaler{}, 0, testField, rand.New(rand.NewSource(3)))
			for i := 0; i < 20; i++ {
				e, ok := sp.Force("drop", store, farAway)
				if !ok {
					t.Fatal("Force failed")
				}
				if !tc.check(e) {
					t.Errorf("bad placement pos=%v vel=%v", e.Pos, e.Vel)
				}
				if e.Pos.X < testField.X-1 || e.Pos.X > testField.Right()+1 {
					t.Errorf("x=%v outside the field span", e.Pos.X)
				}
			}
		})
	}
}

func TestSpawnerSpeedScales(t *testing.T) {
	rule := dropRule()
	rule.SpeedMin, rule.SpeedMax = 4, 4
	scaler := config.NewScaler(config.DifficultyConfig{Scaling: config.ScalingConfig{SpeedScale: 0.5}})

	store := NewStore()
	sp := NewSpawner([]SpawnRule{rule}, scaler, 2, testField, rand.New(rand.NewSource(1)))
	e, _ := sp.Force("drop", store, farAway)
	if e.Vel.Y != 8 {
		t.Errorf("speed at tier 2 = %v, expected 8", e.Vel.Y)
	}
}

func TestStoreIDsAreUnique(t *testing.T) {
	s := NewStore()
	seen := make(map[int]bool)
	for i := 0; i < 50; i++ {
		e := s.Add(&Entity{Tag: "x"})
		if seen[e.ID] {
			t.Fatalf("duplicate ID %d", e.ID)
		}
		seen[e.ID] = true
		if i%2 == 0 {
			s.Kill(e.ID)
			s.Sweep()
		}
	}
	if s.Len() != 25 {
		t.Errorf("Len() = %d, expected 25", s.Len())
	}
	if s.Count("x") != 25 {
		t.Errorf("Count(x) = %d, expected 25", s.Count("x"))
	}
}

func TestStoreKillIsOnce(t *testing.T) {
	s := NewStore()
	e := s.Add(&Entity{})
	if !s.Kill(e.ID) {
		t.Fatal("first Kill should succeed")
	}
	if s.Kill(e.ID) {
		t.Error("second Kill should fail")
	}
	if _, ok := s.Get(e.ID); ok {
		t.Error("dead entity should not be returned by Get")
	}
	if s.Sweep() != 1 {
		t.Error("Sweep should remove one entity")
	}
	if s.Kill(e.ID) {
		t.Error("Kill after Sweep should fail")
	}
}
