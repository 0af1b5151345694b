package engine

import (
	"testing"
	"time"
)

func TestPowerUpsActivateAndExpire(t *testing.T) {
	tm := NewTimers(nil)
	var ended []PowerUpKind
	p := NewPowerUps(tm, func(k PowerUpKind) { ended = append(ended, k) })

	p.Activate(PowerUpShield, 5*time.Second)
	if !p.Has(PowerUpShield) {
		t.Fatal("shield should be active")
	}
	if !p.Snapshot().Shield {
		t.Error("snapshot should include shield")
	}

	tm.Advance(4 * time.Second)
	if got := p.Remaining(PowerUpShield); got != time.Second {
		t.Errorf("Remaining = %v, expected 1s", got)
	}

	// Re-pickup extends from now
	p.Activate(PowerUpShield, 5*time.Second)
	tm.Advance(2 * time.Second)
	if !p.Has(PowerUpShield) {
		t.Error("extended shield should still be active at 6s")
	}

	tm.Advance(3 * time.Second)
	if p.Has(PowerUpShield) {
		t.Error("shield should expire at 9s")
	}
	if len(ended) != 1 || ended[0] != PowerUpShield {
		t.Errorf("onEnd calls = %v, expected [shield]", ended)
	}
}

func TestPowerUpsConcurrentEffects(t *testing.T) {
	tm := NewTimers(nil)
	p := NewPowerUps(tm, nil)

	p.Activate(PowerUpMagnet, time.Second)
	p.Activate(PowerUpDoubleScore, 3*time.Second)

	fx := p.Snapshot()
	if !fx.Magnet || !fx.DoubleScore || fx.Shield {
		t.Errorf("snapshot = %+v", fx)
	}
	if fx.Multiplier() != 2 {
		t.Errorf("Multiplier() = %d, expected 2", fx.Multiplier())
	}

	tm.Advance(time.Second)
	fx = p.Snapshot()
	if fx.Magnet || !fx.DoubleScore {
		t.Errorf("after 1s snapshot = %+v, expected only double score", fx)
	}
	if len(p.Active()) != 1 {
		t.Errorf("Active() has %d entries, expected 1", len(p.Active()))
	}
}

func TestPowerUpKinds(t *testing.T) {
	timed := []PowerUpKind{PowerUpShield, PowerUpMagnet, PowerUpSlowMotion, PowerUpDoubleScore}
	instant := []PowerUpKind{PowerUpExtraLife, PowerUpTimeBonus, PowerUpClearHazards}

	for _, k := range timed {
		if !k.Timed() || !k.Valid() {
			t.Errorf("%s should be a valid timed power-up", k)
		}
	}
	for _, k := range instant {
		if k.Timed() || !k.Valid() {
			t.Errorf("%s should be a valid instant power-up", k)
		}
	}
	if PowerUpKind("teleport").Valid() {
		t.Error("unknown power-up should be invalid")
	}
}
