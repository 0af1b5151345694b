package engine

import (
	"testing"

	"github.com/vovakirdan/edu-arcade/internal/core"
)

func TestDetectorLeniency(t *testing.T) {
	store := NewStore()
	near := store.Add(&Entity{Pos: core.V(2.4, 1), Size: core.V(0.4, 0.4)})
	actor := core.NewRect(0, 0, 2, 2)

	strict := Detector{Leniency: 1}
	if evs := strict.Detect(store, &actor, nil, 1); len(evs) != 0 {
		t.Errorf("strict detector found %d events, expected 0", len(evs))
	}

	lenient := Detector{Leniency: 1.3}
	evs := lenient.Detect(store, &actor, nil, 1)
	if len(evs) != 1 || evs[0].Entity != near {
		t.Fatalf("lenient detector events = %v, expected the near entity", evs)
	}
	if evs[0].Source != SourceActor {
		t.Errorf("Source = %v, expected actor", evs[0].Source)
	}
}

func TestDetectorLeniencyOnlyFavoursPickups(t *testing.T) {
	actor := core.NewRect(0, 0, 2, 2)
	tests := []struct {
		kind Kind
		hit  bool
	}{
		{KindCollectible, true},
		{KindPowerUp, true},
		{KindHazard, false},
		{KindObstacle, false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			store := NewStore()
			store.Add(&Entity{Kind: tt.kind, Pos: core.V(2.4, 1), Size: core.V(0.4, 0.4)})
			evs := Detector{Leniency: 1.3}.Detect(store, &actor, nil, 1)
			if got := len(evs) == 1; got != tt.hit {
				t.Errorf("hit = %v, expected %v", got, tt.hit)
			}
		})
	}
}

func TestDetectorOneEventPerEntity(t *testing.T) {
	store := NewStore()
	store.Add(&Entity{Pos: core.V(1, 1), Size: core.V(1, 1)})
	store.Add(&Entity{Pos: core.V(1, -2), Size: core.V(1, 1), Shape: ShapeCircle})

	actor := core.NewRect(0, 0, 2, 2)
	tongue := core.OBB{Origin: core.V(1, 1), Dir: core.V(0, -1), Length: 4, Width: 1}

	evs := Detector{Leniency: 1.3}.Detect(store, &actor, &tongue, 1)
	if len(evs) != 2 {
		t.Fatalf("got %d events, expected 2", len(evs))
	}
	if evs[0].Source != SourceActor {
		t.Errorf("entity under both shapes should be credited to the actor, got %v", evs[0].Source)
	}
	if evs[1].Source != SourceEffect {
		t.Errorf("entity on the tongue should come from the effect, got %v", evs[1].Source)
	}
}

func TestDetectorSkipsUntouchable(t *testing.T) {
	store := NewStore()
	dead := store.Add(&Entity{Pos: core.V(1, 1), Size: core.V(1, 1)})
	store.Kill(dead.ID)
	store.Add(&Entity{Pos: core.V(1, 1), Size: core.V(1, 1), Hidden: true})
	store.Add(&Entity{Pos: core.V(1, 1), Size: core.V(1, 1), Solid: true})

	actor := core.NewRect(0, 0, 2, 2)
	if evs := (Detector{}).Detect(store, &actor, nil, 1); len(evs) != 0 {
		t.Errorf("got %d events, expected none", len(evs))
	}
	if !(Detector{}).Blocked(store, actor) {
		t.Error("solid entity should block the actor")
	}
}

func TestDetectorTap(t *testing.T) {
	store := NewStore()
	under := store.Add(&Entity{Pos: core.V(5, 5), Size: core.V(2, 2)})
	top := store.Add(&Entity{Pos: core.V(5.5, 5.5), Size: core.V(1, 1), Shape: ShapeCircle})

	d := Detector{}
	ev, ok := d.Tap(store, core.V(5.5, 5.5), 3)
	if !ok || ev.Entity != top || ev.Source != SourceTap {
		t.Errorf("Tap should hit the topmost entity, got %+v", ev)
	}

	ev, ok = d.Tap(store, core.V(4.2, 4.2), 3)
	if !ok || ev.Entity != under {
		t.Errorf("Tap should fall through to the entity below, got %+v", ev)
	}

	if _, ok := d.Tap(store, core.V(9, 9), 3); ok {
		t.Error("Tap on empty space should miss")
	}
}
