package engine

import (
	"context"
	"testing"
	"time"
)

func TestClockDelta(t *testing.T) {
	t0 := time.Unix(1000, 0)
	c := NewClock(33*time.Millisecond, 4)

	// First call only bases the clock
	if _, ok := c.Delta(t0); ok {
		t.Fatal("first Delta should not report a tick")
	}

	if d, ok := c.Delta(t0.Add(10 * time.Millisecond)); !ok || d != 10*time.Millisecond {
		t.Errorf("Delta = %v, %v; expected 10ms, true", d, ok)
	}

	// Large jumps are clamped to four frames
	if d, _ := c.Delta(t0.Add(5 * time.Second)); d != 132*time.Millisecond {
		t.Errorf("clamped Delta = %v, expected 132ms", d)
	}

	// Time going backwards yields zero
	if d, _ := c.Delta(t0); d != 0 {
		t.Errorf("backwards Delta = %v, expected 0", d)
	}
}

func TestClockPauseSkipsWallTime(t *testing.T) {
	t0 := time.Unix(1000, 0)
	c := NewClock(33*time.Millisecond, 4)
	c.Start(t0)

	c.Pause()
	if _, ok := c.Delta(t0.Add(time.Second)); ok {
		t.Error("paused clock should not tick")
	}

	c.Resume(t0.Add(10 * time.Second))
	d, ok := c.Delta(t0.Add(10*time.Second + 20*time.Millisecond))
	if !ok || d != 20*time.Millisecond {
		t.Errorf("Delta after resume = %v, %v; expected 20ms, true", d, ok)
	}
}

func TestClockStopIsPermanent(t *testing.T) {
	t0 := time.Unix(1000, 0)
	c := NewClock(33*time.Millisecond, 4)
	c.Start(t0)
	c.Stop()

	c.Resume(t0)
	c.Start(t0)
	if _, ok := c.Delta(t0.Add(time.Second)); ok {
		t.Error("stopped clock should never tick again")
	}
	if !c.Stopped() {
		t.Error("Stopped() should be true")
	}
}

func TestLoopStopsWhenCallbackReturnsFalse(t *testing.T) {
	calls := 0
	err := Loop(context.Background(), time.Millisecond, func(time.Time) bool {
		calls++
		return calls < 3
	})
	if err != nil {
		t.Fatalf("Loop() error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, expected 3", calls)
	}
}

func TestLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Loop(ctx, time.Hour, func(time.Time) bool {
		t.Error("callback should not run after cancel")
		return true
	})
	if err != context.Canceled {
		t.Errorf("Loop() error = %v, expected context.Canceled", err)
	}
}
