package engine

import (
	"sort"
	"time"
)

// TimerID is a handle to a scheduled callback.
type TimerID uint64

type timer struct {
	id    TimerID
	at    time.Duration // Game time at which the timer fires next
	every time.Duration // Repeat period; 0 for one-shot timers
	fn    func()
}

// Timers is the set of game-time callbacks owned by one session.
// Callbacks only run from Advance and only while the guard allows it.
type Timers struct {
	now     time.Duration
	next    TimerID
	pending map[TimerID]*timer
	guard   func() bool
}

// NewTimers creates an empty timer set. guard may be nil.
func NewTimers(guard func() bool) *Timers {
	return &Timers{
		pending: make(map[TimerID]*timer),
		guard:   guard,
	}
}

// Now returns the current game time of the set.
func (t *Timers) Now() time.Duration {
	return t.now
}

// After schedules fn to run once, d from now.
func (t *Timers) After(d time.Duration, fn func()) TimerID {
	return t.schedule(d, 0, fn)
}

// Every schedules fn to run every d, starting d from now.
func (t *Timers) Every(d time.Duration, fn func()) TimerID {
	if d <= 0 {
		d = time.Millisecond
	}
	return t.schedule(d, d, fn)
}

func (t *Timers) schedule(d, every time.Duration, fn func()) TimerID {
	t.next++
	id := t.next
	t.pending[id] = &timer{id: id, at: t.now + d, every: every, fn: fn}
	return id
}

// Cancel removes a pending timer. Returns false if it was not pending.
func (t *Timers) Cancel(id TimerID) bool {
	if _, ok := t.pending[id]; !ok {
		return false
	}
	delete(t.pending, id)
	return true
}

// CancelAll removes every pending timer.
func (t *Timers) CancelAll() {
	for id := range t.pending {
		delete(t.pending, id)
	}
}

// Pending reports whether the timer is still scheduled.
func (t *Timers) Pending(id TimerID) bool {
	_, ok := t.pending[id]
	return ok
}

// Len returns the number of pending timers.
func (t *Timers) Len() int {
	return len(t.pending)
}

// Advance moves game time forward by d and fires due timers in deadline order.
// A callback may cancel or schedule timers; cancelled timers do not fire.
func (t *Timers) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	target := t.now + d

	for {
		due := t.due(target)
		if due == nil {
			break
		}
		t.now = due.at
		if due.every > 0 {
			due.at += due.every
		} else {
			delete(t.pending, due.id)
		}
		if t.guard != nil && !t.guard() {
			continue
		}
		due.fn()
	}
	t.now = target
}

// due returns the earliest timer with a deadline at or before target.
func (t *Timers) due(target time.Duration) *timer {
	var ready []*timer
	for _, tm := range t.pending {
		if tm.at <= target {
			ready = append(ready, tm)
		}
	}
	if len(ready) == 0 {
		return nil
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].at == ready[j].at {
			return ready[i].id < ready[j].id
		}
		return ready[i].at < ready[j].at
	})
	return ready[0]
}
