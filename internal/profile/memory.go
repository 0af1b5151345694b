package profile

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process API. Calls carrying an already seen idempotency
// key are accepted without being applied again.
type Memory struct {
	mu       sync.Mutex
	profiles map[string]*Profile
	seen     map[string]bool
	err      error
	calls    int
}

// NewMemory creates an empty in-process API.
func NewMemory() *Memory {
	return &Memory{
		profiles: make(map[string]*Profile),
		seen:     make(map[string]bool),
	}
}

// Fail makes every later call return err. Nil restores normal operation.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Calls returns how many calls reached the API, failed ones included.
func (m *Memory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Get returns a copy of the stored profile.
func (m *Memory) Get(userID string) Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(userID)
}

func (m *Memory) snapshot(userID string) Profile {
	p, ok := m.profiles[userID]
	if !ok {
		return Profile{UserID: userID, Progress: map[string]int{}}
	}
	out := *p
	out.Completed = slices.Clone(p.Completed)
	out.Collectibles = slices.Clone(p.Collectibles)
	out.Progress = make(map[string]int, len(p.Progress))
	for k, v := range p.Progress {
		out.Progress[k] = v
	}
	return out
}

// apply runs fn against the user's profile unless the call is a replay.
func (m *Memory) apply(ctx context.Context, userID string, fn func(p *Profile)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	if key, ok := IdempotencyKey(ctx); ok {
		if m.seen[key] {
			return nil
		}
		m.seen[key] = true
	}
	p, ok := m.profiles[userID]
	if !ok {
		p = &Profile{UserID: userID, Progress: map[string]int{}}
		m.profiles[userID] = p
	}
	fn(p)
	return nil
}

func (m *Memory) SubmitScore(ctx context.Context, userID string, points int) error {
	return m.apply(ctx, userID, func(p *Profile) { p.TotalScore += points })
}

func (m *Memory) MarkLevelComplete(ctx context.Context, userID, levelID string) error {
	return m.apply(ctx, userID, func(p *Profile) {
		if !slices.Contains(p.Completed, levelID) {
			p.Completed = append(p.Completed, levelID)
		}
	})
}

func (m *Memory) AwardCollectible(ctx context.Context, userID, levelID string) error {
	return m.apply(ctx, userID, func(p *Profile) {
		if !slices.Contains(p.Collectibles, levelID) {
			p.Collectibles = append(p.Collectibles, levelID)
		}
	})
}

func (m *Memory) FetchProfile(_ context.Context, userID string) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return Profile{}, m.err
	}
	return m.snapshot(userID), nil
}

func (m *Memory) UpdateProgress(ctx context.Context, userID, difficulty string, unlocked int) error {
	return m.apply(ctx, userID, func(p *Profile) {
		if unlocked > p.Progress[difficulty] {
			p.Progress[difficulty] = unlocked
		}
	})
}
