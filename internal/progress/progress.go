// Package progress tracks which levels each user has unlocked per difficulty.
//
// The unlocked ordinal only ever grows. Every write resolves by taking the
// maximum of the old and new value, both in memory and in storage, so
// concurrent sessions and late remote merges cannot lock a level again.
package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/edu-arcade/internal/config"
)

// ErrLocked is returned by Check for a level beyond the unlocked ordinal.
var ErrLocked = errors.New("progress: level is locked")

// DefaultUnlocked is the unlocked ordinal of a user with no stored progress.
const DefaultUnlocked = 1

// Storage persists progress records.
type Storage interface {
	GetProgress(ctx context.Context, userID, difficulty string) (int, bool, error)
	SetProgress(ctx context.Context, userID, difficulty string, unlocked int) error
}

type key struct {
	user string
	diff config.Difficulty
}

// Store is the progression store shared by every session.
// It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	storage Storage
	logger  *log.Logger
	cache   map[key]int
}

// New creates a progression store over storage. A nil logger uses log.Default().
func New(storage Storage, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		storage: storage,
		logger:  logger,
		cache:   make(map[key]int),
	}
}

// Unlocked returns the highest playable ordinal for the user.
// A storage read failure is logged and yields DefaultUnlocked.
func (s *Store) Unlocked(ctx context.Context, userID string, d config.Difficulty) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked(ctx, key{userID, d})
}

func (s *Store) unlocked(ctx context.Context, k key) int {
	n, _ := s.load(ctx, k)
	return n
}

// load returns the cached or stored value. known is false when storage could
// not be read and the default was substituted.
func (s *Store) load(ctx context.Context, k key) (n int, known bool) {
	if n, ok := s.cache[k]; ok {
		return n, true
	}
	n, ok, err := s.storage.GetProgress(ctx, k.user, k.diff.String())
	if err != nil {
		s.logger.Warn("could not read progress", "user", k.user, "difficulty", k.diff, "error", err)
		return DefaultUnlocked, false
	}
	if !ok || n < DefaultUnlocked {
		n = DefaultUnlocked
	}
	s.cache[k] = n
	return n, true
}

// Playable reports whether the level with the given ordinal may be started.
func (s *Store) Playable(ctx context.Context, userID string, d config.Difficulty, ordinal int) bool {
	return ordinal >= 1 && ordinal <= s.Unlocked(ctx, userID, d)
}

// Check returns ErrLocked when the level may not be started.
func (s *Store) Check(ctx context.Context, userID string, d config.Difficulty, ordinal int) error {
	if !s.Playable(ctx, userID, d, ordinal) {
		return fmt.Errorf("%w: level %d on %s", ErrLocked, ordinal, d)
	}
	return nil
}

// Record raises the unlocked ordinal to at least n and returns the result.
// A lower n is a no-op. A storage write failure is logged and the raised
// value is kept in memory for the rest of the process. When the earlier read
// failed, the stored value is read back after the write so a higher stored
// ordinal is not hidden.
func (s *Store) Record(ctx context.Context, userID string, d config.Difficulty, n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{userID, d}
	cur, known := s.load(ctx, k)
	if n <= cur {
		return cur
	}
	if err := s.storage.SetProgress(ctx, userID, d.String(), n); err != nil {
		s.logger.Warn("could not save progress", "user", userID, "difficulty", d, "unlocked", n, "error", err)
		s.cache[k] = n
		return n
	}
	if known {
		s.cache[k] = n
		return n
	}
	if stored, _ := s.load(ctx, k); stored > n {
		return stored
	}
	return n
}

// Complete unlocks the level after the one with the given ordinal.
func (s *Store) Complete(ctx context.Context, userID string, d config.Difficulty, ordinal int) int {
	return s.Record(ctx, userID, d, ordinal+1)
}

// Snapshot returns the unlocked ordinal for every difficulty.
func (s *Store) Snapshot(ctx context.Context, userID string) map[config.Difficulty]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[config.Difficulty]int, len(config.Difficulties))
	for _, d := range config.Difficulties {
		out[d] = s.unlocked(ctx, key{userID, d})
	}
	return out
}

// Forget drops cached values so the next read goes to storage.
func (s *Store) Forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[key]int)
}
