package progress

import (
	"context"
	"sync"
)

// MemoryStorage keeps progress in process memory.
// It backs the store when the database cannot be opened, and in tests.
type MemoryStorage struct {
	mu   sync.Mutex
	rows map[string]int

	// Err, when set, is returned by every call.
	Err error
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{rows: make(map[string]int)}
}

func memKey(userID, difficulty string) string {
	return userID + "\x00" + difficulty
}

// GetProgress implements Storage.
func (m *MemoryStorage) GetProgress(_ context.Context, userID, difficulty string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, false, m.Err
	}
	n, ok := m.rows[memKey(userID, difficulty)]
	return n, ok, nil
}

// SetProgress implements Storage. Values never decrease.
func (m *MemoryStorage) SetProgress(_ context.Context, userID, difficulty string, unlocked int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	k := memKey(userID, difficulty)
	if unlocked > m.rows[k] {
		m.rows[k] = unlocked
	}
	return nil
}

// Fail makes every later call return err. Nil restores normal operation.
func (m *MemoryStorage) Fail(err error) {
	m.mu.Lock()
	m.Err = err
	m.mu.Unlock()
}
