package progress

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/profile"
	"github.com/vovakirdan/edu-arcade/internal/storage"
)

var quiet = log.New(io.Discard)

func TestDefaultUnlocked(t *testing.T) {
	s := New(NewMemoryStorage(), quiet)
	ctx := context.Background()

	if n := s.Unlocked(ctx, "kid", config.DifficultyEasy); n != 1 {
		t.Errorf("Unlocked() = %d, expected 1 for a new user", n)
	}
	if !s.Playable(ctx, "kid", config.DifficultyEasy, 1) {
		t.Error("level 1 should always be playable")
	}
	if s.Playable(ctx, "kid", config.DifficultyEasy, 2) {
		t.Error("level 2 should be locked for a new user")
	}
	if s.Playable(ctx, "kid", config.DifficultyEasy, 0) {
		t.Error("ordinal 0 is never playable")
	}
}

func TestCheck(t *testing.T) {
	s := New(NewMemoryStorage(), quiet)
	ctx := context.Background()

	if err := s.Check(ctx, "kid", config.DifficultyHard, 3); !errors.Is(err, ErrLocked) {
		t.Errorf("Check() = %v, expected ErrLocked", err)
	}
	s.Complete(ctx, "kid", config.DifficultyHard, 2)
	if err := s.Check(ctx, "kid", config.DifficultyHard, 3); err != nil {
		t.Errorf("Check() after completing level 2 = %v", err)
	}
}

// Recording a lower value after a higher one keeps the higher one.
func TestRecordNeverDecreases(t *testing.T) {
	mem := NewMemoryStorage()
	s := New(mem, quiet)
	ctx := context.Background()

	s.Record(ctx, "kid", config.DifficultyMedium, 3)
	if got := s.Record(ctx, "kid", config.DifficultyMedium, 2); got != 3 {
		t.Errorf("Record(2) = %d, expected 3", got)
	}
	if n := s.Unlocked(ctx, "kid", config.DifficultyMedium); n != 3 {
		t.Errorf("Unlocked() = %d, expected 3", n)
	}
	if n, _, _ := mem.GetProgress(ctx, "kid", "medium"); n != 3 {
		t.Errorf("stored = %d, expected 3", n)
	}

	// A fresh store over the same storage sees the persisted value
	if n := New(mem, quiet).Unlocked(ctx, "kid", config.DifficultyMedium); n != 3 {
		t.Errorf("Unlocked() after restart = %d, expected 3", n)
	}
}

func TestDifficultiesAreIndependent(t *testing.T) {
	s := New(NewMemoryStorage(), quiet)
	ctx := context.Background()

	s.Complete(ctx, "kid", config.DifficultyEasy, 5)
	if n := s.Unlocked(ctx, "kid", config.DifficultyHard); n != 1 {
		t.Errorf("hard Unlocked() = %d, expected 1", n)
	}
	if n := s.Unlocked(ctx, "other", config.DifficultyEasy); n != 1 {
		t.Errorf("other user Unlocked() = %d, expected 1", n)
	}

	snap := s.Snapshot(ctx, "kid")
	if snap[config.DifficultyEasy] != 6 || snap[config.DifficultyMedium] != 1 {
		t.Errorf("Snapshot() = %v", snap)
	}
}

func TestReadFailureDefaultsToOne(t *testing.T) {
	mem := NewMemoryStorage()
	ctx := context.Background()
	mem.SetProgress(ctx, "kid", "easy", 4)
	mem.Fail(errors.New("disk gone"))

	s := New(mem, quiet)
	if n := s.Unlocked(ctx, "kid", config.DifficultyEasy); n != 1 {
		t.Errorf("Unlocked() on read failure = %d, expected 1", n)
	}

	// Failures are not cached
	mem.Fail(nil)
	if n := s.Unlocked(ctx, "kid", config.DifficultyEasy); n != 4 {
		t.Errorf("Unlocked() after recovery = %d, expected 4", n)
	}
}

// failReads fails the first reads, then behaves like the wrapped storage.
type failReads struct {
	*MemoryStorage
	left int
}

func (f *failReads) GetProgress(ctx context.Context, userID, difficulty string) (int, bool, error) {
	if f.left > 0 {
		f.left--
		return 0, false, errors.New("busy")
	}
	return f.MemoryStorage.GetProgress(ctx, userID, difficulty)
}

func TestRecordAfterReadFailureKeepsStoredValue(t *testing.T) {
	mem := NewMemoryStorage()
	ctx := context.Background()
	mem.SetProgress(ctx, "kid", "easy", 5)

	s := New(&failReads{MemoryStorage: mem, left: 1}, quiet)
	if got := s.Record(ctx, "kid", config.DifficultyEasy, 3); got != 5 {
		t.Errorf("Record(3) = %d, expected the stored 5", got)
	}
	if n := s.Unlocked(ctx, "kid", config.DifficultyEasy); n != 5 {
		t.Errorf("Unlocked() = %d, expected 5", n)
	}
}

func TestWriteFailureKeepsMemoryValue(t *testing.T) {
	mem := NewMemoryStorage()
	s := New(mem, quiet)
	ctx := context.Background()

	s.Unlocked(ctx, "kid", config.DifficultyEasy)
	mem.Fail(errors.New("read-only"))
	if got := s.Complete(ctx, "kid", config.DifficultyEasy, 1); got != 2 {
		t.Errorf("Complete() = %d, expected 2", got)
	}
	if n := s.Unlocked(ctx, "kid", config.DifficultyEasy); n != 2 {
		t.Errorf("Unlocked() = %d, expected the in-memory value", n)
	}
}

func TestConcurrentRecords(t *testing.T) {
	s := New(NewMemoryStorage(), quiet)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Record(ctx, "kid", config.DifficultyEasy, n)
		}(i)
	}
	wg.Wait()

	if n := s.Unlocked(ctx, "kid", config.DifficultyEasy); n != 20 {
		t.Errorf("Unlocked() = %d, expected 20", n)
	}
}

func TestSQLiteBackedStore(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()

	s := New(db, quiet)
	s.Record(ctx, "kid", config.DifficultyEasy, 3)
	s.Record(ctx, "kid", config.DifficultyEasy, 2)

	if n := New(db, quiet).Unlocked(ctx, "kid", config.DifficultyEasy); n != 3 {
		t.Errorf("Unlocked() from sqlite = %d, expected 3", n)
	}
}

func TestReconcilerMergesByMax(t *testing.T) {
	ctx := context.Background()
	remote := profile.NewMemory()
	remote.UpdateProgress(ctx, "kid", "easy", 5)
	remote.UpdateProgress(ctx, "kid", "medium", 1)

	s := New(NewMemoryStorage(), quiet)
	s.Record(ctx, "kid", config.DifficultyEasy, 2)
	s.Record(ctx, "kid", config.DifficultyMedium, 4)

	merged, err := NewReconciler(s, remote, quiet).Sync(ctx, "kid")
	if err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if merged[config.DifficultyEasy] != 5 || merged[config.DifficultyMedium] != 4 || merged[config.DifficultyHard] != 1 {
		t.Errorf("merged = %v", merged)
	}
	if n := s.Unlocked(ctx, "kid", config.DifficultyEasy); n != 5 {
		t.Errorf("local easy = %d, expected remote value 5", n)
	}
	if p := remote.Get("kid"); p.Progress["medium"] != 4 {
		t.Errorf("remote medium = %d, expected local value 4 to be pushed", p.Progress["medium"])
	}
}

func TestReconcilerOffline(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryStorage(), quiet)
	s.Record(ctx, "kid", config.DifficultyEasy, 3)

	merged, err := NewReconciler(s, profile.Offline{}, quiet).Sync(ctx, "kid")
	if !errors.Is(err, profile.ErrOffline) {
		t.Errorf("Sync() error = %v, expected ErrOffline", err)
	}
	if merged[config.DifficultyEasy] != 3 {
		t.Errorf("offline sync should return local values, got %v", merged)
	}
}
