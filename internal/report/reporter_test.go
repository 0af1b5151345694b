package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/engine"
	"github.com/vovakirdan/edu-arcade/internal/profile"
	"github.com/vovakirdan/edu-arcade/internal/progress"
	"github.com/vovakirdan/edu-arcade/internal/storage"
)

var quiet = log.New(io.Discard)

func openDB(t *testing.T) *storage.Store {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "arcade.db"))
	if err != nil {
		t.Fatalf("storage.Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func result(id string, outcome engine.Outcome, stars int) engine.Result {
	return engine.Result{
		SessionID: id,
		LevelID:   "fruit-catch",
		Ordinal:   1,
		Outcome:   outcome,
		Points:    90,
		Stars:     stars,
		Perfect:   stars == 3,
	}
}

func opts() Options {
	return Options{UserID: "kid", Difficulty: config.DifficultyEasy, Timeout: time.Second}
}

func pending(t *testing.T, db *storage.Store) int {
	t.Helper()
	n, err := db.CountPending(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestSubmitWonPerfect(t *testing.T) {
	db := openDB(t)
	api := profile.NewMemory()
	prog := progress.New(db, quiet)
	r := New(opts(), api, db, prog, quiet)
	r.Start(context.Background())

	r.Submit(result("s1", engine.OutcomeWon, 3))
	r.Close()

	p := api.Get("kid")
	if p.TotalScore != 90 {
		t.Errorf("TotalScore = %d, expected 90", p.TotalScore)
	}
	if len(p.Completed) != 1 || len(p.Collectibles) != 1 {
		t.Errorf("completed %v collectibles %v", p.Completed, p.Collectibles)
	}
	if p.Progress["easy"] != 2 {
		t.Errorf("remote progress = %d, expected 2", p.Progress["easy"])
	}

	ctx := context.Background()
	if n := prog.Unlocked(ctx, "kid", config.DifficultyEasy); n != 2 {
		t.Errorf("local unlocked = %d, expected 2", n)
	}
	if high, _ := db.HighScore("fruit-catch"); high != 90 {
		t.Errorf("local high score = %d", high)
	}
	if ids, _ := db.Collectibles(ctx, "kid"); len(ids) != 1 {
		t.Errorf("local collectibles = %v", ids)
	}
	if pending(t, db) != 0 {
		t.Error("nothing should be left in the outbox")
	}
}

func TestSubmitLostDoesNotUnlock(t *testing.T) {
	db := openDB(t)
	api := profile.NewMemory()
	prog := progress.New(db, quiet)
	r := New(opts(), api, db, prog, quiet)
	r.Start(context.Background())

	r.Submit(result("s1", engine.OutcomeLost, 0))
	r.Submit(result("s2", engine.OutcomeTimedOut, 0))
	r.Close()

	if n := prog.Unlocked(context.Background(), "kid", config.DifficultyEasy); n != 1 {
		t.Errorf("unlocked = %d after losing, expected 1", n)
	}
	p := api.Get("kid")
	if len(p.Completed) != 0 || p.TotalScore != 180 {
		t.Errorf("remote profile = %+v", p)
	}
}

func TestOfflineCallsGoToOutbox(t *testing.T) {
	db := openDB(t)
	api := profile.NewMemory()
	api.Fail(profile.ErrOffline)

	r := New(opts(), api, db, progress.New(db, quiet), quiet)
	r.Start(context.Background())
	r.Submit(result("s1", engine.OutcomeWon, 1))
	r.Close()

	if n := pending(t, db); n != 3 {
		t.Fatalf("pending = %d, expected score, complete and progress", n)
	}

	// Next launch, API back online
	api.Fail(nil)
	next := New(opts(), api, db, nil, quiet)
	res, err := next.Resync(context.Background())
	if err != nil {
		t.Fatalf("Resync() error: %v", err)
	}
	if res.Sent != 3 || res.Failed != 0 {
		t.Errorf("Resync() = %+v", res)
	}
	if pending(t, db) != 0 {
		t.Error("outbox should be empty after resync")
	}
	if p := api.Get("kid"); p.TotalScore != 90 || p.Progress["easy"] != 2 {
		t.Errorf("remote profile after resync = %+v", p)
	}
}

func TestResyncStopsWhenOffline(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		c := Call{Kind: KindScore, UserID: "kid", Key: fmt.Sprintf("k%d", i), Points: 10}
		db.EnqueueReport(ctx, storage.PendingReport{Kind: c.Kind, UserID: c.UserID, Key: c.Key, Payload: mustJSON(t, c)})
	}

	api := profile.NewMemory()
	api.Fail(profile.ErrOffline)
	r := New(opts(), api, db, nil, quiet)

	res, err := r.Resync(ctx)
	if !errors.Is(err, profile.ErrOffline) {
		t.Errorf("Resync() error = %v, expected ErrOffline", err)
	}
	if res.Failed != 1 || api.Calls() != 1 {
		t.Errorf("expected the pass to stop after one failure, got %+v with %d calls", res, api.Calls())
	}

	left, _ := db.PendingReports(ctx, 10)
	if len(left) != 3 || left[0].Attempts != 1 || left[1].Attempts != 0 {
		t.Errorf("unexpected outbox state: %+v", left)
	}
}

func TestResyncDropsRejectedAndUnreadable(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	db.EnqueueReport(ctx, storage.PendingReport{Kind: "score", UserID: "kid", Key: "bad", Payload: []byte("{not json")})
	c := Call{Kind: KindScore, UserID: "kid", Key: "rejected", Points: 1}
	db.EnqueueReport(ctx, storage.PendingReport{Kind: c.Kind, UserID: c.UserID, Key: c.Key, Payload: mustJSON(t, c)})

	api := profile.NewMemory()
	api.Fail(&profile.StatusError{Code: http.StatusBadRequest})
	r := New(opts(), api, db, nil, quiet)

	res, err := r.Resync(ctx)
	if err != nil {
		t.Fatalf("Resync() error: %v", err)
	}
	if res.Dropped != 2 {
		t.Errorf("Resync() = %+v, expected 2 dropped", res)
	}
	if pending(t, db) != 0 {
		t.Error("dropped reports should leave the outbox")
	}
}

func TestRejectedCallsAreNotQueued(t *testing.T) {
	db := openDB(t)
	api := profile.NewMemory()
	api.Fail(&profile.StatusError{Code: http.StatusUnprocessableEntity})

	r := New(opts(), api, db, nil, quiet)
	r.Start(context.Background())
	r.Submit(result("s1", engine.OutcomeLost, 0))
	r.Close()

	if n := pending(t, db); n != 0 {
		t.Errorf("pending = %d, rejected calls should not be retried", n)
	}
}

// slowAPI blocks score submissions until released.
type slowAPI struct {
	*profile.Memory
	release chan struct{}
}

func (s *slowAPI) SubmitScore(ctx context.Context, userID string, points int) error {
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.Memory.SubmitScore(ctx, userID, points)
}

func TestSubmitDoesNotBlock(t *testing.T) {
	db := openDB(t)
	api := &slowAPI{Memory: profile.NewMemory(), release: make(chan struct{})}
	o := opts()
	o.QueueSize = 1
	o.Timeout = 5 * time.Second
	r := New(o, api, db, nil, quiet)
	r.Start(context.Background())

	start := time.Now()
	for i := 0; i < 5; i++ {
		r.Submit(result(fmt.Sprintf("s%d", i), engine.OutcomeLost, 0))
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Submit blocked for %v", elapsed)
	}
	if n := pending(t, db); n < 3 {
		t.Errorf("pending = %d, expected overflow in the outbox", n)
	}

	close(api.release)
	r.Close()
}

func TestSubmitAfterClose(t *testing.T) {
	db := openDB(t)
	r := New(opts(), profile.NewMemory(), db, nil, quiet)
	r.Start(context.Background())
	r.Close()
	r.Close()

	r.Submit(result("late", engine.OutcomeLost, 0))
	if n := pending(t, db); n != 1 {
		t.Errorf("pending = %d, expected the late call in the outbox", n)
	}
}

func TestCloseWithoutStartKeepsCalls(t *testing.T) {
	db := openDB(t)
	r := New(opts(), profile.NewMemory(), db, nil, quiet)
	r.Submit(result("s1", engine.OutcomeLost, 0))
	r.Close()

	if n := pending(t, db); n != 1 {
		t.Errorf("pending = %d, expected queued call persisted", n)
	}
}

func TestCallSendUnknownKind(t *testing.T) {
	err := Call{Kind: "teleport"}.Send(context.Background(), profile.NewMemory())
	if err == nil {
		t.Error("expected an error for an unknown kind")
	}
}

func mustJSON(t *testing.T, c Call) []byte {
	t.Helper()
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestForReportsPerUser(t *testing.T) {
	db := openDB(t)
	api := profile.NewMemory()
	prog := progress.New(db, quiet)
	r := New(opts(), api, db, prog, quiet)
	r.Start(context.Background())

	r.For("ada", config.DifficultyHard).Submit(result("s1", engine.OutcomeWon, 1))
	r.Close()

	ctx := context.Background()
	if n := prog.Unlocked(ctx, "ada", config.DifficultyHard); n != 2 {
		t.Errorf("ada hard unlocked = %d, expected 2", n)
	}
	if n := prog.Unlocked(ctx, "kid", config.DifficultyEasy); n != 1 {
		t.Errorf("default user should be untouched, got %d", n)
	}
	if p := api.Get("ada"); p.Progress["hard"] != 2 {
		t.Errorf("remote progress = %v", p.Progress)
	}
}
