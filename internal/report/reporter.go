// Package report delivers finished sessions to local storage and the remote
// profile API.
//
// Local writes happen synchronously in Submit. Remote calls are handed to a
// worker goroutine through a buffered channel; Submit never waits for the
// network. Calls that cannot be delivered are persisted to the outbox and
// replayed by Resync.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/engine"
	"github.com/vovakirdan/edu-arcade/internal/profile"
	"github.com/vovakirdan/edu-arcade/internal/progress"
	"github.com/vovakirdan/edu-arcade/internal/storage"
)

// DefaultQueueSize is used when Options.QueueSize is not positive.
const DefaultQueueSize = 16

// Local is the persistence the reporter writes to.
// *storage.Store implements it.
type Local interface {
	SaveScore(rec storage.ScoreRecord) (int64, error)
	AddCollectible(ctx context.Context, userID, levelID string) error
	EnqueueReport(ctx context.Context, r storage.PendingReport) error
	PendingReports(ctx context.Context, limit int) ([]storage.PendingReport, error)
	DeleteReport(ctx context.Context, id int64) error
	MarkReportFailed(ctx context.Context, id int64, cause error) error
}

// Options configures a Reporter.
type Options struct {
	UserID      string
	Difficulty  config.Difficulty
	QueueSize   int
	Timeout     time.Duration // Per remote call; 0 uses profile.DefaultTimeout
	ResyncLimit int
}

// Reporter implements engine.ResultSink.
type Reporter struct {
	opts     Options
	api      profile.API
	local    Local
	progress *progress.Store
	logger   *log.Logger

	queue   chan []Call
	mu      sync.Mutex
	started bool
	closed  bool
	done    chan struct{}
}

// New creates a reporter. local and prog may be nil; a nil api means offline.
// A nil logger uses log.Default().
func New(opts Options, api profile.API, local Local, prog *progress.Store, logger *log.Logger) *Reporter {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = profile.DefaultTimeout
	}
	if api == nil {
		api = profile.Offline{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Reporter{
		opts:     opts,
		api:      api,
		local:    local,
		progress: prog,
		logger:   logger,
		queue:    make(chan []Call, opts.QueueSize),
		done:     make(chan struct{}),
	}
}

// Start launches the delivery worker. ctx bounds every remote call.
func (r *Reporter) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.closed {
		return
	}
	r.started = true
	go r.run(ctx)
}

// Close stops accepting work, drains the queue and waits for the worker.
func (r *Reporter) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	started := r.started
	close(r.queue)
	r.mu.Unlock()

	if started {
		<-r.done
		return
	}
	// Never started: keep queued calls for the next launch
	for calls := range r.queue {
		for _, c := range calls {
			r.persist(context.Background(), c, errors.New("reporter closed before delivery"))
		}
	}
}

var _ engine.ResultSink = (*Reporter)(nil)

// Submit records a finished session for the configured user and difficulty.
// It does not block on the network.
func (r *Reporter) Submit(res engine.Result) {
	r.submit(res, r.opts.UserID, r.opts.Difficulty)
}

// For returns a sink that reports for another user and difficulty through
// the same worker and outbox.
func (r *Reporter) For(userID string, d config.Difficulty) engine.ResultSink {
	return userSink{r: r, user: userID, diff: d}
}

type userSink struct {
	r    *Reporter
	user string
	diff config.Difficulty
}

func (s userSink) Submit(res engine.Result) {
	s.r.submit(res, s.user, s.diff)
}

func (r *Reporter) submit(res engine.Result, user string, diff config.Difficulty) {
	ctx := context.Background()

	if r.local != nil {
		_, err := r.local.SaveScore(storage.ScoreRecord{
			LevelID:    res.LevelID,
			UserID:     user,
			Difficulty: diff.String(),
			SessionID:  res.SessionID,
			Outcome:    res.Outcome.String(),
			Points:     res.Points,
			Stars:      res.Stars,
		})
		if err != nil {
			r.logger.Warn("could not save score", "level", res.LevelID, "error", err)
		}
	}

	calls := []Call{{Kind: KindScore, UserID: user, Key: key(res, KindScore), LevelID: res.LevelID, Points: res.Points}}
	if res.Won() {
		unlocked := res.Ordinal + 1
		if r.progress != nil {
			unlocked = r.progress.Complete(ctx, user, diff, res.Ordinal)
		}
		calls = append(calls,
			Call{Kind: KindComplete, UserID: user, Key: key(res, KindComplete), LevelID: res.LevelID},
			Call{Kind: KindProgress, UserID: user, Key: key(res, KindProgress), Difficulty: diff.String(), Unlocked: unlocked},
		)
		if res.Perfect {
			if r.local != nil {
				if err := r.local.AddCollectible(ctx, user, res.LevelID); err != nil {
					r.logger.Warn("could not save collectible", "level", res.LevelID, "error", err)
				}
			}
			calls = append(calls, Call{Kind: KindCollectible, UserID: user, Key: key(res, KindCollectible), LevelID: res.LevelID})
		}
	}

	r.enqueue(ctx, calls)
}

func key(res engine.Result, kind string) string {
	if res.SessionID == "" {
		return profile.NewKey()
	}
	return res.SessionID + "/" + kind
}

func (r *Reporter) enqueue(ctx context.Context, calls []Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		for _, c := range calls {
			r.persist(ctx, c, errors.New("reporter closed"))
		}
		return
	}
	select {
	case r.queue <- calls:
	default:
		r.logger.Warn("report queue full, deferring to outbox", "calls", len(calls))
		for _, c := range calls {
			r.persist(ctx, c, errors.New("report queue full"))
		}
	}
}

func (r *Reporter) run(ctx context.Context) {
	defer close(r.done)
	for calls := range r.queue {
		for _, c := range calls {
			r.deliver(ctx, c)
		}
	}
}

func (r *Reporter) deliver(ctx context.Context, c Call) {
	callCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	err := c.Send(callCtx, r.api)
	if err == nil {
		r.logger.Debug("report delivered", "kind", c.Kind, "user", c.UserID)
		return
	}
	if !profile.Retryable(err) {
		r.logger.Error("report rejected", "kind", c.Kind, "user", c.UserID, "error", err)
		return
	}
	r.logger.Warn("could not deliver report", "kind", c.Kind, "user", c.UserID, "error", err)
	r.persist(context.WithoutCancel(ctx), c, err)
}

func (r *Reporter) persist(ctx context.Context, c Call, cause error) {
	if r.local == nil {
		return
	}
	payload, err := json.Marshal(c)
	if err != nil {
		r.logger.Error("could not encode report", "kind", c.Kind, "error", err)
		return
	}
	pending := storage.PendingReport{
		Kind:      c.Kind,
		UserID:    c.UserID,
		Key:       c.Key,
		Payload:   payload,
		LastError: cause.Error(),
	}
	if err := r.local.EnqueueReport(ctx, pending); err != nil {
		r.logger.Error("could not persist report", "kind", c.Kind, "error", err)
	}
}

// ResyncResult summarises a Resync pass.
type ResyncResult struct {
	Sent    int
	Failed  int
	Dropped int
}

// Resync replays persisted calls, oldest first. Delivered and rejected calls
// leave the outbox; retryable failures stay with their attempt count raised.
// The pass stops at the first failure that means the API is unreachable.
func (r *Reporter) Resync(ctx context.Context) (ResyncResult, error) {
	var out ResyncResult
	if r.local == nil {
		return out, nil
	}
	pending, err := r.local.PendingReports(ctx, r.opts.ResyncLimit)
	if err != nil {
		return out, err
	}

	for _, p := range pending {
		c, err := decodeCall(p.Payload)
		if err != nil {
			r.logger.Warn("dropping unreadable report", "id", p.ID, "error", err)
			out.Dropped++
			r.drop(ctx, p.ID)
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
		err = c.Send(callCtx, r.api)
		cancel()

		switch {
		case err == nil:
			out.Sent++
			r.drop(ctx, p.ID)
		case !profile.Retryable(err):
			r.logger.Warn("dropping rejected report", "id", p.ID, "kind", c.Kind, "error", err)
			out.Dropped++
			r.drop(ctx, p.ID)
		default:
			out.Failed++
			if merr := r.local.MarkReportFailed(ctx, p.ID, err); merr != nil {
				r.logger.Warn("could not update report", "id", p.ID, "error", merr)
			}
			if errors.Is(err, profile.ErrOffline) {
				r.logger.Info("profile API offline, resync postponed", "remaining", len(pending)-out.Sent-out.Dropped)
				return out, err
			}
		}
	}
	if out.Sent+out.Dropped+out.Failed > 0 {
		r.logger.Info("resync finished", "sent", out.Sent, "failed", out.Failed, "dropped", out.Dropped)
	}
	return out, nil
}

func (r *Reporter) drop(ctx context.Context, id int64) {
	if err := r.local.DeleteReport(ctx, id); err != nil {
		r.logger.Warn("could not delete report", "id", id, "error", err)
	}
}
