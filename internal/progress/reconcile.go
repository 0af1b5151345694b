package progress

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/edu-arcade/internal/config"
	"github.com/vovakirdan/edu-arcade/internal/profile"
)

// Remote is the part of the profile API the reconciler needs.
type Remote interface {
	FetchProfile(ctx context.Context, userID string) (profile.Profile, error)
	UpdateProgress(ctx context.Context, userID, difficulty string, unlocked int) error
}

// Reconciler merges the local store with the remote profile.
// Local state is a cache of the remote truth; both sides resolve by max.
type Reconciler struct {
	store  *Store
	remote Remote
	logger *log.Logger
}

// NewReconciler creates a reconciler. A nil logger uses log.Default().
func NewReconciler(store *Store, remote Remote, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.Default()
	}
	return &Reconciler{store: store, remote: remote, logger: logger}
}

// Sync pulls the remote profile, raises local progress to it, and pushes
// any difficulty where the local value is ahead.
// It returns the merged unlocked ordinal per difficulty. When the profile
// cannot be fetched the local values are returned with the error.
func (r *Reconciler) Sync(ctx context.Context, userID string) (map[config.Difficulty]int, error) {
	p, err := r.remote.FetchProfile(ctx, userID)
	if err != nil {
		return r.store.Snapshot(ctx, userID), fmt.Errorf("progress: cannot fetch remote profile: %w", err)
	}

	merged := make(map[config.Difficulty]int, len(config.Difficulties))
	var pushErr error
	for _, d := range config.Difficulties {
		remote := p.Progress[d.String()]
		local := r.store.Record(ctx, userID, d, remote)
		merged[d] = local
		if local > remote {
			if err := r.remote.UpdateProgress(ctx, userID, d.String(), local); err != nil {
				r.logger.Warn("could not push progress", "user", userID, "difficulty", d, "error", err)
				pushErr = fmt.Errorf("progress: cannot push %s progress: %w", d, err)
			}
		}
	}
	r.logger.Debug("progress reconciled", "user", userID, "progress", merged)
	return merged, pushErr
}
