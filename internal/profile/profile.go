// Package profile talks to the remote score and profile API.
package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrOffline is returned when no remote API is configured or reachable.
var ErrOffline = errors.New("profile: offline")

// Profile is the remote view of a user.
type Profile struct {
	UserID       string         `json:"user_id"`
	TotalScore   int            `json:"total_score"`
	Completed    []string       `json:"completed_levels"`
	Collectibles []string       `json:"collectibles"`
	Progress     map[string]int `json:"progress"` // Unlocked ordinal per difficulty
}

// API is the remote score and profile service.
// Every call may fail; callers treat failures as non-fatal.
type API interface {
	SubmitScore(ctx context.Context, userID string, points int) error
	MarkLevelComplete(ctx context.Context, userID, levelID string) error
	AwardCollectible(ctx context.Context, userID, levelID string) error
	FetchProfile(ctx context.Context, userID string) (Profile, error)
	UpdateProgress(ctx context.Context, userID, difficulty string, unlocked int) error
}

type keyCtx struct{}

// WithIdempotencyKey attaches the key that identifies a logical call.
// Retrying a call with the same key must not apply it twice on the server.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, keyCtx{}, key)
}

// IdempotencyKey returns the key attached to ctx, if any.
func IdempotencyKey(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(keyCtx{}).(string)
	return key, ok && key != ""
}

// NewKey returns a fresh idempotency key.
func NewKey() string {
	return uuid.NewString()
}

// Offline is an API that is never reachable.
type Offline struct{}

func (Offline) SubmitScore(context.Context, string, int) error { return ErrOffline }

func (Offline) MarkLevelComplete(context.Context, string, string) error { return ErrOffline }

func (Offline) AwardCollectible(context.Context, string, string) error { return ErrOffline }

func (Offline) FetchProfile(context.Context, string) (Profile, error) { return Profile{}, ErrOffline }

func (Offline) UpdateProgress(context.Context, string, string, int) error { return ErrOffline }
