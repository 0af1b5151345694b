package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/edu-arcade/internal/profile"
)

// Kinds of remote calls made for a finished session.
const (
	KindScore       = "score"
	KindComplete    = "complete"
	KindProgress    = "progress"
	KindCollectible = "collectible"
)

// Call is one remote API call. It is the payload stored in the outbox.
type Call struct {
	Kind       string `json:"kind"`
	UserID     string `json:"user_id"`
	Key        string `json:"key"`
	LevelID    string `json:"level_id,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Points     int    `json:"points,omitempty"`
	Unlocked   int    `json:"unlocked,omitempty"`
}

// Send performs the call. The call's key travels as the idempotency key.
func (c Call) Send(ctx context.Context, api profile.API) error {
	ctx = profile.WithIdempotencyKey(ctx, c.Key)
	switch c.Kind {
	case KindScore:
		return api.SubmitScore(ctx, c.UserID, c.Points)
	case KindComplete:
		return api.MarkLevelComplete(ctx, c.UserID, c.LevelID)
	case KindProgress:
		return api.UpdateProgress(ctx, c.UserID, c.Difficulty, c.Unlocked)
	case KindCollectible:
		return api.AwardCollectible(ctx, c.UserID, c.LevelID)
	default:
		return fmt.Errorf("report: unknown call kind %q", c.Kind)
	}
}

func decodeCall(payload []byte) (Call, error) {
	var c Call
	if err := json.Unmarshal(payload, &c); err != nil {
		return Call{}, fmt.Errorf("report: cannot decode call: %w", err)
	}
	return c, nil
}
