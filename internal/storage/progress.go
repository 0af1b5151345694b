package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetProgress returns the highest unlocked level ordinal stored for the user
// at the given difficulty. The boolean is false when nothing is stored yet.
func (s *Store) GetProgress(ctx context.Context, userID, difficulty string) (int, bool, error) {
	var unlocked int
	err := s.db.QueryRowContext(ctx,
		"SELECT unlocked FROM progress WHERE user_id = ? AND difficulty = ?",
		userID, difficulty,
	).Scan(&unlocked)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot query progress: %w", err)
	}
	return unlocked, true, nil
}

// SetProgress stores unlocked for the user at the given difficulty.
// The stored value never decreases: a lower value leaves the row unchanged.
func (s *Store) SetProgress(ctx context.Context, userID, difficulty string, unlocked int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress (user_id, difficulty, unlocked) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, difficulty) DO UPDATE SET
		   unlocked = MAX(unlocked, excluded.unlocked),
		   updated_at = CURRENT_TIMESTAMP`,
		userID, difficulty, unlocked,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save progress: %w", err)
	}
	return nil
}

// AllProgress returns the stored unlocked ordinal per difficulty for the user.
func (s *Store) AllProgress(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT difficulty, unlocked FROM progress WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query progress: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var diff string
		var unlocked int
		if err := rows.Scan(&diff, &unlocked); err != nil {
			return nil, fmt.Errorf("storage: cannot scan progress row: %w", err)
		}
		out[diff] = unlocked
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// AddCollectible records that the user earned the level's collectible.
// Adding the same collectible twice is a no-op.
func (s *Store) AddCollectible(ctx context.Context, userID, levelID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO collectibles (user_id, level_id) VALUES (?, ?)",
		userID, levelID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save collectible: %w", err)
	}
	return nil
}

// Collectibles lists the level IDs whose collectible the user has earned.
func (s *Store) Collectibles(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT level_id FROM collectibles WHERE user_id = ? ORDER BY level_id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query collectibles: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("storage: cannot scan collectible row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return ids, nil
}
