package storage

import (
	"context"
	"fmt"
	"time"
)

// PendingReport is a remote call that has not been delivered yet.
type PendingReport struct {
	ID        int64
	Kind      string
	UserID    string
	Key       string // Idempotency key, unique per logical call
	Payload   []byte // JSON request body
	Attempts  int
	LastError string
	CreatedAt time.Time
}

// EnqueueReport stores a report for later delivery.
// A report whose key is already queued is ignored.
func (s *Store) EnqueueReport(ctx context.Context, r PendingReport) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pending_reports (kind, user_id, idempotency_key, payload, attempts, last_error)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(idempotency_key) DO NOTHING`,
		r.Kind, r.UserID, r.Key, string(r.Payload), r.Attempts, r.LastError,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot enqueue report: %w", err)
	}
	return nil
}

// PendingReports returns up to limit queued reports, oldest first.
func (s *Store) PendingReports(ctx context.Context, limit int) ([]PendingReport, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, user_id, idempotency_key, payload, attempts, last_error, created_at
		 FROM pending_reports
		 ORDER BY id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query pending reports: %w", err)
	}
	defer rows.Close()

	var reports []PendingReport
	for rows.Next() {
		var r PendingReport
		var payload string
		var createdAt any
		if err := rows.Scan(&r.ID, &r.Kind, &r.UserID, &r.Key, &payload, &r.Attempts, &r.LastError, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan pending report: %w", err)
		}
		r.Payload = []byte(payload)
		r.CreatedAt = parseTime(createdAt)
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return reports, nil
}

// DeleteReport removes a delivered report.
func (s *Store) DeleteReport(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM pending_reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete report: %w", err)
	}
	return nil
}

// MarkReportFailed bumps the attempt counter and records the last error.
func (s *Store) MarkReportFailed(ctx context.Context, id int64, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE pending_reports SET attempts = attempts + 1, last_error = ? WHERE id = ?",
		msg, id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot update report: %w", err)
	}
	return nil
}

// CountPending returns the number of queued reports.
func (s *Store) CountPending(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pending_reports").Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: cannot count pending reports: %w", err)
	}
	return n, nil
}
