package store

import (
	"fmt"
	"time"
)

// StuckThreshold is how long a row may sit in Submitting before
// recovery treats it as dead.
const StuckThreshold = 30 * time.Minute

// RecoverStuck fails every row stuck in Submitting longer than
// olderThan and returns how many were recovered. A crashed run leaves
// such rows behind.
func (s *Store) RecoverStuck(olderThan time.Duration) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	cutoff := stamp(time.Now().Add(-olderThan))
	res, err := s.db.Exec(`
		UPDATE timesheet
		SET status = ?, error_message = 'Submission interrupted', submission_started_at = NULL
		WHERE status = ? AND submission_started_at IS NOT NULL AND submission_started_at < ?
	`, StatusFailed, StatusSubmitting, cutoff)
	if err != nil {
		return 0, fmt.Errorf("recover stuck rows: %w", err)
	}
	return res.RowsAffected()
}

// ResetFailed returns failed rows to Draft so a new batch picks them
// up.
func (s *Store) ResetFailed() (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	res, err := s.db.Exec(`
		UPDATE timesheet SET status = ?, error_message = NULL WHERE status = ?
	`, StatusDraft, StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("reset failed rows: %w", err)
	}
	return res.RowsAffected()
}

// HasInProgress reports whether any row is currently Submitting.
func (s *Store) HasInProgress() (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM timesheet WHERE status = ?`, StatusSubmitting).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
