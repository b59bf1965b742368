package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// Row statuses. A row moves Draft -> Submitting -> Submitted, or to
// Failed when submission does not verify.
const (
	StatusDraft      = "Draft"
	StatusSubmitting = "Submitting"
	StatusSubmitted  = "Submitted"
	StatusFailed     = "Failed"
)

// Entry is one persisted timesheet row. Date is ISO (YYYY-MM-DD).
type Entry struct {
	ID              int64
	ProjectCode     string
	Date            string
	Hours           float64
	TaskDescription string
	Tool            string
	DetailCode      string
	Status          string
	ErrorMessage    string
}

// SaveEntry inserts a row and returns its id. Empty status defaults to
// Draft.
func (s *Store) SaveEntry(e Entry) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	status := e.Status
	if status == "" {
		status = StatusDraft
	}
	res, err := s.db.Exec(`
		INSERT INTO timesheet (project_code, date, hours, task_description, tool, detail_code, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ProjectCode, e.Date, e.Hours, e.TaskDescription, nullIfEmpty(e.Tool), nullIfEmpty(e.DetailCode), status, nowStamp())
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}
	return res.LastInsertId()
}

// Entries returns rows, optionally filtered to the given statuses,
// oldest first.
func (s *Store) Entries(statuses ...string) ([]Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	query := `
		SELECT id, project_code, date, hours, task_description,
		       COALESCE(tool, ''), COALESCE(detail_code, ''), status, COALESCE(error_message, '')
		FROM timesheet`
	var args []any
	if len(statuses) > 0 {
		placeholders := strings.Repeat("?,", len(statuses))
		query += " WHERE status IN (" + placeholders[:len(placeholders)-1] + ")"
		for _, st := range statuses {
			args = append(args, st)
		}
	}
	query += " ORDER BY date, id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ProjectCode, &e.Date, &e.Hours, &e.TaskDescription,
			&e.Tool, &e.DetailCode, &e.Status, &e.ErrorMessage); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkSubmitting flips a row into the in-flight state and records when
// submission started, for later stuck-row recovery.
func (s *Store) MarkSubmitting(id int64) error {
	return s.updateStatus(id, `
		UPDATE timesheet SET status = ?, error_message = NULL, submission_started_at = ?
		WHERE id = ?
	`, StatusSubmitting, nowStamp(), id)
}

// MarkSubmitted records a verified submission.
func (s *Store) MarkSubmitted(id int64) error {
	return s.updateStatus(id, `
		UPDATE timesheet SET status = ?, error_message = NULL, submitted_at = ?, submission_started_at = NULL
		WHERE id = ?
	`, StatusSubmitted, nowStamp(), id)
}

// MarkFailed records the failure reason and clears the in-flight stamp.
func (s *Store) MarkFailed(id int64, message string) error {
	return s.updateStatus(id, `
		UPDATE timesheet SET status = ?, error_message = ?, submission_started_at = NULL
		WHERE id = ?
	`, StatusFailed, message, id)
}

func (s *Store) updateStatus(id int64, query string, args ...any) error {
	if err := s.ready(); err != nil {
		return err
	}
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update entry %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entry %d not found", id)
	}
	return nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return sql.NullString{}
	}
	return v
}
