package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session lifetimes. Stay-logged-in stretches a session from a workday
// to a month.
const (
	SessionTTL         = 8 * time.Hour
	SessionTTLExtended = 30 * 24 * time.Hour
)

// ErrNoCredentials is returned when no credentials have been saved.
var ErrNoCredentials = errors.New("no saved credentials")

// SaveCredentials stores the single credential row, replacing any
// previous one.
func (s *Store) SaveCredentials(email, password string) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		INSERT INTO credentials (id, email, password) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email, password = excluded.password
	`, email, password)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Credentials returns the saved email and password.
func (s *Store) Credentials() (email, password string, err error) {
	if err := s.ready(); err != nil {
		return "", "", err
	}
	row := s.db.QueryRow(`SELECT email, password FROM credentials WHERE id = 1`)
	if err := row.Scan(&email, &password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrNoCredentials
		}
		return "", "", err
	}
	return email, password, nil
}

// ClearCredentials removes the saved credential row and all sessions.
func (s *Store) ClearCredentials() error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM credentials`); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM sessions`)
	return err
}

// CreateSession mints a session token for email. stayLoggedIn selects
// the extended lifetime.
func (s *Store) CreateSession(email string, stayLoggedIn bool) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	ttl := SessionTTL
	if stayLoggedIn {
		ttl = SessionTTLExtended
	}
	token := uuid.NewString()
	now := time.Now()
	_, err := s.db.Exec(`
		INSERT INTO sessions (token, email, created_at, expires_at) VALUES (?, ?, ?, ?)
	`, token, email, stamp(now), stamp(now.Add(ttl)))
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// ValidateSession returns the email bound to a live token. Expired
// tokens are deleted and report invalid.
func (s *Store) ValidateSession(token string) (string, bool, error) {
	if err := s.ready(); err != nil {
		return "", false, err
	}
	var email, expiresAt string
	row := s.db.QueryRow(`SELECT email, expires_at FROM sessions WHERE token = ?`, token)
	if err := row.Scan(&email, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	exp, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil || !exp.After(time.Now()) {
		_, _ = s.db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
		return "", false, nil
	}
	return email, true, nil
}

// ClearSessions drops every session token.
func (s *Store) ClearSessions() error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM sessions`)
	return err
}
