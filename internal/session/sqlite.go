// ABOUTME: SQLite implementation of the session Store using modernc.org/sqlite
// ABOUTME: Persists the single session row with automatic schema creation

package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// sessionRowID pins the session table to a single row. The console holds at
// most one login at a time; replacing it is an upsert against this row.
const sessionRowID = 1

// SQLiteStore implements Store using a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the session database at the given path.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "session")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	// WAL keeps reads cheap while a login or clear is mid-write
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("session store opened", "path", path)
	return s, nil
}

// createSchema creates the session table if it doesn't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS active_session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL,
			display_name TEXT NOT NULL,
			grants TEXT NOT NULL,
			saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// Save replaces any prior session. The three fields travel in one statement
// so a crash mid-login can never leave a token without its grants.
func (s *SQLiteStore) Save(sess Session) error {
	grants, err := json.Marshal(sess.Grants)
	if err != nil {
		return fmt.Errorf("encoding grants: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO active_session (id, token, display_name, grants, saved_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			display_name = excluded.display_name,
			grants = excluded.grants,
			saved_at = excluded.saved_at
	`, sessionRowID, sess.Token, sess.DisplayName, string(grants))
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	s.logger.Info("session saved", "display_name", sess.DisplayName, "grants", len(sess.Grants))
	return nil
}

// Clear removes the persisted session. Idempotent.
func (s *SQLiteStore) Clear() error {
	res, err := s.db.Exec("DELETE FROM active_session WHERE id = ?", sessionRowID)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Info("session cleared")
	}
	return nil
}

// Current returns the persisted session, or ErrNoSession.
func (s *SQLiteStore) Current() (Session, error) {
	var sess Session
	var rawGrants string

	err := s.db.QueryRow(`
		SELECT token, display_name, grants FROM active_session WHERE id = ?
	`, sessionRowID).Scan(&sess.Token, &sess.DisplayName, &rawGrants)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("reading session: %w", err)
	}

	if err := json.Unmarshal([]byte(rawGrants), &sess.Grants); err != nil {
		// Corrupt grant data degrades to zero grants rather than failing
		// the read; the token is still valid for logout.
		s.logger.Warn("persisted grants failed to parse, treating as empty", "error", err)
		sess.Grants = nil
	}
	return sess, nil
}

// Token returns the bearer token, or "" when no session exists.
func (s *SQLiteStore) Token() string {
	sess, err := s.Current()
	if err != nil {
		return ""
	}
	return sess.Token
}

// DisplayName returns the display name, or "" when no session exists.
func (s *SQLiteStore) DisplayName() string {
	sess, err := s.Current()
	if err != nil {
		return ""
	}
	return sess.DisplayName
}

// Grants returns the persisted grant list, nil when absent or unparseable.
func (s *SQLiteStore) Grants() []Grant {
	sess, err := s.Current()
	if err != nil {
		return nil
	}
	return sess.Grants
}

// Active reports whether a bearer token is persisted.
func (s *SQLiteStore) Active() bool {
	return s.Token() != ""
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
