package store

import (
	"database/sql"
	"errors"
	"time"
)

// Session records one client connection.
type Session struct {
	ID         string
	Client     string
	Platform   string
	RemoteAddr string
	Frames     int
	StartedAt  time.Time
	EndedAt    *time.Time
}

// SessionRepository stores connection sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session.
func (r *SessionRepository) Create(s *Session) error {
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, client, platform, remote_addr, started_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Client, s.Platform, s.RemoteAddr, s.StartedAt,
	)
	return err
}

// SetClient records the handshake details of a session.
func (r *SessionRepository) SetClient(id, client, platform string) error {
	result, err := r.db.Exec(`UPDATE sessions SET client = ?, platform = ? WHERE id = ?`, client, platform, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// End marks a session closed with its final frame count.
func (r *SessionRepository) End(id string, frames int) error {
	result, err := r.db.Exec(`UPDATE sessions SET ended_at = ?, frames = ? WHERE id = ?`, time.Now(), frames, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Get returns a session by ID.
func (r *SessionRepository) Get(id string) (*Session, error) {
	s := &Session{}
	var ended sql.NullTime
	err := r.db.QueryRow(
		`SELECT id, client, platform, remote_addr, frames, started_at, ended_at FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.Client, &s.Platform, &s.RemoteAddr, &s.Frames, &s.StartedAt, &ended)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if ended.Valid {
		s.EndedAt = &ended.Time
	}
	return s, nil
}
