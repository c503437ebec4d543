package store

import (
	"database/sql"
	"time"
)

// Translation is a flushed sentence.
type Translation struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Kind       string    `json:"kind"`
	Mode       string    `json:"mode"`
	CreatedAt  time.Time `json:"created_at"`
}

// TranslationRepository stores translation history.
type TranslationRepository struct {
	db *sql.DB
}

// Translations returns the translation repository for this store.
func (s *Store) Translations() *TranslationRepository {
	return &TranslationRepository{db: s.db}
}

// Create inserts a translation.
func (r *TranslationRepository) Create(t *Translation) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	var session any
	if t.SessionID != "" {
		session = t.SessionID
	}
	_, err := r.db.Exec(
		`INSERT INTO translations (id, session_id, text, confidence, kind, mode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, session, t.Text, t.Confidence, t.Kind, t.Mode, t.CreatedAt,
	)
	return err
}

// Recent returns up to limit translations, newest first. A non-empty
// sessionID restricts the result to that session.
func (r *TranslationRepository) Recent(sessionID string, limit int) ([]*Translation, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, COALESCE(session_id, ''), text, confidence, kind, mode, created_at FROM translations`
	args := []any{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Translation
	for rows.Next() {
		t := &Translation{}
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Text, &t.Confidence, &t.Kind, &t.Mode, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Count returns the number of stored translations.
func (r *TranslationRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM translations`).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}
