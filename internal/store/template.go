package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Template is the trained reference sequence for one sign.
type Template struct {
	SignID    string
	Label     string
	Mode      SignMode
	Frames    [][]float64
	Tolerance float64
	TrainedAt time.Time
}

// TemplateRepository stores trained templates.
type TemplateRepository struct {
	db *sql.DB
}

// Templates returns the template repository for this store.
func (s *Store) Templates() *TemplateRepository {
	return &TemplateRepository{db: s.db}
}

// Save inserts or replaces the template for a sign.
func (r *TemplateRepository) Save(t *Template) error {
	frames, err := json.Marshal(t.Frames)
	if err != nil {
		return fmt.Errorf("encode frames: %w", err)
	}
	t.TrainedAt = time.Now()
	_, err = r.db.Exec(
		`INSERT INTO sign_templates (sign_id, frames, tolerance, trained_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(sign_id) DO UPDATE SET frames = excluded.frames, tolerance = excluded.tolerance, trained_at = excluded.trained_at`,
		t.SignID, string(frames), t.Tolerance, t.TrainedAt,
	)
	return err
}

// Get returns the template for a sign.
func (r *TemplateRepository) Get(signID string) (*Template, error) {
	t, err := scanTemplate(r.db.QueryRow(
		`SELECT t.sign_id, s.label, s.mode, t.frames, t.tolerance, t.trained_at
		 FROM sign_templates t JOIN signs s ON s.id = t.sign_id
		 WHERE t.sign_id = ?`, signID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// ListByMode returns every trained template for mode.
func (r *TemplateRepository) ListByMode(mode SignMode) ([]*Template, error) {
	rows, err := r.db.Query(
		`SELECT t.sign_id, s.label, s.mode, t.frames, t.tolerance, t.trained_at
		 FROM sign_templates t JOIN signs s ON s.id = t.sign_id
		 WHERE s.mode = ?
		 ORDER BY s.created_at`, string(mode))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func scanTemplate(row interface{ Scan(...any) error }) (*Template, error) {
	t := &Template{}
	var mode, frames string
	if err := row.Scan(&t.SignID, &t.Label, &mode, &frames, &t.Tolerance, &t.TrainedAt); err != nil {
		return nil, err
	}
	t.Mode = SignMode(mode)
	if err := json.Unmarshal([]byte(frames), &t.Frames); err != nil {
		return nil, fmt.Errorf("decode frames for %s: %w", t.SignID, err)
	}
	return t, nil
}
