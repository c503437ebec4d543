package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Sample represents a recorded sign sample stored in the database.
type Sample struct {
	ID          int64           `json:"id"`
	SignID      string          `json:"sign_id"`
	SampleIndex int             `json:"sample_index"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SampleRepository provides CRUD operations for sign samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Create appends samples for a sign in a single transaction.
// It also updates the sample count on the sign.
func (r *SampleRepository) Create(signID string, samples []json.RawMessage) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM sign_samples WHERE sign_id = ?`, signID).Scan(&existing); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO sign_samples (sign_id, sample_index, data) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, data := range samples {
		if _, err := stmt.Exec(signID, existing+i, string(data)); err != nil {
			return err
		}
	}

	result, err := tx.Exec(`UPDATE signs SET samples = ?, updated_at = ? WHERE id = ?`,
		existing+len(samples), time.Now(), signID)
	if err != nil {
		return err
	}
	if err := requireRow(result); err != nil {
		return err
	}

	return tx.Commit()
}

// GetBySignID retrieves all samples for a given sign.
func (r *SampleRepository) GetBySignID(signID string) ([]Sample, error) {
	rows, err := r.db.Query(
		`SELECT id, sign_id, sample_index, data, created_at
		 FROM sign_samples
		 WHERE sign_id = ?
		 ORDER BY sample_index`,
		signID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var data string
		if err := rows.Scan(&s.ID, &s.SignID, &s.SampleIndex, &data, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Data = json.RawMessage(data)
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// DeleteBySignID removes all samples for a given sign and resets its count.
func (r *SampleRepository) DeleteBySignID(signID string) error {
	if _, err := r.db.Exec(`DELETE FROM sign_samples WHERE sign_id = ?`, signID); err != nil {
		return err
	}
	_, err := r.db.Exec(`UPDATE signs SET samples = 0, updated_at = ? WHERE id = ?`, time.Now(), signID)
	return err
}
