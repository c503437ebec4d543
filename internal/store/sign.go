package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// SignMode is the landmark family a sign is recognised from.
type SignMode string

const (
	// SignModeHands is recognised from hand landmarks.
	SignModeHands SignMode = "sign"
	// SignModeLips is recognised from lip landmarks.
	SignModeLips SignMode = "lip"
)

// Sign represents a vocabulary entry stored in the database.
type Sign struct {
	ID        string
	Label     string
	Mode      SignMode
	Tolerance float64
	Samples   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SignRepository provides CRUD operations for signs.
type SignRepository struct {
	db *sql.DB
}

// Signs returns the sign repository for this store.
func (s *Store) Signs() *SignRepository {
	return &SignRepository{db: s.db}
}

const signColumns = `id, label, mode, tolerance, samples, created_at, updated_at`

func scanSign(row interface{ Scan(...any) error }) (*Sign, error) {
	g := &Sign{}
	var mode string
	if err := row.Scan(&g.ID, &g.Label, &mode, &g.Tolerance, &g.Samples, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.Mode = SignMode(mode)
	return g, nil
}

// Create inserts a new sign into the database.
func (r *SignRepository) Create(g *Sign) error {
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO signs (id, label, mode, tolerance, samples, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Label, string(g.Mode), g.Tolerance, g.Samples, g.CreatedAt, g.UpdatedAt,
	)
	return err
}

// GetByID retrieves a sign by its ID.
func (r *SignRepository) GetByID(id string) (*Sign, error) {
	g, err := scanSign(r.db.QueryRow(`SELECT `+signColumns+` FROM signs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return g, err
}

// GetByLabel retrieves a sign by its label and mode.
func (r *SignRepository) GetByLabel(label string, mode SignMode) (*Sign, error) {
	g, err := scanSign(r.db.QueryRow(`SELECT `+signColumns+` FROM signs WHERE label = ? AND mode = ?`, label, string(mode)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return g, err
}

// List retrieves all signs in creation order.
func (r *SignRepository) List() ([]*Sign, error) {
	rows, err := r.db.Query(`SELECT ` + signColumns + ` FROM signs ORDER BY created_at, label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signs []*Sign
	for rows.Next() {
		g, err := scanSign(rows)
		if err != nil {
			return nil, err
		}
		signs = append(signs, g)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return signs, nil
}

// Labels returns the distinct labels of all signs, oldest first.
func (r *SignRepository) Labels() ([]string, error) {
	signs, err := r.List()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var labels []string
	for _, g := range signs {
		if !seen[g.Label] {
			seen[g.Label] = true
			labels = append(labels, g.Label)
		}
	}
	return labels, nil
}

// Update updates an existing sign in the database.
func (r *SignRepository) Update(g *Sign) error {
	g.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE signs SET label = ?, mode = ?, tolerance = ?, samples = ?, updated_at = ?
		 WHERE id = ?`,
		g.Label, string(g.Mode), g.Tolerance, g.Samples, g.UpdatedAt, g.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Delete removes a sign and, by cascade, its samples and template.
func (r *SignRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM signs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
