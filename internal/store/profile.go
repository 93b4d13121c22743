package store

import (
	"database/sql"
	"errors"
	"time"
)

// Profile is a named skin color calibration stored in the database. The
// bounds are HSV scalars in OpenCV's ranges (H 0-179, S and V 0-255).
type Profile struct {
	ID        string
	Name      string
	LowerH    float64
	LowerS    float64
	LowerV    float64
	UpperH    float64
	UpperS    float64
	UpperV    float64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileRepository provides CRUD operations for calibration profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

// Create inserts a new profile.
func (r *ProfileRepository) Create(p *Profile) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO profiles (id, name, lower_h, lower_s, lower_v, upper_h, upper_s, upper_v, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.LowerH, p.LowerS, p.LowerV, p.UpperH, p.UpperS, p.UpperV,
		boolToInt(p.Active), p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, lower_h, lower_s, lower_v, upper_h, upper_s, upper_v, active, created_at, updated_at
		 FROM profiles WHERE id = ?`,
		id,
	))
}

// GetActive retrieves the active profile. Returns nil, nil when no profile
// is active.
func (r *ProfileRepository) GetActive() (*Profile, error) {
	p, err := r.scanOne(r.db.QueryRow(
		`SELECT id, name, lower_h, lower_s, lower_v, upper_h, upper_s, upper_v, active, created_at, updated_at
		 FROM profiles WHERE active = 1`,
	))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// List retrieves all profiles, newest first.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(
		`SELECT id, name, lower_h, lower_s, lower_v, upper_h, upper_s, upper_v, active, created_at, updated_at
		 FROM profiles ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p := &Profile{}
		var active int
		if err := rows.Scan(&p.ID, &p.Name, &p.LowerH, &p.LowerS, &p.LowerV,
			&p.UpperH, &p.UpperS, &p.UpperV, &active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Active = active != 0
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Update updates an existing profile.
func (r *ProfileRepository) Update(p *Profile) error {
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE profiles SET name = ?, lower_h = ?, lower_s = ?, lower_v = ?,
		 upper_h = ?, upper_s = ?, upper_v = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.LowerH, p.LowerS, p.LowerV, p.UpperH, p.UpperS, p.UpperV,
		boolToInt(p.Active), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive marks the given profile as active and deactivates the rest.
func (r *ProfileRepository) SetActive(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE profiles SET active = 0 WHERE active = 1`); err != nil {
		return err
	}

	result, err := tx.Exec(`UPDATE profiles SET active = 1, updated_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// Delete removes a profile by its ID.
func (r *ProfileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) scanOne(row *sql.Row) (*Profile, error) {
	p := &Profile{}
	var active int
	err := row.Scan(&p.ID, &p.Name, &p.LowerH, &p.LowerS, &p.LowerV,
		&p.UpperH, &p.UpperS, &p.UpperV, &active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Active = active != 0
	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
