package store

import (
	"database/sql"
	"errors"
	"time"
)

// Pattern is a motion pattern definition stored in the database. The
// template path lives in the pattern_paths table.
type Pattern struct {
	ID        string
	Name      string
	Tolerance float64
	Samples   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PathPoint is one stored sample of a pattern's template path.
type PathPoint struct {
	X           float64
	Y           float64
	TimestampMS int64
}

// PatternRepository provides CRUD operations for motion patterns.
type PatternRepository struct {
	db *sql.DB
}

// Patterns returns the pattern repository for this store.
func (s *Store) Patterns() *PatternRepository {
	return &PatternRepository{db: s.db}
}

// Create inserts a new pattern.
func (r *PatternRepository) Create(p *Pattern) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO patterns (id, name, tolerance, samples, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Tolerance, p.Samples, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a pattern by its ID.
func (r *PatternRepository) GetByID(id string) (*Pattern, error) {
	p := &Pattern{}
	err := r.db.QueryRow(
		`SELECT id, name, tolerance, samples, created_at, updated_at
		 FROM patterns WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.Name, &p.Tolerance, &p.Samples, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetByName retrieves a pattern by its name.
func (r *PatternRepository) GetByName(name string) (*Pattern, error) {
	p := &Pattern{}
	err := r.db.QueryRow(
		`SELECT id, name, tolerance, samples, created_at, updated_at
		 FROM patterns WHERE name = ?`,
		name,
	).Scan(&p.ID, &p.Name, &p.Tolerance, &p.Samples, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List retrieves all patterns, newest first.
func (r *PatternRepository) List() ([]*Pattern, error) {
	rows, err := r.db.Query(
		`SELECT id, name, tolerance, samples, created_at, updated_at
		 FROM patterns ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patterns []*Pattern
	for rows.Next() {
		p := &Pattern{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Tolerance, &p.Samples, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// Update updates an existing pattern.
func (r *PatternRepository) Update(p *Pattern) error {
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE patterns SET name = ?, tolerance = ?, samples = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Tolerance, p.Samples, p.UpdatedAt, p.ID,
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

// Delete removes a pattern by its ID. The path and samples cascade.
func (r *PatternRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM patterns WHERE id = ?`, id)
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

// SavePath replaces the pattern's template path in a single transaction.
func (r *PatternRepository) SavePath(patternID string, path []PathPoint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM pattern_paths WHERE pattern_id = ?`, patternID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO pattern_paths (pattern_id, sequence, x, y, timestamp_ms) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range path {
		if _, err := stmt.Exec(patternID, i, p.X, p.Y, p.TimestampMS); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetPath retrieves the pattern's template path in sequence order.
func (r *PatternRepository) GetPath(patternID string) ([]PathPoint, error) {
	rows, err := r.db.Query(
		`SELECT x, y, timestamp_ms FROM pattern_paths
		 WHERE pattern_id = ? ORDER BY sequence`,
		patternID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var path []PathPoint
	for rows.Next() {
		var p PathPoint
		if err := rows.Scan(&p.X, &p.Y, &p.TimestampMS); err != nil {
			return nil, err
		}
		path = append(path, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return path, nil
}
