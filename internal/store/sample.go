package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Sample is a recorded motion path sample stored for retraining.
type Sample struct {
	ID          int64           `json:"id"`
	PatternID   string          `json:"pattern_id"`
	SampleIndex int             `json:"sample_index"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SampleRepository provides CRUD operations for pattern samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Create replaces the samples for a pattern in a single transaction and
// updates the sample count on the pattern row.
func (r *SampleRepository) Create(patternID string, samples []json.RawMessage) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM pattern_samples WHERE pattern_id = ?`, patternID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO pattern_samples (pattern_id, sample_index, data) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, data := range samples {
		if _, err := stmt.Exec(patternID, i, string(data)); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`UPDATE patterns SET samples = ?, updated_at = ? WHERE id = ?`,
		len(samples), time.Now(), patternID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetByPatternID retrieves all samples for a pattern in recording order.
func (r *SampleRepository) GetByPatternID(patternID string) ([]Sample, error) {
	rows, err := r.db.Query(
		`SELECT id, pattern_id, sample_index, data, created_at
		 FROM pattern_samples
		 WHERE pattern_id = ?
		 ORDER BY sample_index`,
		patternID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var data string
		if err := rows.Scan(&s.ID, &s.PatternID, &s.SampleIndex, &data, &s.CreatedAt); err != nil {
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

// DeleteByPatternID removes all samples for a pattern.
func (r *SampleRepository) DeleteByPatternID(patternID string) error {
	_, err := r.db.Exec(`DELETE FROM pattern_samples WHERE pattern_id = ?`, patternID)
	return err
}
