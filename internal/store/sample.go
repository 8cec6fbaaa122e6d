package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/detector"
)

// Sample is a stored hand with the label it is known to show.
type Sample struct {
	ID        string                 `json:"id"`
	Label     string                 `json:"label"`
	Hand      detector.HandLandmarks `json:"hand"`
	Source    string                 `json:"source,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// SampleRepository provides CRUD operations for labelled samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

const sampleColumns = `id, label, handedness, points, source, created_at`

// Create inserts a sample. An empty ID is filled with a new UUID.
func (r *SampleRepository) Create(s *Sample) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.CreatedAt = time.Now()
	canonicalHandedness(&s.Hand)

	points, err := json.Marshal(s.Hand.Points)
	if err != nil {
		return fmt.Errorf("encode points: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO samples (`+sampleColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.Label, s.Hand.Handedness, string(points), s.Source, s.CreatedAt,
	)
	return err
}

// CreateBatch inserts many samples in a single transaction.
func (r *SampleRepository) CreateBatch(samples []*Sample) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO samples (` + sampleColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, s := range samples {
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		s.CreatedAt = now
		canonicalHandedness(&s.Hand)

		points, err := json.Marshal(s.Hand.Points)
		if err != nil {
			return fmt.Errorf("encode points: %w", err)
		}
		if _, err := stmt.Exec(s.ID, s.Label, s.Hand.Handedness, string(points), s.Source, s.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a sample by its ID.
func (r *SampleRepository) GetByID(id string) (*Sample, error) {
	row := r.db.QueryRow(`SELECT `+sampleColumns+` FROM samples WHERE id = ?`, id)

	s, err := scanSample(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// List retrieves samples, oldest first. An empty label lists every sample.
func (r *SampleRepository) List(label string) ([]*Sample, error) {
	query := `SELECT ` + sampleColumns + ` FROM samples`
	var args []any
	if label != "" {
		query += ` WHERE label = ?`
		args = append(args, label)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*Sample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// Count returns how many samples carry each label.
func (r *SampleRepository) Count() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT label, COUNT(*) FROM samples GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}
	return counts, rows.Err()
}

// Delete removes a sample by its ID.
func (r *SampleRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM samples WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

// canonicalHandedness rewrites case variants such as "right" to the tracker's
// spelling. Unknown labels are left for the table constraint to reject.
func canonicalHandedness(h *detector.HandLandmarks) {
	isRight, ok := h.IsRight()
	switch {
	case !ok:
	case isRight:
		h.Handedness = detector.HandRight
	default:
		h.Handedness = detector.HandLeft
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSample(row rowScanner) (*Sample, error) {
	s := &Sample{}
	var points string

	err := row.Scan(&s.ID, &s.Label, &s.Hand.Handedness, &points, &s.Source, &s.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(points), &s.Hand.Points); err != nil {
		return nil, fmt.Errorf("decode sample %s points: %w", s.ID, err)
	}
	s.Hand.Score = 1
	return s, nil
}
