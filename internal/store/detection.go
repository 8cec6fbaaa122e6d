package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DefaultDetectionLimit caps history queries that do not set a limit.
const DefaultDetectionLimit = 100

// Detection is one entry of recognition history.
type Detection struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Handedness string    `json:"handedness"`
	Curls      string    `json:"curls"`
	AnchorX    float64   `json:"anchor_x"`
	AnchorY    float64   `json:"anchor_y"`
	Angle      float64   `json:"angle"`
	CreatedAt  time.Time `json:"created_at"`
}

// DetectionQuery filters history queries.
type DetectionQuery struct {
	Label string
	Since time.Time
	Limit int
}

// DetectionRepository records and queries recognition history.
type DetectionRepository struct {
	db *sql.DB
}

// Detections returns the detection repository for this store.
func (s *Store) Detections() *DetectionRepository {
	return &DetectionRepository{db: s.db}
}

// Create records a detection. An empty ID is filled with a new UUID and a zero
// CreatedAt with the current time.
func (r *DetectionRepository) Create(d *Detection) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO detections (id, label, handedness, curls, anchor_x, anchor_y, angle, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Label, d.Handedness, d.Curls, d.AnchorX, d.AnchorY, d.Angle, d.CreatedAt,
	)
	return err
}

// List returns detections newest first.
func (r *DetectionRepository) List(q DetectionQuery) ([]*Detection, error) {
	query := `SELECT id, label, handedness, curls, anchor_x, anchor_y, angle, created_at
		FROM detections WHERE 1 = 1`
	var args []any

	if q.Label != "" {
		query += ` AND label = ?`
		args = append(args, q.Label)
	}
	if !q.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, q.Since)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultDetectionLimit
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var detections []*Detection
	for rows.Next() {
		d := &Detection{}
		err := rows.Scan(&d.ID, &d.Label, &d.Handedness, &d.Curls, &d.AnchorX, &d.AnchorY, &d.Angle, &d.CreatedAt)
		if err != nil {
			return nil, err
		}
		detections = append(detections, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return detections, nil
}

// DeleteBefore removes detections older than t and reports how many were removed.
func (r *DetectionRepository) DeleteBefore(t time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM detections WHERE created_at < ?`, t)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
