package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/keymoments/internal/models"
)

type keyMomentStore struct {
	db  *sql.DB
	now func() time.Time
}

// Create inserts a new row. There is no uniqueness on video id: re-running a
// job appends a fresh set of moments.
func (s *keyMomentStore) Create(ctx context.Context, m *models.KeyMoment) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	ts := formatTime(m.CreatedAt)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO key_moments (id, video_id, start_sec, end_sec, description, clip_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.VideoID, m.Start, m.End, m.Description, m.ClipPath, ts, ts)
	if err != nil {
		return fmt.Errorf("insert key moment: %w", err)
	}
	return nil
}

// ListByVideoID returns every stored moment for a video ordered by start time.
func (s *keyMomentStore) ListByVideoID(ctx context.Context, videoID string) ([]models.KeyMoment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, video_id, start_sec, end_sec, description, clip_path, created_at
		FROM key_moments
		WHERE video_id = ?
		ORDER BY start_sec ASC, created_at ASC
	`, videoID)
	if err != nil {
		return nil, fmt.Errorf("query key moments: %w", err)
	}
	defer rows.Close()

	var moments []models.KeyMoment
	for rows.Next() {
		var m models.KeyMoment
		var createdAt string
		if err := rows.Scan(&m.ID, &m.VideoID, &m.Start, &m.End, &m.Description, &m.ClipPath, &createdAt); err != nil {
			return nil, fmt.Errorf("scan key moment: %w", err)
		}
		m.CreatedAt = parseTime(createdAt)
		moments = append(moments, m)
	}
	return moments, rows.Err()
}
