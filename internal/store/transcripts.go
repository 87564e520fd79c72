package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/keymoments/internal/models"
)

type transcriptStore struct {
	db  *sql.DB
	now func() time.Time
}

func (s *transcriptStore) FindByVideoID(ctx context.Context, videoID string) (*models.Transcript, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT utterances
		FROM transcriptions
		WHERE video_id = ?
	`, videoID)

	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transcription: %w", err)
	}

	utterances := []models.Utterance{}
	if err := json.Unmarshal([]byte(raw), &utterances); err != nil {
		return nil, fmt.Errorf("decode utterances for %s: %w", videoID, err)
	}

	return &models.Transcript{VideoID: videoID, Utterances: utterances}, nil
}

func (s *transcriptStore) Save(ctx context.Context, t models.Transcript) error {
	utterances := t.Utterances
	if utterances == nil {
		utterances = []models.Utterance{}
	}
	raw, err := json.Marshal(utterances)
	if err != nil {
		return fmt.Errorf("encode utterances: %w", err)
	}

	now := formatTime(s.now())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transcriptions (id, video_id, utterances, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			utterances = excluded.utterances,
			updated_at = excluded.updated_at
	`, uuid.NewString(), t.VideoID, string(raw), now, now)
	if err != nil {
		return fmt.Errorf("insert transcription: %w", err)
	}
	return nil
}
