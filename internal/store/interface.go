package store

import (
	"context"

	"github.com/nguyentantai21042004/keymoments/internal/models"
)

// TranscriptStore caches transcripts keyed by video id.
type TranscriptStore interface {
	// FindByVideoID returns nil, nil when no transcript is stored.
	FindByVideoID(ctx context.Context, videoID string) (*models.Transcript, error)
	// Save stores the transcript, fully replacing any previous record for the video.
	Save(ctx context.Context, t models.Transcript) error
}

// KeyMomentStore is an append-only log of extracted key moments.
type KeyMomentStore interface {
	Create(ctx context.Context, m *models.KeyMoment) error
	ListByVideoID(ctx context.Context, videoID string) ([]models.KeyMoment, error)
}
