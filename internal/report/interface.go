package report

import (
	"context"

	"github.com/nguyentantai21042004/keymoments/internal/models"
)

// Writer produces a human-readable document listing the key moments of a video.
type Writer interface {
	// Write returns the path of the generated document.
	Write(ctx context.Context, videoID string, moments []models.KeyMoment) (string, error)
}
