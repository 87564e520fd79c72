package extractor

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/keymoments/internal/models"
)

// ErrSchema is returned when the structured response does not match the
// key moment schema. Malformed entries are never partially accepted.
var ErrSchema = errors.New("structured response does not match key moment schema")

// Extractor selects key moments from a transcript.
type Extractor interface {
	// Extract returns at most MaxMoments candidates, sorted by start, with
	// boundaries snapped to utterance boundaries where possible.
	Extract(ctx context.Context, t models.Transcript) ([]models.KeyMomentCandidate, error)
}
