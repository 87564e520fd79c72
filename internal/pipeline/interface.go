package pipeline

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/keymoments/internal/models"
)

// Stage names used in StageError.
const (
	StageVideo      = "acquire video"
	StageTranscript = "acquire transcript"
	StageExtract    = "extract key moments"
	StagePersist    = "persist key moments"
	StageRender     = "render clips"
)

// StageError attaches the video id and failing stage to an error so the
// job can be retried by hand.
type StageError struct {
	VideoID string
	Stage   string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("video %s: %s: %v", e.VideoID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result describes what a run produced.
type Result struct {
	VideoID   string
	VideoPath string
	Moments   []models.KeyMoment
	// Clips lists the clips that rendered successfully, in moment order.
	Clips      []string
	ReportPath string
}

// Pipeline runs the key moment job for one video.
type Pipeline interface {
	// Run acquires, extracts, persists and renders. In best-effort render
	// mode a partial Result is returned alongside the joined render errors.
	Run(ctx context.Context, videoID string) (*Result, error)
}
