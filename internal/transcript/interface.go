package transcript

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/keymoments/internal/models"
)

// ErrTranscriptionFailed is returned when the provider reports a terminal failure.
var ErrTranscriptionFailed = errors.New("transcription failed")

// Source identifies the media to transcribe. Remote providers use URL,
// local ones use LocalPath.
type Source struct {
	VideoID   string
	URL       string
	LocalPath string
}

// Options are passed through to the provider on every call.
type Options struct {
	Diarization bool
	// MaxRetries bounds polling and transient-error retries.
	MaxRetries int
}

// Provider produces utterances for a source. A nil slice with a nil error
// is a valid, empty transcript.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, src Source, opts Options) ([]models.Utterance, error)
}

// Acquirer returns the transcript for a video, consulting the store first.
type Acquirer interface {
	EnsureTranscript(ctx context.Context, src Source) (models.Transcript, error)
}
