package transcript

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/keymoments/internal/models"
)

// EnsureTranscript never calls the provider when a stored transcript exists,
// even if the provider would now answer differently.
func (a *implAcquirer) EnsureTranscript(ctx context.Context, src Source) (models.Transcript, error) {
	cached, err := a.store.FindByVideoID(ctx, src.VideoID)
	if err != nil {
		return models.Transcript{}, fmt.Errorf("lookup transcript: %w", err)
	}
	if cached != nil {
		a.logger.Info(ctx, "Transcript found in store for %s (%d utterances)", src.VideoID, len(cached.Utterances))
		return *cached, nil
	}

	a.logger.Info(ctx, "Transcribing %s with %s", src.VideoID, a.provider.Name())
	utterances, err := a.provider.Transcribe(ctx, src, a.opts)
	if err != nil {
		return models.Transcript{}, fmt.Errorf("%s transcribe: %w", a.provider.Name(), err)
	}
	if utterances == nil {
		utterances = []models.Utterance{}
	}
	if len(utterances) == 0 {
		a.logger.Warn(ctx, "Transcription of %s returned no utterances", src.VideoID)
	}

	t := models.Transcript{VideoID: src.VideoID, Utterances: utterances}
	if err := a.store.Save(ctx, t); err != nil {
		return models.Transcript{}, fmt.Errorf("save transcript: %w", err)
	}

	a.logger.Info(ctx, "Transcript stored for %s (%d utterances)", src.VideoID, len(utterances))
	return t, nil
}
