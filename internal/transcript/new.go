package transcript

import (
	"github.com/nguyentantai21042004/keymoments/internal/logger"
	"github.com/nguyentantai21042004/keymoments/internal/store"
)

type implAcquirer struct {
	store    store.TranscriptStore
	provider Provider
	opts     Options
	logger   logger.Logger
}

// NewAcquirer creates an Acquirer backed by store, falling back to provider on a miss
func NewAcquirer(s store.TranscriptStore, provider Provider, opts Options, log logger.Logger) Acquirer {
	return &implAcquirer{
		store:    s,
		provider: provider,
		opts:     opts,
		logger:   log,
	}
}
