package pipeline

import (
	"github.com/nguyentantai21042004/keymoments/internal/config"
	"github.com/nguyentantai21042004/keymoments/internal/extractor"
	"github.com/nguyentantai21042004/keymoments/internal/logger"
	"github.com/nguyentantai21042004/keymoments/internal/renderer"
	"github.com/nguyentantai21042004/keymoments/internal/report"
	"github.com/nguyentantai21042004/keymoments/internal/store"
	"github.com/nguyentantai21042004/keymoments/internal/transcript"
	"github.com/nguyentantai21042004/keymoments/internal/video"
)

// Deps are the collaborators of a run. Report may be nil to skip the document.
type Deps struct {
	Videos      video.Acquirer
	Transcripts transcript.Acquirer
	Extractor   extractor.Extractor
	Moments     store.KeyMomentStore
	Renderer    renderer.Renderer
	Report      report.Writer
}

type Options struct {
	WorkDir       string
	URLTemplate   string
	ClipExtension string
	MaxConcurrent int
	BestEffort    bool
}

// OptionsFromConfig maps the validated configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		WorkDir:       cfg.Paths.WorkDir,
		URLTemplate:   cfg.Video.URLTemplate,
		ClipExtension: cfg.FFmpeg.ClipExtension,
		MaxConcurrent: cfg.Render.MaxConcurrent,
		BestEffort:    cfg.Render.BestEffort,
	}
}

type implPipeline struct {
	deps   Deps
	opts   Options
	logger logger.Logger
}

// New creates a Pipeline from its collaborators
func New(deps Deps, opts Options, log logger.Logger) Pipeline {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	return &implPipeline{
		deps:   deps,
		opts:   opts,
		logger: log,
	}
}
