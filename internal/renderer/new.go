package renderer

import (
	"github.com/nguyentantai21042004/keymoments/internal/config"
	"github.com/nguyentantai21042004/keymoments/internal/logger"
	"github.com/nguyentantai21042004/keymoments/pkg/executor"
)

type implRenderer struct {
	cfg      config.FFmpegConfig
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Renderer that shells out to ffmpeg
func New(cfg config.FFmpegConfig, exec executor.Executor, log logger.Logger) Renderer {
	return &implRenderer{
		cfg:      cfg,
		executor: exec,
		logger:   log,
	}
}
