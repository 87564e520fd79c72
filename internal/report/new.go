package report

import (
	"github.com/nguyentantai21042004/keymoments/internal/logger"
)

type implWriter struct {
	dir    string
	logger logger.Logger
}

// New creates a Writer that saves DOCX files under dir
func New(dir string, log logger.Logger) Writer {
	return &implWriter{
		dir:    dir,
		logger: log,
	}
}
