package video

import (
	"github.com/nguyentantai21042004/keymoments/internal/logger"
	"github.com/nguyentantai21042004/keymoments/pkg/executor"
)

type implCache struct {
	dir        string
	extensions []string
}

// NewCache creates a filesystem cache rooted at dir
func NewCache(dir string, extensions []string) Cache {
	return &implCache{dir: dir, extensions: extensions}
}

type implAcquirer struct {
	cache      Cache
	executor   executor.Executor
	logger     logger.Logger
	downloader string
}

// NewAcquirer creates an Acquirer that shells out to downloader (yt-dlp compatible) on a miss
func NewAcquirer(cache Cache, downloader string, exec executor.Executor, log logger.Logger) Acquirer {
	return &implAcquirer{
		cache:      cache,
		executor:   exec,
		logger:     log,
		downloader: downloader,
	}
}
