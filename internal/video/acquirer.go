package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/keymoments/internal/models"
)

// EnsureVideo returns the cached file when present; otherwise it downloads
// the video into the cache directory. There is no retry here.
func (a *implAcquirer) EnsureVideo(ctx context.Context, videoID string) (string, error) {
	if err := models.ValidateVideoID(videoID); err != nil {
		return "", err
	}

	if path, ok := a.cache.Lookup(videoID); ok {
		a.logger.Info(ctx, "Video already cached, skipping download: %s", path)
		return path, nil
	}

	if err := os.MkdirAll(a.cache.Dir(), 0755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}

	// -o: output template, the cache looks files up by the same {id}.{ext} shape
	// --merge-output-format: prefer a single mp4 container when streams are merged
	// --: stop option parsing, ids may begin with '-'
	args := []string{
		"-o", filepath.Join(a.cache.Dir(), "%(id)s.%(ext)s"),
		"--merge-output-format", "mp4",
		"--no-progress",
		"--", videoID,
	}

	a.logger.Info(ctx, "Downloading video %s with %s", videoID, a.downloader)
	if _, err := a.executor.Execute(ctx, a.downloader, args...); err != nil {
		return "", fmt.Errorf("download %s: %w", videoID, err)
	}

	path, ok := a.cache.Lookup(videoID)
	if !ok {
		return "", fmt.Errorf("download %s: %w", videoID, ErrDownloadFailed)
	}

	a.logger.Info(ctx, "Video downloaded: %s", path)
	return path, nil
}
