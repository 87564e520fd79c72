package video

import (
	"context"
	"errors"
)

// ErrDownloadFailed is returned when the downloader exits cleanly but leaves no file.
var ErrDownloadFailed = errors.New("download produced no video file")

// Cache maps a video id to a media file in the work directory.
type Cache interface {
	// Lookup returns the cached file for videoID, trying each configured extension in order.
	Lookup(videoID string) (string, bool)
	// Path is the location a video with the given extension is cached at.
	Path(videoID, ext string) string
	Dir() string
}

// Acquirer returns a local path for a video, downloading it on a cache miss.
type Acquirer interface {
	EnsureVideo(ctx context.Context, videoID string) (string, error)
}
