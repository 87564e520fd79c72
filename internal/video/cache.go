package video

import (
	"os"
	"path/filepath"
	"strings"
)

// Lookup only checks existence; a present file is trusted as-is.
func (c *implCache) Lookup(videoID string) (string, bool) {
	for _, ext := range c.extensions {
		path := c.Path(videoID, ext)
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

func (c *implCache) Dir() string {
	return c.dir
}

func (c *implCache) Path(videoID, ext string) string {
	return filepath.Join(c.dir, videoID+"."+strings.TrimPrefix(ext, "."))
}
