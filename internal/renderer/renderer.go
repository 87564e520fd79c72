package renderer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/keymoments/internal/models"
)

var errEmptyOutput = errors.New("output file is missing or empty")

func (r *implRenderer) Render(ctx context.Context, videoPath string, start, end float64, outputPath string) error {
	if end <= start {
		return &RenderError{Path: outputPath, Err: fmt.Errorf("invalid range %s-%s", models.FormatSeconds(start), models.FormatSeconds(end))}
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return &RenderError{Path: outputPath, Err: fmt.Errorf("create output dir: %w", err)}
	}

	args := r.args(videoPath, start, end, outputPath)
	r.logger.Info(ctx, "Rendering clip %s-%s -> %s", models.FormatSeconds(start), models.FormatSeconds(end), outputPath)
	r.logger.Debug(ctx, "%s %s", r.cfg.BinaryPath, strings.Join(args, " "))

	res, err := r.executor.Execute(ctx, r.cfg.BinaryPath, args...)
	diagnostics := strings.TrimSpace(res.Stderr)
	if err != nil {
		r.removePartial(ctx, outputPath)
		return &RenderError{Path: outputPath, Diagnostics: diagnostics, Err: err}
	}

	if info, statErr := os.Stat(outputPath); statErr != nil || info.Size() == 0 {
		r.removePartial(ctx, outputPath)
		return &RenderError{Path: outputPath, Diagnostics: diagnostics, Err: errEmptyOutput}
	}

	if diagnostics != "" {
		r.logger.Warn(ctx, "ffmpeg warnings for %s: %s", outputPath, diagnostics)
	}
	r.logger.Info(ctx, "Clip rendered: %s", outputPath)
	return nil
}

// args re-encodes instead of stream copying so cuts are frame accurate.
func (r *implRenderer) args(videoPath string, start, end float64, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "warning",
		"-y",
		"-ss", models.FormatSeconds(start),
		"-i", videoPath,
		"-t", formatDuration(end - start),
		"-c:v", r.cfg.VideoCodec,
		"-preset", r.cfg.Preset,
		"-c:a", r.cfg.AudioCodec,
		"-avoid_negative_ts", "make_zero",
		"-fflags", "+genpts",
		outputPath,
	}
}

// formatDuration rounds to milliseconds so 279.6-100.2 prints as 179.4.
func formatDuration(d float64) string {
	return models.FormatSeconds(math.Round(d*1000) / 1000)
}

// removePartial deletes whatever the transcoder left behind. Failures are logged only.
func (r *implRenderer) removePartial(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		r.logger.Warn(ctx, "Failed to remove partial clip %s: %v", path, err)
		return
	}
	r.logger.Debug(ctx, "Removed partial clip: %s", path)
}
