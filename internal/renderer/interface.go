package renderer

import (
	"context"
	"fmt"
	"strings"
)

// Renderer cuts a time range out of a source video into its own file.
type Renderer interface {
	// Render re-encodes [start, end) of videoPath into outputPath. A missing
	// or empty output is a failure even when the transcoder exits 0.
	Render(ctx context.Context, videoPath string, start, end float64, outputPath string) error
}

// RenderError carries the transcoder diagnostics of a failed clip.
type RenderError struct {
	Path        string
	Diagnostics string
	Err         error
}

// Error appends Diagnostics unless the wrapped error already carries them.
func (e *RenderError) Error() string {
	if e.Diagnostics == "" || strings.Contains(e.Err.Error(), e.Diagnostics) {
		return fmt.Sprintf("render %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("render %s: %v\n%s", e.Path, e.Err, e.Diagnostics)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
