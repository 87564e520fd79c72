// Package models holds the data types passed between pipeline stages.
package models

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Utterance is one time-bounded unit of transcribed speech. Times are seconds.
type Utterance struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is the ordered utterance list of one video.
type Transcript struct {
	VideoID    string
	Utterances []Utterance
}

// Duration returns the largest utterance end, the effective spoken length.
func (t Transcript) Duration() float64 {
	var max float64
	for _, u := range t.Utterances {
		if u.End > max {
			max = u.End
		}
	}
	return max
}

// KeyMomentCandidate is an untrusted segment proposed by the language model.
type KeyMomentCandidate struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Description string  `json:"description"`
}

// Duration returns End - Start.
func (c KeyMomentCandidate) Duration() float64 {
	return c.End - c.Start
}

// KeyMoment is a validated segment bound to a video and its rendered clip.
type KeyMoment struct {
	ID          string
	VideoID     string
	Start       float64
	End         float64
	Description string
	ClipPath    string
	CreatedAt   time.Time
}

// Duration returns End - Start.
func (m KeyMoment) Duration() float64 {
	return m.End - m.Start
}

// FormatSeconds renders a timestamp without trailing zeros: 10 -> "10", 100.2 -> "100.2".
func FormatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ClipPath returns the deterministic output path {workDir}/{videoID}_{start}-{end}.{ext}.
func ClipPath(workDir, videoID string, start, end float64, ext string) string {
	name := fmt.Sprintf("%s_%s-%s.%s", videoID, FormatSeconds(start), FormatSeconds(end), strings.TrimPrefix(ext, "."))
	return filepath.Join(workDir, name)
}

// ValidateVideoID rejects identifiers that cannot safely name files in the work dir.
func ValidateVideoID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("video id is empty")
	case strings.ContainsAny(id, `/\`):
		return fmt.Errorf("video id %q contains a path separator", id)
	case strings.Contains(id, ".."):
		return fmt.Errorf("video id %q contains '..'", id)
	}
	return nil
}
