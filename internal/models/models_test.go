package models

import "testing"

func TestClipPath(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		ext        string
		want       string
	}{
		{"whole seconds", 10, 190, "mp4", "tmp/abc123_10-190.mp4"},
		{"fractional seconds", 100.2, 279.6, "mp4", "tmp/abc123_100.2-279.6.mp4"},
		{"dotted extension", 200, 380, ".mp4", "tmp/abc123_200-380.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClipPath("tmp", "abc123", tt.start, tt.end, tt.ext)
			if got != tt.want {
				t.Errorf("ClipPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateVideoID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"abc123", false},
		{"-dQw4w9WgXcQ", false},
		{"", true},
		{"   ", true},
		{"../etc", true},
		{"a/b", true},
		{`a\b`, true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateVideoID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVideoID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestTranscriptDuration(t *testing.T) {
	tr := Transcript{Utterances: []Utterance{
		{Text: "a", Start: 0, End: 5},
		{Text: "b", Start: 4, End: 12.5},
		{Text: "c", Start: 6, End: 9},
	}}
	if got := tr.Duration(); got != 12.5 {
		t.Errorf("Duration() = %v, want 12.5", got)
	}
	if got := (Transcript{}).Duration(); got != 0 {
		t.Errorf("empty Duration() = %v, want 0", got)
	}
}
