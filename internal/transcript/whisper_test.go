package transcript

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/keymoments/internal/config"
	"github.com/nguyentantai21042004/keymoments/internal/logger"
	"github.com/nguyentantai21042004/keymoments/pkg/executor"
)

const whisperJSON = `{
  "result": {"language": "en"},
  "transcription": [
    {"timestamps": {"from": "00:00:00,000", "to": "00:00:02,500"}, "offsets": {"from": 0, "to": 2500}, "text": " Hello there."},
    {"timestamps": {"from": "00:00:02,500", "to": "00:00:02,500"}, "offsets": {"from": 2500, "to": 2500}, "text": " "},
    {"timestamps": {"from": "00:00:02,500", "to": "00:00:06,120"}, "offsets": {"from": 2500, "to": 6120}, "text": " General Kenobi."}
  ]
}`

// whisperExecutor writes the JSON file whisper.cpp would produce for
// --output-file, resolved against the working directory it was run in.
type whisperExecutor struct {
	commands []string
	dirs     []string
	args     [][]string
}

func (w *whisperExecutor) Execute(ctx context.Context, name string, args ...string) (executor.Result, error) {
	return w.ExecuteInDir(ctx, "", name, args...)
}

func (w *whisperExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (executor.Result, error) {
	w.commands = append(w.commands, name)
	w.dirs = append(w.dirs, dir)
	w.args = append(w.args, args)
	for i, a := range args {
		if a == "--output-file" {
			if err := os.WriteFile(filepath.Join(dir, args[i+1]+".json"), []byte(whisperJSON), 0644); err != nil {
				return executor.Result{}, err
			}
		}
		if a == "-y" && i+1 < len(args) {
			if err := os.WriteFile(args[i+1], []byte("wav"), 0644); err != nil {
				return executor.Result{}, err
			}
		}
	}
	return executor.Result{}, nil
}

func (w *whisperExecutor) LookPath(name string) (string, error) { return name, nil }

func TestWhisperTranscribe(t *testing.T) {
	dir := t.TempDir()
	exec := &whisperExecutor{}
	cfg := config.WhisperConfig{ModelPath: "models/ggml-base.bin", BinaryPath: "whisper-cli", Language: "en", Threads: 4}
	p := NewWhisper(cfg, "ffmpeg", dir, exec, logger.Nop())

	got, err := p.Transcribe(context.Background(), Source{VideoID: "abc123", LocalPath: "tmp/abc123.mp4"}, Options{Diarization: true})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if strings.Join(exec.commands, ",") != "ffmpeg,whisper-cli" {
		t.Fatalf("commands = %v", exec.commands)
	}
	if exec.dirs[0] != "" || exec.dirs[1] != dir {
		t.Errorf("working dirs = %q, want whisper run in %q", exec.dirs, dir)
	}
	whisperArgs := strings.Join(exec.args[1], " ")
	if !strings.Contains(whisperArgs, "-f abc123_temp.wav") || !strings.Contains(whisperArgs, "--output-file abc123_temp") {
		t.Errorf("whisper args = %s, want paths relative to the work dir", whisperArgs)
	}
	if m := exec.args[1][1]; !filepath.IsAbs(m) {
		t.Errorf("model path = %q, want absolute", m)
	}
	if len(got) != 2 {
		t.Fatalf("got %d utterances, want 2 (blank segment dropped): %+v", len(got), got)
	}
	if got[0].Text != "Hello there." || got[0].Start != 0 || got[0].End != 2.5 {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Start != 2.5 || got[1].End != 6.12 {
		t.Errorf("got[1] = %+v", got[1])
	}

	// Temp audio and JSON are removed.
	leftovers, _ := filepath.Glob(filepath.Join(dir, "*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestWhisperNeedsLocalPath(t *testing.T) {
	p := NewWhisper(config.WhisperConfig{}, "ffmpeg", t.TempDir(), &whisperExecutor{}, logger.Nop())
	if _, err := p.Transcribe(context.Background(), Source{VideoID: "abc123"}, Options{}); err == nil {
		t.Error("Transcribe() without LocalPath should fail")
	}
}

func TestParseWhisperJSONInvalid(t *testing.T) {
	if _, err := parseWhisperJSON([]byte("{")); err == nil {
		t.Error("parseWhisperJSON() should fail on truncated input")
	}
}
