package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/keymoments/internal/config"
	"github.com/nguyentantai21042004/keymoments/internal/logger"
	"github.com/nguyentantai21042004/keymoments/internal/models"
	"github.com/nguyentantai21042004/keymoments/pkg/executor"
)

type whisperProvider struct {
	cfg      config.WhisperConfig
	ffmpeg   string
	tempDir  string
	executor executor.Executor
	logger   logger.Logger
}

// NewWhisper creates a Provider that runs whisper.cpp on the locally cached video.
func NewWhisper(cfg config.WhisperConfig, ffmpegPath, tempDir string, exec executor.Executor, log logger.Logger) Provider {
	return &whisperProvider{
		cfg:      cfg,
		ffmpeg:   ffmpegPath,
		tempDir:  tempDir,
		executor: exec,
		logger:   log,
	}
}

func (w *whisperProvider) Name() string { return "whisper" }

// Transcribe has no retry loop: a local run is deterministic, so MaxRetries is ignored.
func (w *whisperProvider) Transcribe(ctx context.Context, src Source, opts Options) ([]models.Utterance, error) {
	if src.LocalPath == "" {
		return nil, fmt.Errorf("whisper needs a local video path for %s", src.VideoID)
	}
	if opts.Diarization {
		w.logger.Debug(ctx, "whisper.cpp has no diarization, transcribing without speaker turns")
	}

	if err := os.MkdirAll(w.tempDir, 0755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	audioPath, err := w.extractAudio(ctx, src)
	if err != nil {
		return nil, err
	}
	defer w.cleanupTempFile(ctx, audioPath)

	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	// whisper.cpp runs inside tempDir so any side files it writes land there;
	// the model path must then be absolute.
	modelPath, err := filepath.Abs(w.cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("resolve whisper model path: %w", err)
	}

	// -oj: JSON output with millisecond offsets per segment
	// -ml 0 / -mc 0: no max segment length or context limit, better for long videos
	// -bo 5: best of 5 for accuracy
	args := []string{
		"-m", modelPath,
		"-f", filepath.Base(audioPath),
		"-oj",
		"-l", w.cfg.Language,
		"-t", strconv.Itoa(w.cfg.Threads),
		"-ml", "0",
		"-mc", "0",
		"-bo", "5",
		"--output-file", filepath.Base(outputPrefix),
	}
	if w.cfg.Prompt != "" {
		args = append(args, "--prompt", w.cfg.Prompt)
	}

	w.logger.Info(ctx, "Starting transcription with %d threads: %s", w.cfg.Threads, audioPath)
	if _, err := w.executor.ExecuteInDir(ctx, w.tempDir, w.cfg.BinaryPath, args...); err != nil {
		return nil, fmt.Errorf("whisper transcribe: %w", err)
	}

	jsonPath := outputPrefix + ".json"
	defer w.cleanupTempFile(ctx, jsonPath)

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}
	return parseWhisperJSON(data)
}

// extractAudio converts the video to 16kHz mono WAV, the format whisper.cpp expects
func (w *whisperProvider) extractAudio(ctx context.Context, src Source) (string, error) {
	audioPath := filepath.Join(w.tempDir, src.VideoID+"_temp.wav")

	w.logger.Info(ctx, "Extracting audio: %s", src.LocalPath)

	args := []string{
		"-i", src.LocalPath,
		"-vn",          // No video
		"-ar", "16000", // 16kHz sample rate
		"-ac", "1", // Mono
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		audioPath,
	}

	if _, err := w.executor.Execute(ctx, w.ffmpeg, args...); err != nil {
		w.cleanupTempFile(ctx, audioPath)
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return audioPath, nil
}

// cleanupTempFile removes a temporary file, logs warning if fails
func (w *whisperProvider) cleanupTempFile(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		w.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", path, err)
	}
}

type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseWhisperJSON(data []byte) ([]models.Utterance, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	utterances := make([]models.Utterance, 0, len(out.Transcription))
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" || seg.Offsets.To <= seg.Offsets.From {
			continue
		}
		utterances = append(utterances, models.Utterance{
			Text:  text,
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
		})
	}
	return utterances, nil
}
