package cli

import (
	"fmt"

	"github.com/nguyentantai21042004/keymoments/internal/config"
	"github.com/nguyentantai21042004/keymoments/internal/extractor"
	"github.com/nguyentantai21042004/keymoments/internal/llm"
	"github.com/nguyentantai21042004/keymoments/internal/logger"
	"github.com/nguyentantai21042004/keymoments/internal/pipeline"
	"github.com/nguyentantai21042004/keymoments/internal/renderer"
	"github.com/nguyentantai21042004/keymoments/internal/report"
	"github.com/nguyentantai21042004/keymoments/internal/store"
	"github.com/nguyentantai21042004/keymoments/internal/transcript"
	"github.com/nguyentantai21042004/keymoments/internal/video"
	"github.com/nguyentantai21042004/keymoments/pkg/executor"
)

// buildPipeline assembles every component from the configuration.
func buildPipeline(cfg *config.Config, db *store.DB, exec executor.Executor, log logger.Logger) (pipeline.Pipeline, error) {
	provider, err := newTranscriber(cfg, exec, log)
	if err != nil {
		return nil, err
	}
	client, err := newLLMClient(cfg, log)
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Videos: video.NewAcquirer(
			video.NewCache(cfg.Paths.WorkDir, cfg.Video.Extensions),
			cfg.Video.Downloader, exec, log),
		Transcripts: transcript.NewAcquirer(db.Transcripts(), provider, transcript.Options{
			Diarization: cfg.DiarizationEnabled(),
			MaxRetries:  cfg.TranscriptionRetries(),
		}, log),
		Extractor: extractor.New(client, extractor.OptionsFromConfig(cfg), log),
		Moments:   db.KeyMoments(),
		Renderer:  renderer.New(cfg.FFmpeg, exec, log),
	}
	if cfg.ReportEnabled() {
		deps.Report = report.New(cfg.Paths.WorkDir, log)
	}

	return pipeline.New(deps, pipeline.OptionsFromConfig(cfg), log), nil
}

func newTranscriber(cfg *config.Config, exec executor.Executor, log logger.Logger) (transcript.Provider, error) {
	switch cfg.Transcription.Provider {
	case config.ProviderGladia:
		return transcript.NewGladia(cfg.Transcription.Gladia.BaseURL, cfg.Transcription.Gladia.APIKey,
			cfg.Transcription.PollInterval, log), nil
	case config.ProviderWhisper:
		return transcript.NewWhisper(cfg.Transcription.Whisper, cfg.FFmpeg.BinaryPath, cfg.Paths.WorkDir, exec, log), nil
	default:
		return nil, fmt.Errorf("unknown transcription provider %q", cfg.Transcription.Provider)
	}
}

// newLLMClient wraps the provider in the configured retry budget.
func newLLMClient(cfg *config.Config, log logger.Logger) (llm.Client, error) {
	var client llm.Client
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		client = llm.NewGemini(cfg.LLM.Gemini.APIKeys, cfg.LLM.AnalysisModel, cfg.LLM.Gemini.BaseURL, cfg.LLM.MaxTokens, log)
	case config.ProviderAnthropic:
		client = llm.NewAnthropic(cfg.LLM.Anthropic.APIKey, cfg.LLM.AnalysisModel, cfg.LLM.Anthropic.BaseURL, cfg.LLM.MaxTokens, log)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
	return llm.WithRetry(client, llm.RetryPolicy{MaxRetries: cfg.LLMRetries()}, log), nil
}
