package config

import (
	"fmt"
	"time"
)

type Config struct {
	Paths         PathsConfig         `yaml:"paths"`
	Video         VideoConfig         `yaml:"video"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	LLM           LLMConfig           `yaml:"llm"`
	Extractor     ExtractorConfig     `yaml:"extractor"`
	FFmpeg        FFmpegConfig        `yaml:"ffmpeg"`
	Render        RenderConfig        `yaml:"render"`
	Report        ReportConfig        `yaml:"report"`
	Logging       LoggingConfig       `yaml:"logging"`
}

type PathsConfig struct {
	WorkDir  string `yaml:"work_dir"`
	Database string `yaml:"database"`
}

type VideoConfig struct {
	Downloader  string   `yaml:"downloader"`
	URLTemplate string   `yaml:"url_template"`
	Extensions  []string `yaml:"extensions"`
}

type TranscriptionConfig struct {
	Provider     string        `yaml:"provider"`
	Diarization  *bool         `yaml:"diarization"`
	MaxRetries   *int          `yaml:"max_retries"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Gladia       GladiaConfig  `yaml:"gladia"`
	Whisper      WhisperConfig `yaml:"whisper"`
}

type GladiaConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

type LLMConfig struct {
	Provider       string          `yaml:"provider"`
	AnalysisModel  string          `yaml:"analysis_model"`
	StructureModel string          `yaml:"structure_model"`
	MaxRetries     *int            `yaml:"max_retries"`
	MaxToolSteps   int             `yaml:"max_tool_steps"`
	MaxTokens      int             `yaml:"max_tokens"`
	Gemini         GeminiConfig    `yaml:"gemini"`
	Anthropic      AnthropicConfig `yaml:"anthropic"`
}

type GeminiConfig struct {
	APIKeys []string `yaml:"api_keys"`
	BaseURL string   `yaml:"base_url"`
}

type AnthropicConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type ExtractorConfig struct {
	TargetDuration float64  `yaml:"target_duration"`
	Tolerance      *float64 `yaml:"tolerance"`
	SnapEpsilon    float64  `yaml:"snap_epsilon"`
	MaxMoments     int      `yaml:"max_moments"`
	ValidationTool string   `yaml:"validation_tool"`
	HostKeywords   []string `yaml:"host_keywords"`
}

type FFmpegConfig struct {
	BinaryPath    string `yaml:"binary_path"`
	VideoCodec    string `yaml:"video_codec"`
	AudioCodec    string `yaml:"audio_codec"`
	Preset        string `yaml:"preset"`
	ClipExtension string `yaml:"clip_extension"`
}

type RenderConfig struct {
	MaxConcurrent int  `yaml:"max_concurrent"`
	BestEffort    bool `yaml:"best_effort"`
}

type ReportConfig struct {
	Enabled *bool `yaml:"enabled"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	ProviderGladia  = "gladia"
	ProviderWhisper = "whisper"

	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"

	ToolDuration  = "duration"
	ToolCandidate = "candidate"
)

// DefaultHostKeywords flags descriptions centred on the host rather than the guest.
var DefaultHostKeywords = []string{
	"host", "presenter", "interviewer", "introduction", "intro",
	"animateur", "présentateur", "presentateur", "intervieweur",
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// DiarizationEnabled defaults to true: guest-only selection relies on speaker turns.
func (c *Config) DiarizationEnabled() bool {
	return c.Transcription.Diarization == nil || *c.Transcription.Diarization
}

// TranscriptionRetries is the transcription budget; an explicit 0 means a single attempt.
func (c *Config) TranscriptionRetries() int {
	if c.Transcription.MaxRetries == nil {
		return 1000
	}
	return *c.Transcription.MaxRetries
}

// LLMRetries is the retry budget of each model call; an explicit 0 means a single attempt.
func (c *Config) LLMRetries() int {
	if c.LLM.MaxRetries == nil {
		return 10
	}
	return *c.LLM.MaxRetries
}

// ExtractorTolerance is the accepted deviation from the target duration, in seconds.
func (c *Config) ExtractorTolerance() float64 {
	if c.Extractor.Tolerance == nil {
		return 45
	}
	return *c.Extractor.Tolerance
}

// ReportEnabled reports whether the DOCX report should be written.
func (c *Config) ReportEnabled() bool {
	return c.Report.Enabled == nil || *c.Report.Enabled
}

func (c *Config) Validate() error {
	if c.Paths.WorkDir == "" {
		c.Paths.WorkDir = "tmp"
	}
	if c.Paths.Database == "" {
		c.Paths.Database = "data/keymoments.sqlite"
	}

	if c.Video.Downloader == "" {
		c.Video.Downloader = "yt-dlp"
	}
	if c.Video.URLTemplate == "" {
		c.Video.URLTemplate = "https://www.youtube.com/watch?v=%s"
	}
	if len(c.Video.Extensions) == 0 {
		c.Video.Extensions = []string{"mp4", "mkv", "webm", "mov"}
	}

	switch c.Transcription.Provider {
	case "":
		c.Transcription.Provider = ProviderGladia
	case ProviderGladia:
	case ProviderWhisper:
		if c.Transcription.Whisper.ModelPath == "" {
			return fmt.Errorf("transcription.whisper.model_path is required")
		}
	default:
		return fmt.Errorf("transcription.provider %q is not supported", c.Transcription.Provider)
	}
	if c.Transcription.MaxRetries == nil {
		c.Transcription.MaxRetries = intPtr(1000)
	}
	if *c.Transcription.MaxRetries < 0 {
		return fmt.Errorf("transcription.max_retries must not be negative")
	}
	if c.Transcription.PollInterval == 0 {
		c.Transcription.PollInterval = 5 * time.Second
	}
	if c.Transcription.Gladia.BaseURL == "" {
		c.Transcription.Gladia.BaseURL = "https://api.gladia.io"
	}
	if c.Transcription.Whisper.BinaryPath == "" {
		c.Transcription.Whisper.BinaryPath = "whisper-cli"
	}
	if c.Transcription.Whisper.Language == "" {
		c.Transcription.Whisper.Language = "auto"
	}
	if c.Transcription.Whisper.Threads == 0 {
		c.Transcription.Whisper.Threads = 8
	}

	switch c.LLM.Provider {
	case "":
		c.LLM.Provider = ProviderGemini
	case ProviderGemini, ProviderAnthropic:
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if c.LLM.AnalysisModel == "" {
		if c.LLM.Provider == ProviderAnthropic {
			c.LLM.AnalysisModel = "claude-sonnet-4-5"
		} else {
			c.LLM.AnalysisModel = "gemini-2.5-flash"
		}
	}
	if c.LLM.StructureModel == "" {
		c.LLM.StructureModel = c.LLM.AnalysisModel
	}
	if c.LLM.MaxRetries == nil {
		c.LLM.MaxRetries = intPtr(10)
	}
	if *c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative")
	}
	if c.LLM.MaxToolSteps == 0 {
		c.LLM.MaxToolSteps = 8
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 8192
	}

	if c.Extractor.TargetDuration == 0 {
		c.Extractor.TargetDuration = 180
	}
	if c.Extractor.Tolerance == nil {
		c.Extractor.Tolerance = float64Ptr(45)
	}
	if *c.Extractor.Tolerance < 0 || *c.Extractor.Tolerance >= c.Extractor.TargetDuration {
		return fmt.Errorf("extractor.tolerance must be between 0 and target_duration")
	}
	if c.Extractor.SnapEpsilon == 0 {
		c.Extractor.SnapEpsilon = 0.5
	}
	if c.Extractor.MaxMoments == 0 {
		c.Extractor.MaxMoments = 3
	}
	if c.Extractor.MaxMoments < 0 {
		return fmt.Errorf("extractor.max_moments must be positive")
	}
	switch c.Extractor.ValidationTool {
	case "":
		c.Extractor.ValidationTool = ToolDuration
	case ToolDuration, ToolCandidate:
	default:
		return fmt.Errorf("extractor.validation_tool %q is not supported", c.Extractor.ValidationTool)
	}
	if len(c.Extractor.HostKeywords) == 0 {
		c.Extractor.HostKeywords = append([]string(nil), DefaultHostKeywords...)
	}

	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.VideoCodec == "" {
		c.FFmpeg.VideoCodec = "libx264"
	}
	if c.FFmpeg.AudioCodec == "" {
		c.FFmpeg.AudioCodec = "aac"
	}
	if c.FFmpeg.Preset == "" {
		c.FFmpeg.Preset = "medium"
	}
	if c.FFmpeg.ClipExtension == "" {
		c.FFmpeg.ClipExtension = "mp4"
	}

	if c.Render.MaxConcurrent <= 0 {
		c.Render.MaxConcurrent = 1
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}

func intPtr(v int) *int { return &v }

func float64Ptr(v float64) *float64 { return &v }
