package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envFiles are loaded in order; variables already set in the process win.
var envFiles = []string{".env", "keymoments.env"}

// Load reads the YAML file at path, layers secrets from .env files and the
// environment on top, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	loadEnvFiles()
	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default plus
// environment overrides when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		loadEnvFiles()
		cfg := &Config{}
		applyEnvOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return Load(path)
}

func loadEnvFiles() {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			// godotenv.Load never overrides variables that are already set
			_ = godotenv.Load(f)
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEYS"); v != "" {
		cfg.LLM.Gemini.APIKeys = splitKeys(v)
	} else if v := os.Getenv("GEMINI_API_KEY"); v != "" && len(cfg.LLM.Gemini.APIKeys) == 0 {
		cfg.LLM.Gemini.APIKeys = []string{v}
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.LLM.Anthropic.APIKey = v
	}
	if v := os.Getenv("GLADIA_API_KEY"); v != "" {
		cfg.Transcription.Gladia.APIKey = v
	}
	if v := os.Getenv("KEYMOMENTS_WORK_DIR"); v != "" {
		cfg.Paths.WorkDir = v
	}
	if v := os.Getenv("KEYMOMENTS_DATABASE"); v != "" {
		cfg.Paths.Database = v
	}
	if v := os.Getenv("KEYMOMENTS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func splitKeys(v string) []string {
	var keys []string
	for _, k := range strings.Split(v, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
