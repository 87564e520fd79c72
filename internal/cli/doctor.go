package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/keymoments/internal/config"
	"github.com/nguyentantai21042004/keymoments/pkg/executor"
)

type check struct {
	Name   string
	OK     bool
	Detail string
}

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checks := runChecks(deps.Config, executor.New())
			if !printChecks(cmd.OutOrStdout(), checks) {
				return fmt.Errorf("some prerequisites are missing")
			}
			return nil
		},
	}
}

func runChecks(cfg *config.Config, exec executor.Executor) []check {
	var checks []check

	binary := func(name, path, hint string) {
		if resolved, err := exec.LookPath(path); err != nil {
			checks = append(checks, check{Name: name, Detail: "not found. " + hint})
		} else {
			checks = append(checks, check{Name: name, OK: true, Detail: resolved})
		}
	}
	secret := func(name, value, env string) {
		if value == "" {
			checks = append(checks, check{Name: name, Detail: "not set. Set " + env + " or add it to the config"})
		} else {
			checks = append(checks, check{Name: name, OK: true, Detail: "configured"})
		}
	}

	binary("yt-dlp", cfg.Video.Downloader, "Install with: pip install yt-dlp")
	binary("ffmpeg", cfg.FFmpeg.BinaryPath, "Install with: brew install ffmpeg")

	switch cfg.Transcription.Provider {
	case config.ProviderGladia:
		secret("Gladia API key", cfg.Transcription.Gladia.APIKey, "GLADIA_API_KEY")
	case config.ProviderWhisper:
		binary("whisper", cfg.Transcription.Whisper.BinaryPath, "Build whisper.cpp and set transcription.whisper.binary_path")
		if _, err := os.Stat(cfg.Transcription.Whisper.ModelPath); err != nil {
			checks = append(checks, check{Name: "Whisper model", Detail: fmt.Sprintf("%q not readable", cfg.Transcription.Whisper.ModelPath)})
		} else {
			checks = append(checks, check{Name: "Whisper model", OK: true, Detail: cfg.Transcription.Whisper.ModelPath})
		}
	}

	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		key := ""
		if len(cfg.LLM.Gemini.APIKeys) > 0 {
			key = cfg.LLM.Gemini.APIKeys[0]
		}
		secret("Gemini API key", key, "GEMINI_API_KEYS")
	case config.ProviderAnthropic:
		secret("Anthropic API key", cfg.LLM.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	}

	dbDir := filepath.Dir(cfg.Paths.Database)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		checks = append(checks, check{Name: "Database", Detail: fmt.Sprintf("cannot create %s: %v", dbDir, err)})
	} else {
		checks = append(checks, check{Name: "Database", OK: true, Detail: cfg.Paths.Database})
	}
	checks = append(checks, check{Name: "Work directory", OK: true, Detail: cfg.Paths.WorkDir})

	return checks
}

// printChecks reports whether every check passed.
func printChecks(w io.Writer, checks []check) bool {
	ok := true
	for _, c := range checks {
		mark := "ok"
		if !c.OK {
			mark = "!!"
			ok = false
		}
		fmt.Fprintf(w, "[%s] %-18s %s\n", mark, c.Name, c.Detail)
	}
	if ok {
		fmt.Fprintln(w, "\nAll prerequisites met.")
	} else {
		fmt.Fprintln(w, "\nSome prerequisites are missing.")
	}
	return ok
}
