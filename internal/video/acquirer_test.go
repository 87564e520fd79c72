package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/keymoments/internal/logger"
	"github.com/nguyentantai21042004/keymoments/pkg/executor"
)

// fakeExecutor records invocations and optionally writes the file yt-dlp would produce.
type fakeExecutor struct {
	calls [][]string
	write string
	err   error
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (executor.Result, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return executor.Result{Stderr: "ERROR: unavailable"}, f.err
	}
	if f.write != "" {
		if err := os.WriteFile(f.write, []byte("video"), 0644); err != nil {
			return executor.Result{}, err
		}
	}
	return executor.Result{}, nil
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (executor.Result, error) {
	return f.Execute(ctx, name, args...)
}

func (f *fakeExecutor) LookPath(name string) (string, error) {
	return name, nil
}

func TestEnsureVideoCacheHit(t *testing.T) {
	dir := t.TempDir()
	cached := filepath.Join(dir, "abc123.mp4")
	if err := os.WriteFile(cached, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	exec := &fakeExecutor{}
	a := NewAcquirer(NewCache(dir, []string{"mp4", "mkv"}), "yt-dlp", exec, logger.Nop())

	got, err := a.EnsureVideo(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("EnsureVideo() error = %v", err)
	}
	if got != cached {
		t.Errorf("EnsureVideo() = %q, want %q", got, cached)
	}
	if len(exec.calls) != 0 {
		t.Errorf("downloader invoked %d times on cache hit", len(exec.calls))
	}
}

func TestEnsureVideoAlternateExtension(t *testing.T) {
	dir := t.TempDir()
	cached := filepath.Join(dir, "abc123.webm")
	if err := os.WriteFile(cached, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	exec := &fakeExecutor{}
	a := NewAcquirer(NewCache(dir, []string{"mp4", "webm"}), "yt-dlp", exec, logger.Nop())

	got, err := a.EnsureVideo(context.Background(), "abc123")
	if err != nil || got != cached {
		t.Fatalf("EnsureVideo() = %q, %v; want %q", got, err, cached)
	}
	if len(exec.calls) != 0 {
		t.Error("downloader should not run")
	}
}

func TestEnsureVideoDownloads(t *testing.T) {
	// The work dir does not exist yet and must be created.
	dir := filepath.Join(t.TempDir(), "tmp")
	exec := &fakeExecutor{write: filepath.Join(dir, "abc123.mp4")}
	a := NewAcquirer(NewCache(dir, []string{"mp4"}), "yt-dlp", exec, logger.Nop())

	got, err := a.EnsureVideo(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("EnsureVideo() error = %v", err)
	}
	if got != filepath.Join(dir, "abc123.mp4") {
		t.Errorf("EnsureVideo() = %q", got)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("downloader invoked %d times, want 1", len(exec.calls))
	}
	call := strings.Join(exec.calls[0], " ")
	if !strings.HasPrefix(call, "yt-dlp ") || !strings.HasSuffix(call, "-- abc123") {
		t.Errorf("unexpected command: %s", call)
	}

	// Second call is served from the cache.
	if _, err := a.EnsureVideo(context.Background(), "abc123"); err != nil {
		t.Fatal(err)
	}
	if len(exec.calls) != 1 {
		t.Errorf("downloader invoked again on cached video")
	}
}

func TestEnsureVideoExistingDirIsFine(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{write: filepath.Join(dir, "id.mp4")}
	a := NewAcquirer(NewCache(dir, []string{"mp4"}), "yt-dlp", exec, logger.Nop())

	if _, err := a.EnsureVideo(context.Background(), "id"); err != nil {
		t.Fatalf("EnsureVideo() with existing dir error = %v", err)
	}
}

func TestEnsureVideoErrors(t *testing.T) {
	t.Run("downloader failure propagates", func(t *testing.T) {
		exec := &fakeExecutor{err: errors.New("exit status 1")}
		a := NewAcquirer(NewCache(t.TempDir(), []string{"mp4"}), "yt-dlp", exec, logger.Nop())

		_, err := a.EnsureVideo(context.Background(), "abc123")
		if err == nil || !strings.Contains(err.Error(), "abc123") {
			t.Errorf("EnsureVideo() error = %v, want wrapped download error", err)
		}
		if len(exec.calls) != 1 {
			t.Errorf("downloader invoked %d times, want exactly 1 (no retry)", len(exec.calls))
		}
	})

	t.Run("no file after success", func(t *testing.T) {
		a := NewAcquirer(NewCache(t.TempDir(), []string{"mp4"}), "yt-dlp", &fakeExecutor{}, logger.Nop())

		_, err := a.EnsureVideo(context.Background(), "abc123")
		if !errors.Is(err, ErrDownloadFailed) {
			t.Errorf("EnsureVideo() error = %v, want ErrDownloadFailed", err)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		exec := &fakeExecutor{}
		a := NewAcquirer(NewCache(t.TempDir(), []string{"mp4"}), "yt-dlp", exec, logger.Nop())

		if _, err := a.EnsureVideo(context.Background(), "../secret"); err == nil {
			t.Error("EnsureVideo() should reject path-like ids")
		}
		if len(exec.calls) != 0 {
			t.Error("downloader should not run for invalid ids")
		}
	})
}
