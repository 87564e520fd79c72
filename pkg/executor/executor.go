package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type implExecutor struct{}

// New creates a new Executor instance
func New() Executor {
	return &implExecutor{}
}

// Execute runs an external command with the given arguments
func (e *implExecutor) Execute(ctx context.Context, name string, args ...string) (Result, error) {
	return e.run(ctx, "", name, args...)
}

// ExecuteInDir runs an external command in a specific working directory
func (e *implExecutor) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (Result, error) {
	return e.run(ctx, dir, name, args...)
}

// LookPath resolves a binary the same way the commands above will
func (e *implExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// run returns the captured streams even when the command fails, so callers
// can still log whatever the tool printed before exiting.
func (e *implExecutor) run(ctx context.Context, dir string, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		// Include stderr in error message for debugging
		stderrStr := strings.TrimSpace(res.Stderr)
		if stderrStr != "" {
			return res, fmt.Errorf("command '%s' failed: %w\nstderr: %s", name, err, stderrStr)
		}
		return res, fmt.Errorf("command '%s' failed: %w", name, err)
	}

	return res, nil
}
