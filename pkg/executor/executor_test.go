package executor

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestExecute(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	ctx := context.Background()
	e := New()

	tests := []struct {
		name       string
		script     string
		wantErr    bool
		wantStdout string
		wantStderr string
	}{
		{"stdout captured", "echo hello", false, "hello\n", ""},
		{"stderr captured on success", "echo warn 1>&2", false, "", "warn\n"},
		{"failure keeps streams", "echo partial; echo boom 1>&2; exit 3", true, "partial\n", "boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Execute(ctx, "sh", "-c", tt.script)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if res.Stdout != tt.wantStdout {
				t.Errorf("Stdout = %q, want %q", res.Stdout, tt.wantStdout)
			}
			if res.Stderr != tt.wantStderr {
				t.Errorf("Stderr = %q, want %q", res.Stderr, tt.wantStderr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), "boom") {
				t.Errorf("error %q should include stderr", err)
			}
		})
	}
}

func TestExecuteInDir(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	res, err := New().ExecuteInDir(context.Background(), dir, "sh", "-c", "pwd")
	if err != nil {
		t.Fatalf("ExecuteInDir() error = %v", err)
	}
	if !strings.Contains(res.Stdout, dir) {
		t.Errorf("pwd = %q, want it to contain %q", res.Stdout, dir)
	}
}
