package executor

import "context"

// Result holds the captured output streams of a finished command.
type Result struct {
	Stdout string
	Stderr string
}

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (Result, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (Result, error)
	LookPath(name string) (string, error)
}
