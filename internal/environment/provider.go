package environment

import (
	"context"
	"errors"
	"io"
	"time"
)

// Environment is where package installs and builds execute. The work
// directory is shared with the host so produced files can be read back
// directly.
type Environment interface {
	// ID returns the unique identifier for this environment.
	ID() string

	// Exec runs a shell command, streaming stdout and stderr to the provided writers.
	// Returns the exit code, or an error when the command could not be run at all.
	Exec(ctx context.Context, cmd string, stdout, stderr io.Writer, opts ExecOptions) (int, error)

	// Destroy releases all resources held by the environment.
	Destroy(ctx context.Context) error
}

// ExecOptions configures command execution.
type ExecOptions struct {
	Env     map[string]string
	Timeout time.Duration
	WorkDir string
}

// Provider is a factory for creating environments.
type Provider interface {
	// Name returns the provider name (e.g., "local", "docker").
	Name() string

	// CreateEnvironment prepares an environment rooted at opts.WorkDir.
	CreateEnvironment(ctx context.Context, opts CreateEnvironmentOptions) (Environment, error)
}

// CreateEnvironmentOptions configures environment creation.
type CreateEnvironmentOptions struct {
	Name    string
	Image   string
	WorkDir string
	Env     map[string]string
}

// ErrTimeout is returned by Exec when opts.Timeout or the context deadline elapses.
var ErrTimeout = errors.New("command timed out")
