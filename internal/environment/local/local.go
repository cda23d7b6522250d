// Package local runs commands directly on the host through bash.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spachava753/pluginmatrix/internal/environment"
)

// Provider implements the host environment provider.
type Provider struct{}

// NewProvider creates a new local provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "local"
}

// CreateEnvironment returns an environment rooted at opts.WorkDir.
func (p *Provider) CreateEnvironment(ctx context.Context, opts environment.CreateEnvironmentOptions) (environment.Environment, error) {
	if opts.WorkDir != "" {
		info, err := os.Stat(opts.WorkDir)
		if err != nil {
			return nil, fmt.Errorf("checking work dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("work dir %s is not a directory", opts.WorkDir)
		}
	}
	return &Environment{workDir: opts.WorkDir, env: opts.Env}, nil
}

// Environment executes commands in host processes.
type Environment struct {
	workDir string
	env     map[string]string
}

// ID returns a fixed identifier; there is only one host.
func (e *Environment) ID() string {
	return "local"
}

// Exec runs cmd with bash -c.
func (e *Environment) Exec(ctx context.Context, cmd string, stdout, stderr io.Writer, opts environment.ExecOptions) (int, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	execCmd := exec.CommandContext(ctx, "bash", "-c", cmd)
	execCmd.Dir = e.workDir
	if opts.WorkDir != "" {
		execCmd.Dir = opts.WorkDir
	}
	execCmd.Env = os.Environ()
	for k, v := range e.env {
		execCmd.Env = append(execCmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	for k, v := range opts.Env {
		execCmd.Env = append(execCmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	execCmd.Stdout = stdout
	execCmd.Stderr = stderr

	err := execCmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return -1, environment.ErrTimeout
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("executing command: %w", err)
	}

	return 0, nil
}

// Destroy is a no-op for the host.
func (e *Environment) Destroy(ctx context.Context) error {
	return nil
}
