// Package installer materializes one version set at a time into the shared
// dependency tree.
package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spachava753/pluginmatrix/internal/environment"
	"github.com/spachava753/pluginmatrix/internal/models"
)

// InstallError is returned when the package manager fails. It is fatal for
// the whole matrix.
type InstallError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *InstallError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "install %q", e.Command)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	} else {
		fmt.Fprintf(&b, " exited with code %d", e.ExitCode)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, ": %s", s)
	}
	return b.String()
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// Installer installs version sets through the host package manager.
// Installs mutate the shared dependency tree, so callers must never run two
// installs, or an install and a build, at the same time.
type Installer struct {
	env      environment.Environment
	pm       models.PackageManagerConfig
	registry *Registry
	timeout  time.Duration
}

// NewInstaller creates an installer that runs inside env.
func NewInstaller(env environment.Environment, pm models.PackageManagerConfig, registry *Registry, timeout time.Duration) *Installer {
	return &Installer{
		env:      env,
		pm:       pm,
		registry: registry,
		timeout:  timeout,
	}
}

// Command returns the batched install command for vs. Version specifiers
// are passed through unmodified.
func (i *Installer) Command(vs models.VersionSet) string {
	parts := make([]string, 0, 1+len(i.pm.InstallArgs)+len(vs))
	parts = append(parts, i.pm.Command)
	parts = append(parts, i.pm.InstallArgs...)
	for _, r := range vs {
		parts = append(parts, environment.ShellQuote(r.String()))
	}
	return strings.Join(parts, " ")
}

// Install invalidates cached resolutions for every dependency in vs and then
// installs exactly those versions in one package manager invocation.
func (i *Installer) Install(ctx context.Context, vs models.VersionSet) error {
	if err := vs.Validate(); err != nil {
		return fmt.Errorf("invalid version set: %w", err)
	}

	i.registry.Invalidate(vs.Names()...)

	cmd := i.Command(vs)
	slog.Info("installing version set", "versions", vs.String())
	start := time.Now()

	var stdout, stderr bytes.Buffer
	exitCode, err := i.env.Exec(ctx, cmd, &stdout, &stderr, environment.ExecOptions{
		Timeout: i.timeout,
	})
	if err != nil {
		if errors.Is(err, environment.ErrTimeout) {
			err = fmt.Errorf("timed out after %s: %w", i.timeout, err)
		}
		return &InstallError{Command: cmd, ExitCode: exitCode, Stderr: stderr.String(), Err: err}
	}
	if exitCode != 0 {
		return &InstallError{Command: cmd, ExitCode: exitCode, Stderr: stderr.String()}
	}

	slog.Debug("install finished", "versions", vs.String(), "dur", time.Since(start))
	return nil
}
