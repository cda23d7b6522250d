// Package builder drives the external build tool.
//
// The tool is reached through a small runner command: it receives the path of
// a JSON build configuration as its last argument, runs one build, and prints
// the build statistics as JSON on stdout:
//
//	{"hash": "3f2a...", "errors": [], "warnings": [], "report": "..."}
//
// A non-zero exit status means the tool itself failed. Compilation problems
// are reported through "errors" with a zero exit status.
package builder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spachava753/pluginmatrix/internal/environment"
	"github.com/spachava753/pluginmatrix/internal/models"
)

// Builder runs one build for a fully merged configuration.
type Builder interface {
	Build(ctx context.Context, cfg models.BuildConfig) (*Stats, error)
}

// Stats is the build report printed by the runner.
type Stats struct {
	Hash     string   `json:"hash"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Report   string   `json:"report"`
}

// HasErrors reports whether the build completed with diagnostics.
func (s *Stats) HasErrors() bool {
	return len(s.Errors) > 0
}

// String returns the full diagnostic report.
func (s *Stats) String() string {
	if s.Report != "" {
		return s.Report
	}
	return strings.Join(s.Errors, "\n\n")
}

// DiagnosticError is a build that ran but reported errors.
type DiagnosticError struct {
	Report string
}

func (e *DiagnosticError) Error() string {
	return e.Report
}

// InvocationError is a build that could not run to completion.
type InvocationError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *InvocationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "build %q", e.Command)
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

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// CommandBuilder runs the build tool through a runner command in an Environment.
type CommandBuilder struct {
	env     environment.Environment
	command string
	tempDir string
}

// NewCommandBuilder creates a builder that invokes command with the config
// path appended. Config files are written below tempDir, which must be
// visible to env.
func NewCommandBuilder(env environment.Environment, command, tempDir string) *CommandBuilder {
	return &CommandBuilder{
		env:     env,
		command: command,
		tempDir: tempDir,
	}
}

// Build writes cfg to a temporary file and runs the runner command on it.
// Diagnostics are returned as stats, not as an error; use Check to
// classify them.
func (b *CommandBuilder) Build(ctx context.Context, cfg models.BuildConfig) (*Stats, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding build config: %w", err)
	}

	if err := os.MkdirAll(b.tempDir, 0755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.CreateTemp(b.tempDir, "build-*.json")
	if err != nil {
		return nil, fmt.Errorf("creating config file: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing config file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("writing config file: %w", err)
	}

	cmd := b.command + " " + environment.ShellQuote(f.Name())
	slog.Debug("running build", "cmd", cmd)

	var stdout, stderr bytes.Buffer
	exitCode, err := b.env.Exec(ctx, cmd, &stdout, &stderr, environment.ExecOptions{})
	if err != nil {
		return nil, &InvocationError{Command: cmd, ExitCode: exitCode, Stderr: stderr.String(), Err: err}
	}
	if exitCode != 0 {
		return nil, &InvocationError{Command: cmd, ExitCode: exitCode, Stderr: stderr.String()}
	}

	stats, err := ParseStats(stdout.Bytes())
	if err != nil {
		return nil, &InvocationError{Command: cmd, Stderr: stderr.String(), Err: err}
	}
	return stats, nil
}

// ParseStats decodes runner output. Lines before the stats object (tool
// banners, deprecation notices, other JSON log lines) are skipped: the stats
// are the first object starting a line that carries a hash or errors.
func ParseStats(out []byte) (*Stats, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, errors.New("runner printed no stats")
	}

	var decodeErr error
	decoded := false
	for rest := out; len(rest) > 0; {
		line := rest
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			rest = rest[i+1:]
		} else {
			rest = nil
		}
		if line[0] != '{' {
			continue
		}

		var stats Stats
		if err := json.NewDecoder(bytes.NewReader(line)).Decode(&stats); err != nil {
			decodeErr = err
			continue
		}
		decoded = true
		if stats.Hash != "" || stats.HasErrors() {
			return &stats, nil
		}
	}

	if decoded {
		return nil, errors.New("build stats have no hash")
	}
	if decodeErr == nil {
		decodeErr = errors.New("no JSON object in output")
	}
	return nil, fmt.Errorf("parsing build stats: %w", decodeErr)
}

// Check converts stats with diagnostics into a *DiagnosticError.
func Check(stats *Stats) error {
	if stats.HasErrors() {
		return &DiagnosticError{Report: stats.String()}
	}
	return nil
}
