package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/spachava753/pluginmatrix/internal/environment"
)

// DefaultImage is used when the matrix config does not name one.
const DefaultImage = "node:20"

// Provider implements the Docker environment provider.
type Provider struct{}

// NewProvider creates a new Docker provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "docker"
}

// CreateEnvironment starts a long-lived container with the work directory
// bind-mounted at the same absolute path, so paths in build configs and
// produced files are identical inside and outside the container.
func (p *Provider) CreateEnvironment(ctx context.Context, opts environment.CreateEnvironmentOptions) (environment.Environment, error) {
	containerID := opts.Name
	if containerID == "" {
		containerID = fmt.Sprintf("pluginmatrix-%d", time.Now().UnixNano())
	}
	image := opts.Image
	if image == "" {
		image = DefaultImage
	}

	args := []string{
		"run",
		"-d",
		"--name", containerID,
	}
	if opts.WorkDir != "" {
		args = append(args, "-v", fmt.Sprintf("%s:%s", opts.WorkDir, opts.WorkDir), "-w", opts.WorkDir)
	}
	for k, v := range opts.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}

	args = append(args, image)
	// Keep container running with sleep infinity
	args = append(args, "sleep", "infinity")

	cmd := exec.CommandContext(ctx, "docker", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("creating docker container: %w: %s", err, stderr.String())
	}

	return &DockerEnvironment{
		containerID: containerID,
		workDir:     opts.WorkDir,
	}, nil
}

// DockerEnvironment represents a running Docker container.
type DockerEnvironment struct {
	containerID string
	workDir     string
}

// ID returns the container ID.
func (e *DockerEnvironment) ID() string {
	return e.containerID
}

// Exec executes a command in the container.
func (e *DockerEnvironment) Exec(ctx context.Context, cmd string, stdout, stderr io.Writer, opts environment.ExecOptions) (int, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	execCmd := exec.CommandContext(ctx, "docker", execArgs(e.containerID, e.workDir, cmd, opts)...)
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

func execArgs(containerID, workDir, cmd string, opts environment.ExecOptions) []string {
	args := []string{"exec"}

	for k, v := range opts.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}

	dir := workDir
	if opts.WorkDir != "" {
		dir = opts.WorkDir
	}
	if dir != "" {
		args = append(args, "-w", dir)
	}

	return append(args, containerID, "bash", "-c", cmd)
}

// Destroy removes the container and cleans up resources.
func (e *DockerEnvironment) Destroy(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "docker", "rm", "-f", e.containerID)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		// Ignore error if container already removed
		if !strings.Contains(stderr.String(), "No such container") {
			return fmt.Errorf("removing container: %w", err)
		}
	}
	return nil
}
