package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spachava753/pluginmatrix/internal/builder"
	"github.com/spachava753/pluginmatrix/internal/config"
	"github.com/spachava753/pluginmatrix/internal/environment"
	"github.com/spachava753/pluginmatrix/internal/installer"
	"github.com/spachava753/pluginmatrix/internal/models"
)

// CaseRunner builds one test case under the currently installed version set.
type CaseRunner struct {
	OutputRoot    string
	Factory       config.Factory
	OverrideFiles []string
	Builder       builder.Builder
	Timeout       time.Duration

	// Registry and Track are optional; when set, the resolved version of
	// each tracked dependency is recorded on the result.
	Registry *installer.Registry
	Track    []string
}

// OutputDir returns the per-case output directory.
func (r *CaseRunner) OutputDir(tc models.TestCase) string {
	return filepath.Join(r.OutputRoot, tc.Name)
}

// Options returns the merged build configuration for tc: the factory's base
// configuration with the case's override file, if any, laid on top.
func (r *CaseRunner) Options(tc models.TestCase) (models.BuildConfig, error) {
	options := r.Factory(r.OutputDir(tc), tc.Dir)

	overrideFiles := r.OverrideFiles
	if overrideFiles == nil {
		overrideFiles = config.DefaultOverrideFiles
	}
	path, err := config.FindOverride(tc.Dir, overrideFiles)
	if err != nil {
		return options, err
	}
	if path == "" {
		return options, nil
	}

	override, err := config.LoadOverride(path)
	if err != nil {
		return options, err
	}
	slog.Debug("applying case override", "case", tc.Name, "file", filepath.Base(path))
	return config.Merge(options, override), nil
}

// Run builds tc. Failures are returned as *models.CaseError.
func (r *CaseRunner) Run(ctx context.Context, tc models.TestCase) (*models.BuildResult, error) {
	start := time.Now()

	options, err := r.Options(tc)
	if err != nil {
		return nil, models.NewCaseError(models.ErrOverrideInvalid, err)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	stats, err := r.Builder.Build(ctx, options)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, environment.ErrTimeout) {
			return nil, models.NewCaseError(models.ErrBuildTimeout, fmt.Errorf("build exceeded %s: %w", r.Timeout, err))
		}
		return nil, models.NewCaseError(models.ErrBuildInvocationFailed, err)
	}
	if err := builder.Check(stats); err != nil {
		return nil, models.NewCaseError(models.ErrBuildDiagnostics, err)
	}

	result := &models.BuildResult{
		Hash:      stats.Hash,
		OutputDir: r.OutputDir(tc),
		Warnings:  stats.Warnings,
		Duration:  time.Since(start),
	}
	if r.Registry != nil && len(r.Track) > 0 {
		result.Resolved = make(map[string]string, len(r.Track))
		for _, name := range r.Track {
			res, err := r.Registry.Resolve(name)
			if err != nil {
				slog.Warn("could not resolve dependency", "case", tc.Name, "name", name, "error", err)
				continue
			}
			result.Resolved[name] = res.Version
		}
	}
	return result, nil
}

// ClearOutput removes everything under root and recreates it empty.
func ClearOutput(root string) error {
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("clearing output directory: %w", err)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}
