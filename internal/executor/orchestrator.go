package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spachava753/pluginmatrix/internal/builder"
	"github.com/spachava753/pluginmatrix/internal/config"
	"github.com/spachava753/pluginmatrix/internal/environment"
	"github.com/spachava753/pluginmatrix/internal/environment/docker"
	"github.com/spachava753/pluginmatrix/internal/environment/local"
	"github.com/spachava753/pluginmatrix/internal/installer"
	"github.com/spachava753/pluginmatrix/internal/models"
)

// RunOptions adjust a run started from a config file.
type RunOptions struct {
	// Cases restricts the run to the named cases.
	Cases []string
}

// NewProvider returns the environment provider named by cfg.
func NewProvider(cfg models.EnvironmentConfig) (environment.Provider, error) {
	switch cfg.Type {
	case "", "local":
		return local.NewProvider(), nil
	case "docker":
		return docker.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported environment type: %s", cfg.Type)
	}
}

// DefaultComponents wires the installer, case runner and validator for cfg
// on top of env. tempDir holds the generated build configurations and must
// be visible inside env.
func DefaultComponents(cfg models.MatrixConfig, env environment.Environment, tempDir string) Components {
	registry := installer.NewRegistry(filepath.Join(cfg.WorkDir, cfg.PackageManager.ModulesDir))

	track := []string{cfg.Builder.Tool}
	if cfg.Builder.Plugin != "" {
		track = append(track, cfg.Builder.Plugin)
	}

	return Components{
		Installer: installer.NewInstaller(env, cfg.PackageManager, registry, seconds(cfg.InstallTimeoutSec)),
		Cases: &CaseRunner{
			OutputRoot:    cfg.OutputDir,
			Factory:       config.TemplateFactory(cfg.BaseConfig),
			OverrideFiles: cfg.OverrideFiles,
			Builder:       builder.NewCommandBuilder(env, cfg.Builder.Command, tempDir),
			Timeout:       seconds(cfg.CaseTimeoutSec),
			Registry:      registry,
			Track:         track,
		},
		Validator: NewValidator(),
		Registry:  registry,
	}
}

// RunFromConfig loads a matrix config file, runs the whole matrix and
// persists the result under the configured results directory.
func RunFromConfig(ctx context.Context, configPath string, opts RunOptions) (*models.MatrixResult, error) {
	cfg, err := config.LoadMatrixConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading matrix config: %w", err)
	}

	provider, err := NewProvider(cfg.Environment)
	if err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp(cfg.WorkDir, ".pluginmatrix-")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	env, err := provider.CreateEnvironment(ctx, environment.CreateEnvironmentOptions{
		Name:    "pluginmatrix",
		Image:   cfg.Environment.Image,
		WorkDir: cfg.WorkDir,
		Env:     cfg.Environment.Env,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s environment: %w", provider.Name(), err)
	}
	defer func() {
		// The run context may already be cancelled.
		if err := env.Destroy(context.Background()); err != nil {
			slog.Warn("failed to destroy environment", "id", env.ID(), "error", err)
		}
	}()

	runner := NewMatrixRunner(cfg, DefaultComponents(cfg, env, tempDir), opts.Cases...)

	runDir := filepath.Join(cfg.ResultsDir, runner.Name())
	if err := prepareRunDir(runDir, cfg); err != nil {
		return nil, err
	}

	slog.Info("starting matrix", "name", runner.Name(), "version_sets", len(cfg.Versions), "environment", provider.Name())
	result, runErr := runner.Run(ctx)
	if result != nil {
		if err := WriteResult(runDir, result); err != nil {
			slog.Error("failed to persist results", "dir", runDir, "error", err)
		}
	}
	return result, runErr
}

func prepareRunDir(runDir string, cfg models.MatrixConfig) error {
	if _, err := os.Stat(runDir); err == nil {
		return fmt.Errorf("run directory already exists: %s (will not overwrite existing results)", runDir)
	}
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("creating run directory: %w", err)
	}
	cfgJSON, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding matrix config: %w", err)
	}
	return os.WriteFile(filepath.Join(runDir, "config.json"), cfgJSON, 0644)
}

// WriteResult saves result.json in runDir and an error.txt for every failed
// case and install.
func WriteResult(runDir string, result *models.MatrixResult) error {
	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "result.json"), resultJSON, 0644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}

	for _, vs := range result.VersionSets {
		vsDir := filepath.Join(runDir, strconv.Itoa(vs.Index))
		if vs.InstallError != nil {
			if err := writeError(vsDir, vs.InstallError); err != nil {
				return err
			}
		}
		for _, c := range vs.Cases {
			if c.Error == nil {
				continue
			}
			if err := writeError(filepath.Join(vsDir, c.Name), c.Error); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeError(dir string, caseErr *models.CaseError) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return os.WriteFile(filepath.Join(dir, "error.txt"), []byte(caseErr.Error()), 0644)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
