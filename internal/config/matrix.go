package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/spachava753/pluginmatrix/internal/models"
)

// DefaultOverrideFiles are probed, in order, inside each case directory.
var DefaultOverrideFiles = []string{"build.toml", "build.yaml", "build.yml"}

// DefaultMatrixConfig returns a MatrixConfig with default values.
func DefaultMatrixConfig() models.MatrixConfig {
	return models.MatrixConfig{
		WorkDir:           ".",
		FixturesDir:       "test/integrations",
		OutputDir:         "test/_out",
		ResultsDir:        "test/_results",
		CaseTimeoutSec:    5.0,
		InstallTimeoutSec: 600.0,
		Environment: models.EnvironmentConfig{
			Type: "local",
		},
		PackageManager: models.PackageManagerConfig{
			Command:     "npm",
			InstallArgs: []string{"i"},
			ModulesDir:  "node_modules",
		},
		OverrideFiles: DefaultOverrideFiles,
	}
}

// LoadMatrixConfig loads and parses a matrix.yaml file. Relative directories
// are resolved against the directory containing the file.
func LoadMatrixConfig(path string) (models.MatrixConfig, error) {
	cfg := DefaultMatrixConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading matrix config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing matrix config: %w", err)
	}

	// Apply defaults for missing values
	def := DefaultMatrixConfig()
	if cfg.WorkDir == "" {
		cfg.WorkDir = def.WorkDir
	}
	if cfg.FixturesDir == "" {
		cfg.FixturesDir = def.FixturesDir
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = def.OutputDir
	}
	if cfg.ResultsDir == "" {
		cfg.ResultsDir = def.ResultsDir
	}
	if cfg.CaseTimeoutSec == 0 {
		cfg.CaseTimeoutSec = def.CaseTimeoutSec
	}
	if cfg.InstallTimeoutSec == 0 {
		cfg.InstallTimeoutSec = def.InstallTimeoutSec
	}
	if cfg.Environment.Type == "" {
		cfg.Environment.Type = def.Environment.Type
	}
	if cfg.PackageManager.Command == "" {
		cfg.PackageManager.Command = def.PackageManager.Command
	}
	if cfg.PackageManager.InstallArgs == nil {
		cfg.PackageManager.InstallArgs = def.PackageManager.InstallArgs
	}
	if cfg.PackageManager.ModulesDir == "" {
		cfg.PackageManager.ModulesDir = def.PackageManager.ModulesDir
	}
	if len(cfg.OverrideFiles) == 0 {
		cfg.OverrideFiles = def.OverrideFiles
	}
	cfg.BaseConfig = normalizeMap(cfg.BaseConfig)

	if err := ValidateMatrixConfig(cfg); err != nil {
		return cfg, err
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return cfg, fmt.Errorf("getting absolute path: %w", err)
	}
	cfg.WorkDir = resolveDir(base, cfg.WorkDir)
	cfg.FixturesDir = resolveDir(base, cfg.FixturesDir)
	cfg.OutputDir = resolveDir(base, cfg.OutputDir)
	cfg.ResultsDir = resolveDir(base, cfg.ResultsDir)

	return cfg, nil
}

// ValidateMatrixConfig checks fields that have no sensible default.
func ValidateMatrixConfig(cfg models.MatrixConfig) error {
	if cfg.Builder.Command == "" {
		return fmt.Errorf("builder.command is required")
	}
	if cfg.Builder.Tool == "" {
		return fmt.Errorf("builder.tool is required")
	}
	if len(cfg.Versions) == 0 {
		return fmt.Errorf("versions: at least one version set is required")
	}
	for i, vs := range cfg.Versions {
		if err := vs.Validate(); err != nil {
			return fmt.Errorf("versions[%d]: %w", i, err)
		}
		if _, ok := vs.Version(cfg.Builder.Tool); !ok {
			return fmt.Errorf("versions[%d]: missing build tool %s", i, cfg.Builder.Tool)
		}
	}
	if cfg.CaseTimeoutSec < 0 || cfg.InstallTimeoutSec < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	switch cfg.Environment.Type {
	case "local", "docker":
	default:
		return fmt.Errorf("unsupported environment type: %s", cfg.Environment.Type)
	}
	return nil
}

func resolveDir(base, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(base, dir)
}
