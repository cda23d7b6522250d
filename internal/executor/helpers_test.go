package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spachava753/pluginmatrix/internal/builder"
	"github.com/spachava753/pluginmatrix/internal/models"
)

// fakeBuilder stands in for the build tool. It writes canned files into the
// configured output path, keyed by case name (the last path element).
type fakeBuilder struct {
	hash        string
	outputs     map[string]map[string]string
	diagnostics map[string]string
	fail        map[string]error
	onBuild     func(ctx context.Context, caseName string) error
	configs     []models.BuildConfig
}

func (b *fakeBuilder) Build(ctx context.Context, cfg models.BuildConfig) (*builder.Stats, error) {
	b.configs = append(b.configs, cfg)
	dir := cfg.OutputString("path")
	name := filepath.Base(dir)

	if b.onBuild != nil {
		if err := b.onBuild(ctx, name); err != nil {
			return nil, err
		}
	}
	if err := b.fail[name]; err != nil {
		return nil, err
	}
	if report, ok := b.diagnostics[name]; ok {
		return &builder.Stats{Hash: b.hash, Errors: []string{report}}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	for file, content := range b.outputs[name] {
		if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0644); err != nil {
			return nil, err
		}
	}
	return &builder.Stats{Hash: b.hash}, nil
}

func writeCase(t *testing.T, root, name string, files map[string]string) models.TestCase {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for file, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0644))
	}
	return models.TestCase{Name: name, Dir: dir}
}

func writeOutput(t *testing.T, dir string, files map[string]string) *models.BuildResult {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	for file, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0644))
	}
	return &models.BuildResult{OutputDir: dir}
}

func caseErrorType(t *testing.T, err error) models.ErrorType {
	t.Helper()
	require.Error(t, err)
	caseErr, ok := err.(*models.CaseError)
	require.True(t, ok, "expected *models.CaseError, got %T", err)
	return caseErr.Type
}
