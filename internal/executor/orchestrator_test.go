package executor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/pluginmatrix/internal/models"
)

func TestNewProvider(t *testing.T) {
	for _, typ := range []string{"", "local", "docker"} {
		p, err := NewProvider(models.EnvironmentConfig{Type: typ})
		require.NoError(t, err, typ)
		assert.NotEmpty(t, p.Name())
	}

	_, err := NewProvider(models.EnvironmentConfig{Type: "modal"})
	assert.ErrorContains(t, err, "unsupported environment type")
}

func TestWriteResult(t *testing.T) {
	runDir := t.TempDir()
	result := &models.MatrixResult{
		Name:    "extract-css",
		Aborted: true,
		VersionSets: []models.VersionSetResult{
			{
				Index: 0,
				Cases: []models.CaseResult{
					{Name: "basic", Hash: "abc123"},
					{Name: "broken", Error: models.NewCaseError(models.ErrContentMismatch, errors.New("output broken: expected.css does not equal test.css"))},
				},
			},
			{
				Index:        1,
				InstallError: models.NewCaseError(models.ErrInstallFailed, errors.New("npm exited with code 1")),
			},
		},
	}

	require.NoError(t, WriteResult(runDir, result))

	data, err := os.ReadFile(filepath.Join(runDir, "result.json"))
	require.NoError(t, err)
	var decoded models.MatrixResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "extract-css", decoded.Name)
	assert.True(t, decoded.Aborted)

	caseErr, err := os.ReadFile(filepath.Join(runDir, "0", "broken", "error.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(caseErr), "content_mismatch")
	assert.NoFileExists(t, filepath.Join(runDir, "0", "basic", "error.txt"))

	installErr, err := os.ReadFile(filepath.Join(runDir, "1", "error.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(installErr), "install_failed")
}

func TestPrepareRunDirRefusesOverwrite(t *testing.T) {
	runDir := filepath.Join(t.TempDir(), "run")
	require.NoError(t, prepareRunDir(runDir, models.MatrixConfig{}))
	assert.FileExists(t, filepath.Join(runDir, "config.json"))

	err := prepareRunDir(runDir, models.MatrixConfig{})
	assert.ErrorContains(t, err, "will not overwrite")
}

// buildScript stands in for a real build runner: it reads output.path from
// the generated config and writes a stylesheet there.
const buildScript = `#!/usr/bin/env bash
set -e
dir=$(sed -n 's/.*"path": "\(.*\)".*/\1/p' "$1" | head -n1)
mkdir -p "$dir"
printf 'body{background:url(img.f00d.png)}\n' > "$dir/test.css"
echo '{"hash":"f00d","errors":[],"warnings":[]}'
`

const matrixYAML = `name: local-smoke
fixtures_dir: integrations
output_dir: _out
results_dir: _results
package_manager:
  command: "true"
  install_args: []
builder:
  command: bash build.sh
  tool: webpack
  plugin: extract-text-webpack-plugin
base_config:
  entry: "{{testDirectory}}/index.js"
  output:
    path: "{{outputDirectory}}"
    filename: test.js
versions:
  - webpack: "2.3.3"
    extract-text-webpack-plugin: "2.1.0"
  - webpack: "3"
    extract-text-webpack-plugin: "3"
`

func TestRunFromConfigLocal(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "build.sh"), []byte(buildScript), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "matrix.yaml"), []byte(matrixYAML), 0644))
	writeCase(t, filepath.Join(root, "integrations"), "basic", map[string]string{
		"index.js":     "require('./style.css')",
		"expected.css": "body{background:url(img.%%unit-hash%%.png)}\n",
	})

	configPath := filepath.Join(root, "matrix.yaml")
	result, err := RunFromConfig(context.Background(), configPath, RunOptions{})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Passed(), "%+v", result.VersionSets)
	assert.Equal(t, "local-smoke", result.Name)
	assert.Equal(t, 2, result.TotalCases)
	assert.Equal(t, 2, result.PassedCases)
	assert.FileExists(t, filepath.Join(root, "_results", "local-smoke", "result.json"))
	assert.FileExists(t, filepath.Join(root, "_out", "basic", "test.css"))

	// Generated build configs are cleaned up with the run.
	matches, err := filepath.Glob(filepath.Join(root, ".pluginmatrix-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	// A second run with the same name must not clobber the first.
	_, err = RunFromConfig(context.Background(), configPath, RunOptions{})
	assert.ErrorContains(t, err, "will not overwrite")
}
