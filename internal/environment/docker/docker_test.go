package docker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spachava753/pluginmatrix/internal/environment"
)

func TestExecArgs(t *testing.T) {
	tests := []struct {
		name     string
		workDir  string
		opts     environment.ExecOptions
		expected []string
	}{
		{
			name:     "container work dir",
			workDir:  "/src/project",
			expected: []string{"exec", "-w", "/src/project", "c1", "bash", "-c", "npm i"},
		},
		{
			name:     "override work dir",
			workDir:  "/src/project",
			opts:     environment.ExecOptions{WorkDir: "/tmp"},
			expected: []string{"exec", "-w", "/tmp", "c1", "bash", "-c", "npm i"},
		},
		{
			name:     "env vars",
			opts:     environment.ExecOptions{Env: map[string]string{"CI": "1"}},
			expected: []string{"exec", "-e", "CI=1", "c1", "bash", "-c", "npm i"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, execArgs("c1", tt.workDir, "npm i", tt.opts))
		})
	}
}

func TestProviderName(t *testing.T) {
	assert.Equal(t, "docker", NewProvider().Name())
}
