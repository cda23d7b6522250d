package installer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryResolveAll(t *testing.T) {
	modulesDir := t.TempDir()
	writeManifest(t, modulesDir, "webpack", "3.12.0")
	writeManifest(t, modulesDir, "extract-text-webpack-plugin", "3.0.2")
	writeManifest(t, modulesDir, "@scope/plugin", "1.0.0")

	registry := NewRegistry(modulesDir)
	got, err := registry.ResolveAll(context.Background(), []string{"webpack", "extract-text-webpack-plugin", "@scope/plugin"})
	require.NoError(t, err)

	assert.Equal(t, "3.12.0", got["webpack"].Version)
	assert.Equal(t, "3.0.2", got["extract-text-webpack-plugin"].Version)
	assert.Equal(t, "1.0.0", got["@scope/plugin"].Version)
	assert.Equal(t, 3, registry.Cached())
}

func TestRegistryMissingDependency(t *testing.T) {
	registry := NewRegistry(t.TempDir())

	_, err := registry.ResolveAll(context.Background(), []string{"webpack"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving webpack")
	assert.Zero(t, registry.Cached())
}

func TestRegistryCachesUntilInvalidated(t *testing.T) {
	modulesDir := t.TempDir()
	writeManifest(t, modulesDir, "webpack", "2.3.3")
	registry := NewRegistry(modulesDir)

	_, err := registry.Resolve("webpack")
	require.NoError(t, err)

	writeManifest(t, modulesDir, "webpack", "3.0.0")
	res, err := registry.Resolve("webpack")
	require.NoError(t, err)
	assert.Equal(t, "2.3.3", res.Version, "resolution is cached")

	registry.Invalidate("webpack", "not-cached")
	res, err = registry.Resolve("webpack")
	require.NoError(t, err)
	assert.Equal(t, "3.0.0", res.Version)
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		requested string
		version   string
		want      bool
	}{
		{"3.0.0", "3.0.0", true},
		{"3.0.0", "3.0.1", false},
		{"3", "3.12.0", true},
		{"3", "4.0.0", false},
		{"2.3", "2.3.3", true},
		{"2.3", "2.4.0", false},
		{"v3", "3.1.0", true},
		{"^3.0.0", "3.9.9", true},
		{"latest", "5.0.0", true},
		{"3", "not-a-version", false},
	}

	for _, tt := range tests {
		t.Run(tt.requested+"/"+tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, Satisfies(tt.requested, tt.version))
		})
	}
}
