package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/spachava753/pluginmatrix/internal/models"
)

// FindOverride returns the first override file present in dir, or "" when
// the case has none.
func FindOverride(dir string, names []string) (string, error) {
	for _, name := range names {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("checking override %s: %w", name, err)
		}
		if info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", nil
}

// LoadOverride parses a per-case override file. TOML and YAML are accepted,
// selected by extension.
func LoadOverride(path string) (models.BuildConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.BuildConfig{}, fmt.Errorf("reading override: %w", err)
	}

	doc := map[string]any{}
	switch filepath.Ext(path) {
	case ".toml":
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return models.BuildConfig{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return models.BuildConfig{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
		}
	default:
		return models.BuildConfig{}, fmt.Errorf("unsupported override format: %s", filepath.Base(path))
	}
	doc = normalizeMap(doc)

	if v, ok := doc["output"]; ok {
		if _, isMap := v.(map[string]any); !isMap {
			return models.BuildConfig{}, fmt.Errorf("%s: output must be a table, got %T", filepath.Base(path), v)
		}
	}
	if v, ok := doc["plugins"]; ok {
		if _, isList := v.([]any); !isList {
			return models.BuildConfig{}, fmt.Errorf("%s: plugins must be a list, got %T", filepath.Base(path), v)
		}
	}

	return models.BuildConfigFromMap(doc), nil
}

// normalizeMap rewrites decoder-specific container types into
// map[string]any and []any so merging and JSON encoding see one shape.
func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeMap(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeValue(val)
		}
		return m
	case []map[string]any:
		// toml decodes arrays of tables this way
		list := make([]any, len(t))
		for i, val := range t {
			list[i] = normalizeMap(val)
		}
		return list
	case []any:
		list := make([]any, len(t))
		for i, val := range t {
			list[i] = normalizeValue(val)
		}
		return list
	default:
		return v
	}
}
