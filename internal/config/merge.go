package config

import (
	"strings"

	"github.com/spachava753/pluginmatrix/internal/models"
)

// Factory builds the base configuration for one case.
type Factory func(outputDirectory, testDirectory string) models.BuildConfig

const (
	outputDirectoryVar = "{{outputDirectory}}"
	testDirectoryVar   = "{{testDirectory}}"
)

// TemplateFactory returns a Factory that copies doc and substitutes
// {{outputDirectory}} and {{testDirectory}} in every string value.
// output.path defaults to the case output directory.
func TemplateFactory(doc map[string]any) Factory {
	return func(outputDirectory, testDirectory string) models.BuildConfig {
		r := strings.NewReplacer(outputDirectoryVar, outputDirectory, testDirectoryVar, testDirectory)
		expanded, _ := expand(normalizeMap(doc), r).(map[string]any)
		if expanded == nil {
			expanded = map[string]any{}
		}
		cfg := models.BuildConfigFromMap(expanded)
		if cfg.Output == nil {
			cfg.Output = map[string]any{}
		}
		if _, ok := cfg.Output["path"]; !ok {
			cfg.Output["path"] = outputDirectory
		}
		return cfg
	}
}

func expand(v any, r *strings.Replacer) any {
	switch t := v.(type) {
	case string:
		return r.Replace(t)
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = expand(val, r)
		}
		return m
	case []any:
		list := make([]any, len(t))
		for i, val := range t {
			list[i] = expand(val, r)
		}
		return list
	default:
		return v
	}
}

// Merge overlays a per-case override onto the base configuration.
//
// Field strategies:
//   - top-level keys: replace
//   - output: recursive deep merge, override wins on conflicts
//   - plugins: concatenate, base first
//
// Neither argument is modified.
func Merge(base, override models.BuildConfig) models.BuildConfig {
	merged := models.BuildConfig{
		Extra:  make(map[string]any, len(base.Extra)+len(override.Extra)),
		Output: deepMerge(base.Output, override.Output),
	}
	for k, v := range base.Extra {
		merged.Extra[k] = v
	}
	for k, v := range override.Extra {
		merged.Extra[k] = v
	}

	if base.Plugins != nil || override.Plugins != nil {
		merged.Plugins = make([]any, 0, len(base.Plugins)+len(override.Plugins))
		merged.Plugins = append(merged.Plugins, base.Plugins...)
		merged.Plugins = append(merged.Plugins, override.Plugins...)
	}
	return merged
}

func deepMerge(base, override map[string]any) map[string]any {
	if base == nil && override == nil {
		return nil
	}
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		bm, bok := out[k].(map[string]any)
		om, ook := v.(map[string]any)
		if bok && ook {
			out[k] = deepMerge(bm, om)
			continue
		}
		out[k] = v
	}
	return out
}
