package models

import (
	"encoding/json"
	"maps"
	"time"
)

// BuildConfig is the configuration handed to the build tool.
//
// Output and Plugins are kept apart from the remaining top-level keys because
// overrides merge them differently: Output is deep-merged, Plugins appended.
type BuildConfig struct {
	Output  map[string]any
	Plugins []any
	Extra   map[string]any
}

// BuildConfigFromMap splits a decoded configuration document.
func BuildConfigFromMap(m map[string]any) BuildConfig {
	cfg := BuildConfig{Extra: make(map[string]any, len(m))}
	for k, v := range m {
		switch k {
		case "output":
			if out, ok := v.(map[string]any); ok {
				cfg.Output = out
				continue
			}
			cfg.Extra[k] = v
		case "plugins":
			if plugins, ok := v.([]any); ok {
				cfg.Plugins = plugins
				continue
			}
			cfg.Extra[k] = v
		default:
			cfg.Extra[k] = v
		}
	}
	return cfg
}

// Map flattens the configuration back into a single document.
func (c BuildConfig) Map() map[string]any {
	m := make(map[string]any, len(c.Extra)+2)
	maps.Copy(m, c.Extra)
	if c.Output != nil {
		m["output"] = c.Output
	}
	if c.Plugins != nil {
		m["plugins"] = c.Plugins
	}
	return m
}

// MarshalJSON writes the flattened document.
func (c BuildConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}

// UnmarshalJSON reads a flattened document.
func (c *BuildConfig) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*c = BuildConfigFromMap(m)
	return nil
}

// OutputString returns a string field of the output section.
func (c BuildConfig) OutputString(key string) string {
	s, _ := c.Output[key].(string)
	return s
}

// BuildResult describes one successful build invocation.
type BuildResult struct {
	Hash      string            `json:"hash"`
	OutputDir string            `json:"output_dir"`
	Resolved  map[string]string `json:"resolved,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
	Duration  time.Duration     `json:"duration"`
}
