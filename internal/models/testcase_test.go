package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestProducedName(t *testing.T) {
	tests := []struct {
		fixture  string
		produced string
	}{
		{"expected.css", "test.css"},
		{"main.expected.css", "test.main.css"},
		{"a-b.expected.css", "test.a-b.css"},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			prefix, ok := FixturePrefix(tt.fixture)
			assert.True(t, ok)
			assert.Equal(t, tt.produced, ProducedName(prefix))
		})
	}

	_, ok := FixturePrefix("expected.js")
	assert.False(t, ok)
}

func TestVersionSetYAMLKeepsOrder(t *testing.T) {
	var sets []VersionSet
	err := yaml.Unmarshal([]byte("- {zeta: \"1\", alpha: \"2\", mid: \"3\"}\n"), &sets)
	assert.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, sets[0].Names())

	out, err := yaml.Marshal(sets[0])
	assert.NoError(t, err)
	assert.Equal(t, "zeta: \"1\"\nalpha: \"2\"\nmid: \"3\"\n", string(out))
}

func TestVersionSetValidate(t *testing.T) {
	tests := []struct {
		name    string
		vs      VersionSet
		wantErr bool
	}{
		{"valid", VersionSet{{"webpack", "3"}, {"@scope/plugin", "1.0.0"}}, false},
		{"empty", VersionSet{}, true},
		{"blank name", VersionSet{{" ", "3"}}, true},
		{"version in name", VersionSet{{"webpack@3", "3"}}, true},
		{"blank version", VersionSet{{"webpack", ""}}, true},
		{"duplicate", VersionSet{{"webpack", "3"}, {"webpack", "2"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.vs.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildConfigJSONRoundTrip(t *testing.T) {
	cfg := BuildConfigFromMap(map[string]any{
		"entry":   "index.js",
		"output":  map[string]any{"filename": "test.js"},
		"plugins": []any{"extract"},
	})
	assert.Equal(t, "test.js", cfg.OutputString("filename"))
	assert.Equal(t, []any{"extract"}, cfg.Plugins)
	assert.NotContains(t, cfg.Extra, "output")

	data, err := cfg.MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"entry":"index.js","output":{"filename":"test.js"},"plugins":["extract"]}`, string(data))
}
