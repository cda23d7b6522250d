package models

import "strings"

// ExpectedSuffix marks golden files inside a case directory.
const ExpectedSuffix = "expected.css"

// HashPlaceholder is replaced with the build content hash before comparison.
const HashPlaceholder = "%%unit-hash%%"

// TestCase is one fixture directory: one independent build-and-compare scenario.
type TestCase struct {
	Name string `json:"name"` // base name of the fixture directory
	Dir  string `json:"dir"`
}

// FixturePrefix strips ExpectedSuffix from a fixture file name.
// The second return value is false when name is not a fixture.
func FixturePrefix(name string) (string, bool) {
	if !strings.HasSuffix(name, ExpectedSuffix) {
		return "", false
	}
	return strings.TrimSuffix(name, ExpectedSuffix), true
}

// ProducedName maps a fixture prefix to the file the build is expected to emit.
// An empty prefix yields the canonical "test.css".
func ProducedName(prefix string) string {
	return "test." + prefix + "css"
}
