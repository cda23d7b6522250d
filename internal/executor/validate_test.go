package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/pluginmatrix/internal/models"
)

func TestValidateSubstitutesHash(t *testing.T) {
	tc := writeCase(t, t.TempDir(), "url", map[string]string{
		"expected.css": "body{background:url(img.%%unit-hash%%.png)}\n",
	})
	result := writeOutput(t, filepath.Join(t.TempDir(), "url"), map[string]string{
		"test.css": "body{background:url(img.abc123.png)}",
	})
	result.Hash = "abc123"

	require.NoError(t, NewValidator().Validate(tc, result))

	result.Hash = "def456"
	err := NewValidator().Validate(tc, result)
	assert.Equal(t, models.ErrContentMismatch, caseErrorType(t, err))
	assert.Contains(t, err.Error(), "output url: expected.css does not equal test.css")
	assert.Contains(t, err.Error(), "img.def456.png")
}

func TestValidateTrailingNewline(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		pass     bool
	}{
		{name: "neither", expected: "a{}", actual: "a{}", pass: true},
		{name: "expected only", expected: "a{}\n", actual: "a{}", pass: true},
		{name: "actual only", expected: "a{}", actual: "a{}\n", pass: true},
		{name: "both", expected: "a{}\n", actual: "a{}\n", pass: true},
		{name: "only one newline stripped", expected: "a{}\n\n", actual: "a{}", pass: false},
		{name: "leading newline kept", expected: "\na{}", actual: "a{}", pass: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := writeCase(t, t.TempDir(), "nl", map[string]string{"expected.css": tt.expected})
			result := writeOutput(t, t.TempDir(), map[string]string{"test.css": tt.actual})

			err := NewValidator().Validate(tc, result)
			if tt.pass {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, models.ErrContentMismatch, caseErrorType(t, err))
			}
		})
	}
}

func TestValidateRequiresFixtures(t *testing.T) {
	tc := writeCase(t, t.TempDir(), "empty", map[string]string{
		"index.js":  "require('./style.css')",
		"style.css": "a{}",
	})
	// Matching output must not rescue a case without fixtures.
	result := writeOutput(t, t.TempDir(), map[string]string{"test.css": "a{}"})

	err := NewValidator().Validate(tc, result)
	assert.Equal(t, models.ErrFixturesMissing, caseErrorType(t, err))
	assert.Contains(t, err.Error(), "at least one")
}

func TestValidatePrefixedFixtures(t *testing.T) {
	tc := writeCase(t, t.TempDir(), "multi", map[string]string{
		"expected.css":     "a{}",
		"mainexpected.css": "b{}",
		"expected.css.bak": "ignored",
	})

	result := writeOutput(t, t.TempDir(), map[string]string{
		"test.css":     "a{}",
		"test.maincss": "b{}",
	})
	require.NoError(t, NewValidator().Validate(tc, result))
}

func TestValidateReportsAllMismatches(t *testing.T) {
	tc := writeCase(t, t.TempDir(), "multi", map[string]string{
		"expected.css":     "a{}",
		"mainexpected.css": "b{}",
	})
	result := writeOutput(t, t.TempDir(), map[string]string{
		"test.css":     "x{}",
		"test.maincss": "y{}",
	})

	err := NewValidator().Validate(tc, result)
	assert.Equal(t, models.ErrContentMismatch, caseErrorType(t, err))
	assert.Contains(t, err.Error(), "expected.css does not equal test.css")
	assert.Contains(t, err.Error(), "mainexpected.css does not equal test.maincss")
}

func TestValidateKeepsMismatchesPastUnreadableFixture(t *testing.T) {
	tc := writeCase(t, t.TempDir(), "partial", map[string]string{
		"expected.css":  "a{}",
		"zexpected.css": "z{}",
	})
	// A directory with a fixture name cannot be read as a file.
	require.NoError(t, os.Mkdir(filepath.Join(tc.Dir, "mexpected.css"), 0755))
	result := writeOutput(t, t.TempDir(), map[string]string{
		"test.css":  "x{}",
		"test.mcss": "m{}",
		"test.zcss": "y{}",
	})

	err := NewValidator().Validate(tc, result)
	assert.Equal(t, models.ErrContentMismatch, caseErrorType(t, err))
	assert.Contains(t, err.Error(), "expected.css does not equal test.css")
	assert.Contains(t, err.Error(), "reading fixture mexpected.css")
	assert.Contains(t, err.Error(), "zexpected.css does not equal test.zcss")

	// Without mismatches the read failure is reported on its own.
	result = writeOutput(t, t.TempDir(), map[string]string{
		"test.css":  "a{}",
		"test.mcss": "m{}",
		"test.zcss": "z{}",
	})
	err = NewValidator().Validate(tc, result)
	assert.Equal(t, models.ErrInternalError, caseErrorType(t, err))
	assert.Contains(t, err.Error(), "reading fixture mexpected.css")
}

func TestValidateMissingOutput(t *testing.T) {
	tc := writeCase(t, t.TempDir(), "missing", map[string]string{"expected.css": "a{}"})
	result := writeOutput(t, t.TempDir(), nil)

	err := NewValidator().Validate(tc, result)
	assert.Equal(t, models.ErrOutputMissing, caseErrorType(t, err))
	assert.Contains(t, err.Error(), "test.css")
}

func TestSubstituteHashIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"a{}",
		"%%unit-hash%%",
		"url(a.%%unit-hash%%.png) url(b.%%unit-hash%%.png)",
		"%%unit-hash%unit-hash%%",
	}
	for _, in := range inputs {
		once := SubstituteHash(in, "abc123")
		assert.Equal(t, once, SubstituteHash(once, "abc123"), in)
		assert.NotContains(t, once, models.HashPlaceholder, in)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a", Normalize("a\n"))
	assert.Equal(t, "a", Normalize("a"))
	assert.Equal(t, "a\n", Normalize("a\n\n"))
	assert.Equal(t, "a\r", Normalize("a\r\n"))
}
