package executor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/spachava753/pluginmatrix/internal/fixture"
	"github.com/spachava753/pluginmatrix/internal/models"
)

// Validator compares produced files against a case's expected fixtures.
type Validator struct {
	// DiffContext is the number of context lines in mismatch reports.
	DiffContext int
}

// NewValidator creates a validator with three lines of diff context.
func NewValidator() *Validator {
	return &Validator{DiffContext: 3}
}

// Normalize strips a single trailing newline.
func Normalize(s string) string {
	return strings.TrimSuffix(s, "\n")
}

// SubstituteHash replaces every hash placeholder with hash.
func SubstituteHash(s, hash string) string {
	return strings.ReplaceAll(s, models.HashPlaceholder, hash)
}

// Validate checks every fixture of tc against the build output. All
// fixtures are compared; mismatches are reported together.
func (v *Validator) Validate(tc models.TestCase, result *models.BuildResult) error {
	names, err := fixture.ListFixtures(tc)
	if err != nil {
		return models.NewCaseError(models.ErrInternalError, err)
	}
	if len(names) == 0 {
		return models.NewCaseError(models.ErrFixturesMissing,
			fmt.Errorf("case %s: integration test should have at least one *%s file", tc.Name, models.ExpectedSuffix))
	}

	var mismatches, missing, unreadable []error
	for _, name := range names {
		prefix, _ := models.FixturePrefix(name)
		actualName := models.ProducedName(prefix)

		actualData, err := os.ReadFile(filepath.Join(result.OutputDir, actualName))
		if err != nil {
			missing = append(missing, fmt.Errorf("case %s: %s: produced file %s: %w", tc.Name, name, actualName, err))
			continue
		}
		expectedData, err := os.ReadFile(filepath.Join(tc.Dir, name))
		if err != nil {
			unreadable = append(unreadable, fmt.Errorf("case %s: reading fixture %s: %w", tc.Name, name, err))
			continue
		}

		actual := Normalize(string(actualData))
		expected := SubstituteHash(Normalize(string(expectedData)), result.Hash)
		if actual != expected {
			mismatches = append(mismatches, fmt.Errorf("output %s: %s does not equal %s\n%s",
				tc.Name, name, actualName, v.diff(expected, actual, name, actualName)))
		}
	}

	switch {
	case len(mismatches) > 0:
		all := append(append(mismatches, missing...), unreadable...)
		return models.NewCaseError(models.ErrContentMismatch, errors.Join(all...))
	case len(unreadable) > 0:
		return models.NewCaseError(models.ErrInternalError, errors.Join(append(unreadable, missing...)...))
	case len(missing) > 0:
		return models.NewCaseError(models.ErrOutputMissing, errors.Join(missing...))
	}
	return nil
}

func (v *Validator) diff(expected, actual, expectedName, actualName string) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: expectedName,
		ToFile:   actualName,
		Context:  v.DiffContext,
	})
	if err != nil || text == "" {
		return fmt.Sprintf("expected: %q\nactual:   %q", expected, actual)
	}
	return text
}
