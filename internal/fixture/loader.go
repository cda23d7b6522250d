// Package fixture enumerates fixture case directories and their golden files.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spachava753/pluginmatrix/internal/models"
)

// Discover lists the immediate subdirectories of root; each one is a case.
// Cases are returned sorted by name. A case need not contain any fixtures.
func Discover(root string) ([]models.TestCase, error) {
	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	entries, err := os.ReadDir(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures directory: %w", err)
	}

	var cases []models.TestCase
	for _, entry := range entries {
		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(filepath.Join(absPath, entry.Name()))
			isDir = err == nil && info.IsDir()
		}
		if !isDir {
			continue
		}
		cases = append(cases, models.TestCase{
			Name: entry.Name(),
			Dir:  filepath.Join(absPath, entry.Name()),
		})
	}

	return cases, nil
}

// ListFixtures returns the names of the expected-output files in a case
// directory, sorted.
func ListFixtures(tc models.TestCase) ([]string, error) {
	entries, err := os.ReadDir(tc.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading case directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if _, ok := models.FixturePrefix(entry.Name()); ok {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
