package installer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"
)

// Resolution is the installed identity of one dependency.
type Resolution struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Dir     string `json:"dir"`
}

// Registry caches dependency resolutions for the whole process. Entries
// are dropped by Invalidate before a reinstall and filled lazily on the
// next Resolve, so nothing downstream sees a version from a previous install.
type Registry struct {
	modulesDir string
	entries    *xsync.Map[string, Resolution]
}

// NewRegistry creates a registry reading package manifests below modulesDir.
func NewRegistry(modulesDir string) *Registry {
	return &Registry{
		modulesDir: modulesDir,
		entries:    xsync.NewMap[string, Resolution](),
	}
}

// Invalidate drops the cached resolution of each named dependency.
func (r *Registry) Invalidate(names ...string) {
	for _, name := range names {
		r.entries.Delete(name)
	}
}

// Cached returns the number of resolutions currently held.
func (r *Registry) Cached() int {
	return r.entries.Size()
}

// Resolve returns the installed version of name, reading its manifest on
// first use after an invalidation.
func (r *Registry) Resolve(name string) (Resolution, error) {
	if res, ok := r.entries.Load(name); ok {
		return res, nil
	}

	dir := filepath.Join(r.modulesDir, filepath.FromSlash(name))
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return Resolution{}, fmt.Errorf("resolving %s: %w", name, err)
	}

	var manifest struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Resolution{}, fmt.Errorf("parsing %s manifest: %w", name, err)
	}
	if manifest.Version == "" {
		return Resolution{}, fmt.Errorf("resolving %s: manifest has no version", name)
	}

	res := Resolution{Name: name, Version: manifest.Version, Dir: dir}
	r.entries.Store(name, res)
	slog.Debug("resolved dependency", "name", name, "version", res.Version)
	return res, nil
}

// ResolveAll resolves several dependencies concurrently. It only reads
// manifests, so it is safe to call once an install has finished.
func (r *Registry) ResolveAll(ctx context.Context, names []string) (map[string]Resolution, error) {
	results := make([]Resolution, len(names))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.Resolve(name)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]Resolution, len(names))
	for _, res := range results {
		out[res.Name] = res
	}
	return out, nil
}

// Satisfies reports whether an installed version matches the requested
// specifier. Exact versions must match exactly; partial versions such as
// "3" or "3.1" match by prefix. Specifiers that are not plain versions
// (ranges, tags, URLs) are accepted as-is.
func Satisfies(requested, version string) bool {
	requested = strings.TrimPrefix(strings.TrimSpace(requested), "v")
	vReq := "v" + requested
	vVersion := "v" + strings.TrimPrefix(version, "v")
	if !semver.IsValid(vReq) {
		return true
	}
	if !semver.IsValid(vVersion) {
		return false
	}

	switch strings.Count(requested, ".") {
	case 0:
		return semver.Major(vReq) == semver.Major(vVersion)
	case 1:
		return semver.MajorMinor(vReq) == semver.MajorMinor(vVersion)
	default:
		return semver.Compare(vReq, vVersion) == 0
	}
}
