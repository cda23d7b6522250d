package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spachava753/pluginmatrix/internal/fixture"
	"github.com/spachava753/pluginmatrix/internal/installer"
	"github.com/spachava753/pluginmatrix/internal/models"
)

// VersionInstaller installs one version set into the shared dependency tree.
type VersionInstaller interface {
	Install(ctx context.Context, vs models.VersionSet) error
}

// CaseBuilder builds one test case.
type CaseBuilder interface {
	Run(ctx context.Context, tc models.TestCase) (*models.BuildResult, error)
}

// OutputValidator checks a finished build against the case fixtures.
type OutputValidator interface {
	Validate(tc models.TestCase, result *models.BuildResult) error
}

// Components are the collaborators driven by a MatrixRunner.
type Components struct {
	Installer VersionInstaller
	Cases     CaseBuilder
	Validator OutputValidator

	// Registry is optional; when set, resolved versions are recorded per
	// version set and checked against the requested specifiers.
	Registry *installer.Registry
}

// MatrixRunner walks the version matrix with a single worker: each version
// set is installed, then every case is built and validated, before the next
// install starts. Installs rewrite the shared dependency tree and every cycle
// reuses one output root, so nothing here may run concurrently.
type MatrixRunner struct {
	cfg   models.MatrixConfig
	c     Components
	name  string
	cases []string
}

// NewMatrixRunner creates a runner. When caseFilter is non-empty only the
// named cases are run.
func NewMatrixRunner(cfg models.MatrixConfig, c Components, caseFilter ...string) *MatrixRunner {
	return &MatrixRunner{cfg: cfg, c: c, name: runName(cfg), cases: caseFilter}
}

// Name returns the run name used for result persistence.
func (o *MatrixRunner) Name() string {
	return o.name
}

// Run executes the whole matrix. An install failure aborts the remaining
// matrix; the partial result is returned together with the error.
func (o *MatrixRunner) Run(ctx context.Context) (*models.MatrixResult, error) {
	result := &models.MatrixResult{
		Name:      o.name,
		StartedAt: time.Now(),
	}
	defer func() {
		result.EndedAt = time.Now()
		result.TotalDurationSec = result.EndedAt.Sub(result.StartedAt).Seconds()
		aggregate(result)
	}()

	for i, vs := range o.cfg.Versions {
		if ctx.Err() != nil {
			result.Cancelled = true
			slog.Warn("run cancelled, skipping remaining version sets", "remaining", len(o.cfg.Versions)-i)
			break
		}

		vsResult, err := o.runVersionSet(ctx, i, vs)
		result.VersionSets = append(result.VersionSets, *vsResult)
		if err != nil {
			if ctx.Err() != nil {
				result.Cancelled = true
				slog.Warn("run cancelled during version set", "versions", vs.String(), "error", err)
				break
			}
			result.Aborted = true
			return result, err
		}
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}
		if !vsResult.Passed() {
			slog.Warn("version set failed", "versions", vs.String(), "failed", vsResult.Failed())
			if o.cfg.FailFast {
				slog.Warn("fail_fast set, stopping matrix", "remaining", len(o.cfg.Versions)-i-1)
				break
			}
		}
	}

	return result, nil
}

func (o *MatrixRunner) runVersionSet(ctx context.Context, index int, vs models.VersionSet) (*models.VersionSetResult, error) {
	start := time.Now()
	res := &models.VersionSetResult{Index: index, VersionSet: vs}
	defer func() {
		res.DurationSec = time.Since(start).Seconds()
	}()

	if err := o.c.Installer.Install(ctx, vs); err != nil {
		// An interrupted install is not an install failure.
		if ctx.Err() == nil {
			res.InstallError = models.NewCaseError(models.ErrInstallFailed, err)
		}
		return res, fmt.Errorf("installing %s: %w", vs, err)
	}

	if o.c.Registry != nil {
		o.recordResolutions(ctx, vs, res)
	}

	if err := ClearOutput(o.cfg.OutputDir); err != nil {
		return res, err
	}

	cases, err := fixture.Discover(o.cfg.FixturesDir)
	if err != nil {
		return res, fmt.Errorf("discovering cases: %w", err)
	}
	cases, err = o.filter(cases)
	if err != nil {
		return res, err
	}
	slog.Info("running cases", "versions", vs.String(), "cases", len(cases))

	for _, tc := range cases {
		if ctx.Err() != nil {
			res.Skipped++
			continue
		}
		cr := o.runCase(ctx, tc)
		if cr.Passed() {
			slog.Info("case passed", "case", tc.Name, "hash", cr.Hash, "dur", time.Duration(cr.DurationSec*float64(time.Second)))
		} else {
			slog.Error("case failed", "case", tc.Name, "type", cr.Error.Type, "error", cr.Error.Message)
		}
		res.Cases = append(res.Cases, cr)
	}

	return res, nil
}

func (o *MatrixRunner) runCase(ctx context.Context, tc models.TestCase) models.CaseResult {
	start := time.Now()
	cr := models.CaseResult{Name: tc.Name}
	defer func() {
		cr.DurationSec = time.Since(start).Seconds()
	}()

	build, err := o.c.Cases.Run(ctx, tc)
	if err != nil {
		cr.Error = asCaseError(err)
		return cr
	}
	cr.Hash = build.Hash
	cr.Build = build

	if err := o.c.Validator.Validate(tc, build); err != nil {
		cr.Error = asCaseError(err)
	}
	return cr
}

func (o *MatrixRunner) recordResolutions(ctx context.Context, vs models.VersionSet, res *models.VersionSetResult) {
	resolved, err := o.c.Registry.ResolveAll(ctx, vs.Names())
	if err != nil {
		slog.Warn("could not resolve installed versions", "error", err)
		return
	}
	res.Resolved = make(map[string]string, len(resolved))
	for _, r := range vs {
		version := resolved[r.Name].Version
		res.Resolved[r.Name] = version
		if !installer.Satisfies(r.Version, version) {
			res.Mismatched = append(res.Mismatched, r.Name)
			slog.Warn("installed version does not match request", "name", r.Name, "requested", r.Version, "installed", version)
		}
	}
}

func (o *MatrixRunner) filter(cases []models.TestCase) ([]models.TestCase, error) {
	if len(o.cases) == 0 {
		return cases, nil
	}
	var out []models.TestCase
	for _, tc := range cases {
		if slices.Contains(o.cases, tc.Name) {
			out = append(out, tc)
		}
	}
	for _, name := range o.cases {
		if !slices.ContainsFunc(out, func(tc models.TestCase) bool { return tc.Name == name }) {
			return nil, fmt.Errorf("case %q not found in %s", name, o.cfg.FixturesDir)
		}
	}
	return out, nil
}

func asCaseError(err error) *models.CaseError {
	var caseErr *models.CaseError
	if errors.As(err, &caseErr) {
		return caseErr
	}
	return models.NewCaseError(models.ErrInternalError, err)
}

func aggregate(r *models.MatrixResult) {
	r.TotalCases, r.PassedCases, r.FailedCases, r.SkippedCases = 0, 0, 0, 0
	for _, vs := range r.VersionSets {
		r.SkippedCases += vs.Skipped
		for _, c := range vs.Cases {
			r.TotalCases++
			if c.Passed() {
				r.PassedCases++
			} else {
				r.FailedCases++
			}
		}
	}
	r.TotalCases += r.SkippedCases
}

func runName(cfg models.MatrixConfig) string {
	if cfg.Name != nil && *cfg.Name != "" {
		return *cfg.Name
	}
	return time.Now().Format("2006-01-02__15-04-05")
}
