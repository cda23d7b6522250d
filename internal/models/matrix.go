package models

import "time"

// MatrixConfig represents the parsed matrix.yaml configuration.
type MatrixConfig struct {
	Name              *string              `yaml:"name,omitempty" json:"name,omitempty"`
	WorkDir           string               `yaml:"work_dir" json:"work_dir"`
	FixturesDir       string               `yaml:"fixtures_dir" json:"fixtures_dir"`
	OutputDir         string               `yaml:"output_dir" json:"output_dir"`
	ResultsDir        string               `yaml:"results_dir" json:"results_dir"`
	CaseTimeoutSec    float64              `yaml:"case_timeout_sec" json:"case_timeout_sec"`
	InstallTimeoutSec float64              `yaml:"install_timeout_sec" json:"install_timeout_sec"`
	FailFast          bool                 `yaml:"fail_fast" json:"fail_fast"`
	Environment       EnvironmentConfig    `yaml:"environment" json:"environment"`
	PackageManager    PackageManagerConfig `yaml:"package_manager" json:"package_manager"`
	Builder           BuilderConfig        `yaml:"builder" json:"builder"`
	OverrideFiles     []string             `yaml:"override_files,omitempty" json:"override_files,omitempty"`
	BaseConfig        map[string]any       `yaml:"base_config" json:"base_config"`
	Versions          []VersionSet         `yaml:"versions" json:"versions"`
}

// EnvironmentConfig selects where installs and builds execute.
type EnvironmentConfig struct {
	Type  string            `yaml:"type" json:"type"`
	Image string            `yaml:"image,omitempty" json:"image,omitempty"`
	Env   map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
}

// PackageManagerConfig describes the host package manager used for installs.
type PackageManagerConfig struct {
	Command     string   `yaml:"command" json:"command"`
	InstallArgs []string `yaml:"install_args" json:"install_args"`
	ModulesDir  string   `yaml:"modules_dir" json:"modules_dir"`
}

// BuilderConfig describes how the build tool is driven.
type BuilderConfig struct {
	Command string `yaml:"command" json:"command"`
	Tool    string `yaml:"tool" json:"tool"`
	Plugin  string `yaml:"plugin,omitempty" json:"plugin,omitempty"`
}

// CaseResult is the outcome of one case under one version set.
type CaseResult struct {
	Name        string       `json:"name"`
	Hash        string       `json:"hash,omitempty"`
	Error       *CaseError   `json:"error"`
	DurationSec float64      `json:"duration_sec"`
	Build       *BuildResult `json:"-"`
}

// Passed reports whether the case produced output matching every fixture.
func (r CaseResult) Passed() bool {
	return r.Error == nil
}

// VersionSetResult collects every case run under one installed version set.
type VersionSetResult struct {
	Index        int               `json:"index"`
	VersionSet   VersionSet        `json:"version_set"`
	Resolved     map[string]string `json:"resolved,omitempty"`
	Mismatched   []string          `json:"mismatched,omitempty"`
	InstallError *CaseError        `json:"install_error,omitempty"`
	Cases        []CaseResult      `json:"cases"`
	Skipped      int               `json:"skipped"`
	DurationSec  float64           `json:"duration_sec"`
}

// Failed returns the number of failed cases.
func (r VersionSetResult) Failed() int {
	n := 0
	for _, c := range r.Cases {
		if !c.Passed() {
			n++
		}
	}
	return n
}

// Passed reports whether the set installed and every case passed.
func (r VersionSetResult) Passed() bool {
	return r.InstallError == nil && r.Skipped == 0 && r.Failed() == 0
}

// MatrixResult contains aggregate outcomes across all version sets.
type MatrixResult struct {
	Name             string             `json:"name"`
	Aborted          bool               `json:"aborted"`
	Cancelled        bool               `json:"cancelled"`
	TotalCases       int                `json:"total_cases"`
	PassedCases      int                `json:"passed_cases"`
	FailedCases      int                `json:"failed_cases"`
	SkippedCases     int                `json:"skipped_cases"`
	TotalDurationSec float64            `json:"total_duration_sec"`
	StartedAt        time.Time          `json:"started_at"`
	EndedAt          time.Time          `json:"ended_at"`
	VersionSets      []VersionSetResult `json:"version_sets"`
}

// Passed reports whether every version set ran to completion without failures.
func (r *MatrixResult) Passed() bool {
	if r.Aborted || r.Cancelled {
		return false
	}
	for _, vs := range r.VersionSets {
		if !vs.Passed() {
			return false
		}
	}
	return true
}
