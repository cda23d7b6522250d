package models

import "fmt"

// ErrorType identifies the category of error that occurred.
type ErrorType string

const (
	// Install phase; aborts the whole matrix
	ErrInstallFailed ErrorType = "install_failed"

	// Build phase
	ErrBuildInvocationFailed ErrorType = "build_invocation_failed"
	ErrBuildDiagnostics      ErrorType = "build_diagnostics"
	ErrBuildTimeout          ErrorType = "build_timeout"
	ErrOverrideInvalid       ErrorType = "override_invalid"

	// Validation phase
	ErrFixturesMissing ErrorType = "fixtures_missing"
	ErrOutputMissing   ErrorType = "output_missing"
	ErrContentMismatch ErrorType = "content_mismatch"

	// Catch-all
	ErrInternalError ErrorType = "internal_error"
)

// CaseError is a failure isolated to a single test case.
type CaseError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// NewCaseError wraps err with a category.
func NewCaseError(t ErrorType, err error) *CaseError {
	return &CaseError{Type: t, Message: err.Error(), Err: err}
}

func (e *CaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *CaseError) Unwrap() error {
	return e.Err
}
