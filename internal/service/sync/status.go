package sync

import (
	"errors"
	"fmt"
)

// Status identifies the outcome of a sync run. Non-zero values double as
// process exit codes consumed by configuration-management tooling, so the
// numbers are part of the external contract and must not change.
type Status int

const (
	// StatusOK means the driver was installed successfully.
	StatusOK Status = 0
	// StatusBrowserNotFound means the browser is not installed or its version is undetectable.
	StatusBrowserNotFound Status = 45
	// StatusCatalogUnavailable means the catalog endpoint was unreachable or returned no data.
	StatusCatalogUnavailable Status = 46
	// StatusLinkNotFound means the catalog has no matching download for the resolved version.
	StatusLinkNotFound Status = 47
	// StatusDownloadFailed means the archive download from the CDN failed.
	StatusDownloadFailed Status = 48
	// StatusInstallTargetMissing means the automation toolkit directory does not exist.
	StatusInstallTargetMissing Status = 49
	// StatusExtractionFailed means the downloaded archive could not be extracted.
	StatusExtractionFailed Status = 50
	// StatusInjectionFailed means the driver binary could not be moved into the install target.
	StatusInjectionFailed Status = 51
)

// String returns a short machine-friendly name for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBrowserNotFound:
		return "browser not found"
	case StatusCatalogUnavailable:
		return "catalog unavailable"
	case StatusLinkNotFound:
		return "download link not found"
	case StatusDownloadFailed:
		return "download failed"
	case StatusInstallTargetMissing:
		return "install target missing"
	case StatusExtractionFailed:
		return "extraction failed"
	case StatusInjectionFailed:
		return "injection failed"
	default:
		return fmt.Sprintf("unknown status %d", int(s))
	}
}

// Error tags a stage failure with its terminal Status. Every failure in the
// flow is one of these; the numeric exit code is produced only at the process
// boundary via ExitCode.
type Error struct {
	// Status is the terminal status of the failed stage.
	Status Status
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Status.String()
	}

	return e.Status.String() + ": " + e.Err.Error()
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError wraps a cause with a terminal status.
func newError(status Status, err error) *Error {
	return &Error{Status: status, Err: err}
}

// newErrorf builds a status error from a format string.
func newErrorf(status Status, format string, args ...any) *Error {
	return &Error{Status: status, Err: fmt.Errorf(format, args...)}
}

// StatusFromError extracts the terminal status from an error chain.
// The second return value is false for errors outside the sync protocol.
func StatusFromError(err error) (Status, bool) {
	if err == nil {
		return StatusOK, true
	}

	var stageErr *Error
	if errors.As(err, &stageErr) {
		return stageErr.Status, true
	}

	return StatusOK, false
}

// ExitCode translates an error returned by Run into the process exit code.
// Errors outside the protocol (bad flags, interrupted context) map to 1.
func ExitCode(err error) int {
	status, ok := StatusFromError(err)
	if !ok {
		return 1
	}

	return int(status)
}
