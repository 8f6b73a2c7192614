package sync

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestExitCode verifies the 1:1 mapping between stage failures and process
// exit codes, which downstream tooling inspects.
func TestExitCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, ExitCode(nil))

	statuses := []Status{
		StatusBrowserNotFound,
		StatusCatalogUnavailable,
		StatusLinkNotFound,
		StatusDownloadFailed,
		StatusInstallTargetMissing,
		StatusExtractionFailed,
		StatusInjectionFailed,
	}
	for _, status := range statuses {
		require.Equal(t, int(status), ExitCode(newErrorf(status, "boom")))
	}

	// Errors outside the protocol map to a plain failure.
	require.Equal(t, 1, ExitCode(errors.New("flag misuse")))
}

// TestStatusFromError checks extraction through wrapped error chains.
func TestStatusFromError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("stage gate: %w", newErrorf(StatusLinkNotFound, "no entry"))

	status, ok := StatusFromError(wrapped)
	require.True(t, ok)
	require.Equal(t, StatusLinkNotFound, status)

	_, ok = StatusFromError(errors.New("unrelated"))
	require.False(t, ok)

	status, ok = StatusFromError(nil)
	require.True(t, ok)
	require.Equal(t, StatusOK, status)
}

// TestErrorMessage ensures the cause survives in the rendered message.
func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := newError(StatusDownloadFailed, errors.New("connection reset"))
	require.Contains(t, err.Error(), "download failed")
	require.Contains(t, err.Error(), "connection reset")
	require.ErrorContains(t, errors.Unwrap(err), "connection reset")
}
