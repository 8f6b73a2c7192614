package elevation

import (
	"context"

	"github.com/oshokin/chromedriver-sync/internal/logger"
)

// RelaunchIfNeeded re-executes the current binary with elevated privileges
// when the platform requires it for writing into the install target.
// It returns true when a relaunch was started: the caller must then exit
// silently and let the child process run the flow. This is a one-shot
// handover, never a retry loop.
func RelaunchIfNeeded(ctx context.Context) (bool, error) {
	if !required() {
		return false, nil
	}

	logger.Info(ctx, "Relaunching with elevated privileges")

	if err := relaunch(); err != nil {
		return false, err
	}

	return true, nil
}
