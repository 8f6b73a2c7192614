//go:build !windows

package sync

import (
	"context"
	"os/exec"
	"regexp"
	"time"

	"github.com/oshokin/chromedriver-sync/internal/logger"
)

var (
	// browserBinaries are the executable names probed for an installed browser.
	browserBinaries = []string{
		"google-chrome",
		"chrome",
		"chromium",
		"chromium-browser",
	}

	// reportedVersionPattern extracts the dotted version from `--version` output.
	reportedVersionPattern = regexp.MustCompile(`\d+\.\d+\.\d+\.\d+`)
)

// probeCommandTimeout bounds each `--version` invocation.
const probeCommandTimeout = 10 * time.Second

// probeInstalledVersion locates a browser binary on PATH and parses the
// version it reports.
func probeInstalledVersion(ctx context.Context) (string, error) {
	for _, binary := range browserBinaries {
		binaryPath, err := exec.LookPath(binary)
		if err != nil {
			logger.DebugKV(ctx, "Browser binary not on PATH", "binary", binary)
			continue
		}

		cmdCtx, cancel := context.WithTimeout(ctx, probeCommandTimeout)

		output, err := exec.CommandContext(cmdCtx, binaryPath, "--version").Output()

		cancel()

		if err != nil {
			logger.DebugKV(ctx, "Browser did not report a version", "binary", binaryPath, "error", err)
			continue
		}

		if version := reportedVersionPattern.FindString(string(output)); version != "" {
			return version, nil
		}
	}

	return "", newErrorf(StatusBrowserNotFound, "no browser binary found on PATH")
}
