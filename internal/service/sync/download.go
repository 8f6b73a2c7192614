package sync

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/oshokin/chromedriver-sync/internal/logger"
)

// downloadArtifact streams the archive at downloadURL to destPath,
// overwriting any existing file there. There is no checksum verification:
// the catalog URL is trusted as-is.
func downloadArtifact(ctx context.Context, client *http.Client, downloadURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, http.NoBody)
	if err != nil {
		return newError(StatusDownloadFailed, err)
	}

	response, err := client.Do(req)
	if err != nil {
		return newError(StatusDownloadFailed, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return newErrorf(StatusDownloadFailed, "%s: %s", downloadURL, response.Status)
	}

	outputFile, err := os.Create(filepath.Clean(destPath))
	if err != nil {
		return newError(StatusDownloadFailed, err)
	}

	written, err := io.Copy(outputFile, response.Body)
	if err != nil {
		_ = outputFile.Close()

		return newError(StatusDownloadFailed, err)
	}

	if err = outputFile.Close(); err != nil {
		return newError(StatusDownloadFailed, err)
	}

	logger.InfoKV(ctx, "Downloaded driver archive", "path", destPath, "bytes", written)

	return nil
}
