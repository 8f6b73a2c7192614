package sync

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/oshokin/chromedriver-sync/internal/logger"
)

// Catalog is the remote metadata document mapping MAJOR.MINOR.BUILD prefixes
// to per-platform downloads. It is fetched fresh on every run, never cached.
type Catalog struct {
	// Timestamp is the catalog generation time reported by the endpoint.
	Timestamp string `json:"timestamp"`
	// Builds maps version prefixes to their available downloads.
	Builds map[string]CatalogBuild `json:"builds"`
}

// CatalogBuild describes the downloads published for one version prefix.
type CatalogBuild struct {
	// Version is the full patch version the entry was built from.
	Version string `json:"version"`
	// Downloads groups the entry's artifacts by type.
	Downloads CatalogDownloads `json:"downloads"`
}

// CatalogDownloads groups download entries per artifact type.
type CatalogDownloads struct {
	// Chrome lists browser builds; present in the document but unused here.
	Chrome []CatalogEntry `json:"chrome"`
	// Chromedriver lists driver builds per platform.
	Chromedriver []CatalogEntry `json:"chromedriver"`
}

// CatalogEntry is a single platform-specific download.
type CatalogEntry struct {
	// Platform is the catalog platform label, e.g. "win32".
	Platform string `json:"platform"`
	// URL is the direct download location of the archive.
	URL string `json:"url"`
}

// fetchCatalog retrieves and parses the catalog document. Any transport
// error, non-success status or empty/unparseable body is terminal.
func fetchCatalog(ctx context.Context, client *http.Client, catalogURL string) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, catalogURL, http.NoBody)
	if err != nil {
		return nil, newError(StatusCatalogUnavailable, err)
	}

	response, err := client.Do(req)
	if err != nil {
		return nil, newError(StatusCatalogUnavailable, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, newErrorf(StatusCatalogUnavailable, "%s: %s", catalogURL, response.Status)
	}

	var catalog Catalog
	if err = json.NewDecoder(response.Body).Decode(&catalog); err != nil {
		return nil, newErrorf(StatusCatalogUnavailable, "parse catalog: %w", err)
	}

	if len(catalog.Builds) == 0 {
		return nil, newErrorf(StatusCatalogUnavailable, "catalog at %s contains no builds", catalogURL)
	}

	logger.InfoKV(ctx, "Fetched driver catalog",
		"builds", len(catalog.Builds), "timestamp", catalog.Timestamp)

	return &catalog, nil
}

// DriverURL resolves the driver download for the given version prefix and
// platform. Matching is an exact 3-part prefix lookup: a browser newer than
// any catalog entry does not fall back to the nearest older build.
func (c *Catalog) DriverURL(prefix, platform string) (string, error) {
	build, ok := c.Builds[prefix]
	if !ok {
		return "", newErrorf(StatusLinkNotFound, "catalog has no entry for version prefix %s", prefix)
	}

	for _, entry := range build.Downloads.Chromedriver {
		if entry.Platform == platform {
			return entry.URL, nil
		}
	}

	return "", newErrorf(StatusLinkNotFound,
		"catalog entry for version prefix %s has no %s driver download", prefix, platform)
}
