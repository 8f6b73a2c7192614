package sync

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/oshokin/chromedriver-sync/internal/config"
	"github.com/oshokin/chromedriver-sync/internal/logger"
)

// Options are inputs accepted by the sync entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// BrowserVersion overrides the probed browser version when non-empty.
	BrowserVersion string
}

// runner holds the state for a single sync execution.
// It is intentionally unexported—call Run(ctx, Options) from callers.
type runner struct {
	cfg *config.Config
	// probe reads the installed browser version; replaced in tests.
	probe func(ctx context.Context) (string, error)
	// catalogClient carries the configured timeout for the catalog request.
	catalogClient *http.Client
	// downloadClient has no overall timeout; large archive downloads are
	// bounded by context cancellation only.
	downloadClient *http.Client
}

// Run executes the sync flow and is the public entry point for the CLI.
// Every stage is a hard gate: the first failure terminates the run and its
// status becomes the process exit code.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "chromedriver-sync")

	r, err := newRunner(opts)
	if err != nil {
		logger.ErrorKV(ctx, "Sync could not start", "error", err)
		return err
	}

	if r.cfg.LogFile != "" {
		ctx = r.attachLogFile(ctx)
	}

	defer r.cleanup(ctx)

	if err = r.run(ctx, opts); err != nil {
		logger.ErrorKV(ctx, "Sync run failed", "error", err)
		return err
	}

	logger.Info(ctx, "Driver binary is synchronized with the installed browser")

	return nil
}

// newRunner loads settings and prepares the HTTP clients.
func newRunner(opts *Options) (*runner, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	return &runner{
		cfg:            settings,
		probe:          probeInstalledVersion,
		catalogClient:  &http.Client{Timeout: settings.Timeout},
		downloadClient: &http.Client{},
	}, nil
}

// attachLogFile scopes the context logger to one that also appends to the
// configured diagnostic log file. A log file that cannot be opened is not
// fatal: the run itself matters more than its trail.
func (r *runner) attachLogFile(ctx context.Context) context.Context {
	fileLogger, err := logger.NewWithFile(nil, r.cfg.LogFile)
	if err != nil {
		logger.Warnf(ctx, "Could not open log file %s: %v", r.cfg.LogFile, err)
		return ctx
	}

	return logger.WithName(logger.ToContext(ctx, fileLogger), "chromedriver-sync")
}

// run walks the four stages in order:
// 1) Probe the installed browser version.
// 2) Resolve the version prefix against the remote catalog.
// 3) Verify the install target, then download the archive.
// 4) Extract it and move the driver binary into place.
func (r *runner) run(ctx context.Context, opts *Options) error {
	version, err := r.detectBrowserVersion(ctx, opts)
	if err != nil {
		return err
	}

	prefix, err := VersionPrefix(version)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Detected installed browser", "version", version, "prefix", prefix)

	downloadURL, err := r.resolveDriverURL(ctx, prefix)
	if err != nil {
		return err
	}

	// The target gate runs before the download: if the toolkit is not
	// installed there is nothing to update and no point fetching anything.
	if err = ensureInstallTarget(r.cfg.InstallTarget); err != nil {
		return err
	}

	if err = downloadArtifact(ctx, r.downloadClient, downloadURL, r.cfg.ArtifactPath()); err != nil {
		return err
	}

	if err = extractArchive(ctx, r.cfg.ArtifactPath(), r.cfg.ScratchDir()); err != nil {
		return err
	}

	extractedPath := filepath.Join(r.cfg.ScratchDir(), r.cfg.ArchiveSubdirectory(), r.cfg.DriverFilename())
	targetPath := filepath.Join(r.cfg.InstallTarget, r.cfg.DriverFilename())

	return injectDriver(ctx, extractedPath, targetPath)
}

// detectBrowserVersion returns the override version if one was supplied,
// otherwise probes the local system.
func (r *runner) detectBrowserVersion(ctx context.Context, opts *Options) (string, error) {
	if opts.BrowserVersion != "" {
		logger.InfoKV(ctx, "Using browser version override", "version", opts.BrowserVersion)
		return opts.BrowserVersion, nil
	}

	return r.probe(ctx)
}

// resolveDriverURL fetches a fresh catalog and resolves the platform-specific
// driver download for the version prefix.
func (r *runner) resolveDriverURL(ctx context.Context, prefix string) (string, error) {
	catalog, err := fetchCatalog(ctx, r.catalogClient, r.cfg.CatalogURL)
	if err != nil {
		return "", err
	}

	downloadURL, err := catalog.DriverURL(prefix, r.cfg.Platform)
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Resolved driver download", "url", downloadURL, "platform", r.cfg.Platform)

	return downloadURL, nil
}

// cleanup removes the downloaded archive and the scratch directory.
// Deletion failures are deliberately not surfaced as process failures.
func (r *runner) cleanup(ctx context.Context) {
	if _, err := os.Stat(r.cfg.ArtifactPath()); err == nil {
		if err = os.Remove(r.cfg.ArtifactPath()); err != nil {
			logger.DebugKV(ctx, "Could not delete downloaded archive", "error", err)
		}
	}

	if _, err := os.Stat(r.cfg.ScratchDir()); err == nil {
		if err = os.RemoveAll(r.cfg.ScratchDir()); err != nil {
			logger.DebugKV(ctx, "Could not delete extraction directory", "error", err)
		}
	}
}
