package integration

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/chromedriver-sync/internal/config"
	syncsvc "github.com/oshokin/chromedriver-sync/internal/service/sync"
)

// catalogDocument is the catalog served by the test endpoint. The archive URL
// is substituted per test server.
const catalogDocument = `{
	"timestamp": "2024-01-02T03:04:05.000Z",
	"builds": {
		"120.0.6099": {
			"version": "120.0.6099.109",
			"downloads": {
				"chrome": [
					{"platform": "linux64", "url": "%[1]s/chrome-linux64.zip"}
				],
				"chromedriver": [
					{"platform": "win32", "url": "%[1]s/win32/chromedriver.zip"},
					{"platform": "linux64", "url": "%[1]s/chromedriver.zip"}
				]
			}
		}
	}
}`

// driverArchive builds a zip laid out like the CDN ships them:
// one subdirectory holding the driver binary and a license file.
func driverArchive(t *testing.T, body []byte) []byte {
	t.Helper()

	var buf bytes.Buffer

	archive := zip.NewWriter(&buf)

	entry, err := archive.Create("chromedriver-linux64/chromedriver")
	require.NoError(t, err)

	_, err = entry.Write(body)
	require.NoError(t, err)

	license, err := archive.Create("chromedriver-linux64/LICENSE.chromedriver")
	require.NoError(t, err)

	_, err = license.Write([]byte("license"))
	require.NoError(t, err)

	require.NoError(t, archive.Close())

	return buf.Bytes()
}

// testEnvironment wires an HTTP server serving catalog plus archive and a
// settings file pointing at it.
type testEnvironment struct {
	server        *httptest.Server
	configPath    string
	installTarget string
	tempDir       string
	logFile       string
	downloadHits  *atomic.Int64
}

func newTestEnvironment(t *testing.T, driverBody []byte) *testEnvironment {
	t.Helper()

	dir := t.TempDir()

	env := &testEnvironment{
		installTarget: filepath.Join(dir, "toolkit"),
		tempDir:       filepath.Join(dir, "temp"),
		logFile:       filepath.Join(dir, "logs", "sync.log"),
		configPath:    filepath.Join(dir, config.DefaultConfigFilename),
		downloadHits:  new(atomic.Int64),
	}

	require.NoError(t, os.MkdirAll(env.installTarget, 0o755))
	require.NoError(t, os.MkdirAll(env.tempDir, 0o755))

	archiveBytes := driverArchive(t, driverBody)

	mux := http.NewServeMux()
	mux.HandleFunc("/catalog.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(renderCatalog(env.server.URL)))
	})
	mux.HandleFunc("/chromedriver.zip", func(w http.ResponseWriter, _ *http.Request) {
		env.downloadHits.Add(1)
		_, _ = w.Write(archiveBytes)
	})

	env.server = httptest.NewServer(mux)
	t.Cleanup(env.server.Close)

	cfg := &config.Config{
		CatalogURL:    env.server.URL + "/catalog.json",
		Platform:      "linux64",
		InstallTarget: env.installTarget,
		TempDir:       env.tempDir,
		LogFile:       env.logFile,
	}

	require.NoError(t, config.Save(env.configPath, cfg))

	return env
}

func renderCatalog(serverURL string) string {
	return fmt.Sprintf(catalogDocument, serverURL)
}

// TestSync_Run_InstallsMatchingDriver covers the happy path: a catalog entry
// matching the browser's version prefix is downloaded, extracted and moved
// into the install target, and the run is idempotent.
func TestSync_Run_InstallsMatchingDriver(t *testing.T) {
	t.Parallel()

	driverBody := []byte("chromedriver build 120.0.6099.109")
	env := newTestEnvironment(t, driverBody)

	options := &syncsvc.Options{
		ConfigPath:     env.configPath,
		BrowserVersion: "120.0.6099.109",
	}

	err := syncsvc.Run(context.Background(), options)
	require.NoError(t, err)
	require.Equal(t, 0, syncsvc.ExitCode(err))

	installedPath := filepath.Join(env.installTarget, "chromedriver")

	installed, err := os.ReadFile(installedPath)
	require.NoError(t, err)
	require.Equal(t, driverBody, installed)

	// Artifact and scratch directory are cleaned up after success.
	_, err = os.Stat(filepath.Join(env.tempDir, config.ArtifactFilename))
	require.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(env.tempDir, config.ScratchDirname))
	require.True(t, os.IsNotExist(err))

	// The run leaves a diagnostic trail in the configured log file.
	trail, err := os.ReadFile(env.logFile)
	require.NoError(t, err)
	require.NotEmpty(t, trail)

	// A second run with unchanged browser and catalog resolves the same URL
	// and replaces the same file.
	require.NoError(t, syncsvc.Run(context.Background(), options))

	installed, err = os.ReadFile(installedPath)
	require.NoError(t, err)
	require.Equal(t, driverBody, installed)
	require.Equal(t, int64(2), env.downloadHits.Load())
}

// TestSync_Run_UnknownVersionPrefix covers a browser newer than the catalog:
// resolution fails with the link-not-found code and nothing is downloaded.
func TestSync_Run_UnknownVersionPrefix(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t, []byte("unused"))

	err := syncsvc.Run(context.Background(), &syncsvc.Options{
		ConfigPath:     env.configPath,
		BrowserVersion: "999.0.0.0",
	})
	require.Error(t, err)
	require.Equal(t, 47, syncsvc.ExitCode(err))
	require.Contains(t, err.Error(), "999.0.0")
	require.Equal(t, int64(0), env.downloadHits.Load())
}

// TestSync_Run_CatalogUnavailable covers an unreachable catalog endpoint:
// the run stops at the resolution gate.
func TestSync_Run_CatalogUnavailable(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t, []byte("unused"))

	// Point the settings at a server that is already gone.
	deadServer := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	deadServer.Close()

	cfg, err := config.Load(env.configPath)
	require.NoError(t, err)

	cfg.CatalogURL = deadServer.URL + "/catalog.json"
	require.NoError(t, config.Save(env.configPath, cfg))

	err = syncsvc.Run(context.Background(), &syncsvc.Options{
		ConfigPath:     env.configPath,
		BrowserVersion: "120.0.6099.109",
	})
	require.Error(t, err)
	require.Equal(t, 46, syncsvc.ExitCode(err))
	require.Equal(t, int64(0), env.downloadHits.Load())
}

// TestSync_Run_InstallTargetMissing covers an absent toolkit directory:
// the run stops before any download or extraction happens.
func TestSync_Run_InstallTargetMissing(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t, []byte("unused"))
	require.NoError(t, os.RemoveAll(env.installTarget))

	err := syncsvc.Run(context.Background(), &syncsvc.Options{
		ConfigPath:     env.configPath,
		BrowserVersion: "120.0.6099.109",
	})
	require.Error(t, err)
	require.Equal(t, 49, syncsvc.ExitCode(err))

	// The target gate fires before the download stage.
	require.Equal(t, int64(0), env.downloadHits.Load())

	_, err = os.Stat(filepath.Join(env.tempDir, config.ScratchDirname))
	require.True(t, os.IsNotExist(err))
}
