package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the fixed locations and endpoints used by a sync run.
// Constructing it once at process start and passing it into every stage
// replaces the scattered global paths of older updater scripts.
type Config struct {
	// CatalogURL is the versionless endpoint serving the driver catalog JSON.
	CatalogURL string `yaml:"catalog_url"`
	// Platform is the catalog platform label to match ("win32", "linux64", ...).
	Platform string `yaml:"platform"`
	// InstallTarget is the directory where the automation toolkit expects
	// the driver binary. It must already exist; the tool never creates it.
	InstallTarget string `yaml:"install_target"`
	// TempDir is the directory holding the downloaded archive and the
	// scratch extraction directory.
	TempDir string `yaml:"temp_dir"`
	// LogFile is the path of the line-oriented diagnostic log.
	// Empty disables the file sink.
	LogFile string `yaml:"log_file"`
	// Timeout bounds the catalog request.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for sync settings.
	DefaultConfigFilename = "chromedriver-sync-settings.yaml"

	// DefaultCatalogURL is the Chrome for Testing endpoint mapping
	// MAJOR.MINOR.BUILD prefixes to per-platform downloads.
	DefaultCatalogURL = "https://googlechromelabs.github.io/chrome-for-testing/" +
		"latest-patch-versions-per-build-with-downloads.json"

	// DefaultTimeout is the default duration for the catalog request.
	DefaultTimeout = 30 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// ArtifactFilename is the fixed name of the downloaded archive inside TempDir.
	ArtifactFilename = "chromedriver.zip"

	// ScratchDirname is the fixed name of the extraction directory inside TempDir.
	ScratchDirname = "chromedriver-extract"
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// Default returns settings for the current platform without reading any file.
func Default() *Config {
	cfg := new(Config)
	applyDefaults(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
// A missing file at the default path means a first run and yields Default().
func Load(path string) (*Config, error) {
	usingDefaultPath := path == ""
	if usingDefaultPath {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if usingDefaultPath && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills in platform defaults and checks the fields that have no
// usable default.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	if _, err := url.ParseRequestURI(cfg.CatalogURL); err != nil {
		return fmt.Errorf("invalid catalog URL: %w", err)
	}

	return nil
}

// applyDefaults replaces empty fields with platform defaults.
func applyDefaults(cfg *Config) {
	if cfg.CatalogURL == "" {
		cfg.CatalogURL = DefaultCatalogURL
	}

	if cfg.Platform == "" {
		cfg.Platform = defaultPlatform()
	}

	if cfg.InstallTarget == "" {
		cfg.InstallTarget = defaultInstallTarget()
	}

	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}

	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile()
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
}

// DriverFilename returns the driver executable name for the configured platform.
func (cfg *Config) DriverFilename() string {
	if strings.HasPrefix(cfg.Platform, "win") {
		return "chromedriver.exe"
	}

	return "chromedriver"
}

// ArchiveSubdirectory returns the single-level directory the archive extracts
// into, e.g. "chromedriver-win32".
func (cfg *Config) ArchiveSubdirectory() string {
	return "chromedriver-" + cfg.Platform
}

// ArtifactPath returns the fixed path of the downloaded archive.
func (cfg *Config) ArtifactPath() string {
	return filepath.Join(cfg.TempDir, ArtifactFilename)
}

// ScratchDir returns the fixed path of the extraction directory.
func (cfg *Config) ScratchDir() string {
	return filepath.Join(cfg.TempDir, ScratchDirname)
}

// defaultPlatform maps the running OS and architecture to a catalog platform label.
func defaultPlatform() string {
	switch runtime.GOOS {
	case "windows":
		if runtime.GOARCH == "amd64" {
			return "win64"
		}

		return "win32"
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return "mac-arm64"
		}

		return "mac-x64"
	default:
		return "linux64"
	}
}

// defaultInstallTarget returns the directory where the automation toolkit is
// conventionally installed on this OS.
func defaultInstallTarget() string {
	if runtime.GOOS == "windows" {
		programFiles := os.Getenv("ProgramFiles(x86)")
		if programFiles == "" {
			programFiles = `C:\Program Files (x86)`
		}

		return filepath.Join(programFiles, "SeleniumBasic")
	}

	return filepath.Join("/usr", "local", "lib", "selenium")
}

// defaultLogFile returns the OS-conventional path for the diagnostic log.
func defaultLogFile() string {
	if runtime.GOOS == "windows" {
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}

		return filepath.Join(programData, "chromedriver-sync", "chromedriver-sync.log")
	}

	return filepath.Join("/var", "log", "chromedriver-sync.log")
}
