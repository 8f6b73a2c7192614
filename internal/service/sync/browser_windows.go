//go:build windows

package sync

import (
	"context"

	"golang.org/x/sys/windows/registry"

	"github.com/oshokin/chromedriver-sync/internal/logger"
)

// versionRegistrySources are the registry locations holding the installed
// Chrome product version, in probe order. BLBeacon is maintained by the
// browser itself and is the most reliable; the uninstall keys cover
// system-wide installs.
var versionRegistrySources = []struct {
	root  registry.Key
	path  string
	value string
}{
	{registry.CURRENT_USER, `Software\Google\Chrome\BLBeacon`, "version"},
	{registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\Google Chrome`, "DisplayVersion"},
	{registry.LOCAL_MACHINE, `SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall\Google Chrome`, "DisplayVersion"},
}

// probeInstalledVersion reads the installed browser version from the registry.
func probeInstalledVersion(ctx context.Context) (string, error) {
	for _, source := range versionRegistrySources {
		key, err := registry.OpenKey(source.root, source.path, registry.QUERY_VALUE)
		if err != nil {
			logger.DebugKV(ctx, "Registry key not readable", "path", source.path, "error", err)
			continue
		}

		value, _, err := key.GetStringValue(source.value)

		_ = key.Close()

		if err != nil || value == "" {
			continue
		}

		return value, nil
	}

	return "", newErrorf(StatusBrowserNotFound, "browser version not present in registry")
}
