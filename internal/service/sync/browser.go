package sync

import (
	"regexp"
	"strings"
)

// fullVersionPattern matches the 4-part MAJOR.MINOR.BUILD.PATCH product
// version reported by the browser.
var fullVersionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)

// versionPartCount is the number of dot-separated components in a full version.
const versionPartCount = 4

// VersionPrefix derives the MAJOR.MINOR.BUILD catalog lookup key from a full
// 4-part product version. The PATCH component is discarded, so lookups are
// insensitive to patch-level differences: "115.0.5790.102" -> "115.0.5790".
func VersionPrefix(version string) (string, error) {
	version = strings.TrimSpace(version)
	if !fullVersionPattern.MatchString(version) {
		return "", newErrorf(StatusBrowserNotFound, "unexpected browser version format %q", version)
	}

	parts := strings.Split(version, ".")

	return strings.Join(parts[:versionPartCount-1], "."), nil
}
