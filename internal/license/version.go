package license

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MajorVersion extracts the major version from a client-reported app version
// string such as "1.2.3". Unparsable input defaults to 1 so that old clients
// which report nothing sensible still validate against a v1 license.
func MajorVersion(appVersion string) int {
	appVersion = strings.TrimSpace(strings.TrimPrefix(appVersion, "v"))

	if v, err := semver.NewVersion(appVersion); err == nil {
		return int(v.Major())
	}

	// Fall back to the integer before the first dot ("2" in "2.0-beta").
	head, _, _ := strings.Cut(appVersion, ".")
	if n, err := strconv.Atoi(head); err == nil && n > 0 {
		return n
	}

	return 1
}
