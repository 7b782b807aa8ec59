// Package version reports the build version.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Current is stamped at build time with
// -ldflags "-X github.com/chamberirc/chamberbnc/internal/shared/version.Current=v1.2.3".
var Current = "dev"

// Normalize ensures version string has "v" prefix for semver compatibility.
// Examples: "1.2.3" -> "v1.2.3", "v1.2.3" -> "v1.2.3"
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// String returns Current in canonical semver form, or unchanged for
// development builds.
func String() string {
	v := Normalize(Current)
	if !semver.IsValid(v) {
		return Current
	}
	return semver.Canonical(v)
}

// IsRelease reports whether the binary carries a release version rather
// than a prerelease or development build.
func IsRelease() bool {
	v := Normalize(Current)
	return semver.IsValid(v) && semver.Prerelease(v) == ""
}
