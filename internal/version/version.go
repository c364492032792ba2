// Package version reports the build's version string.
package version

import "runtime/debug"

// version is set at build time via -ldflags "-X .../internal/version.version=v1.2.3".
var version = ""

// Get returns the release version, falling back to module build info for
// plain `go install` builds.
func Get() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
