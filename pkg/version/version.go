// Package version exposes build information for netfabric binaries.
package version

import "runtime/debug"

// Stamped at build time via -ldflags "-X ...version.Version=v1.2.3".
//
//nolint:gochecknoglobals // ldflags injection targets
var (
	Version = "dev"
	Commit  = ""
)

// Full reports the version plus the VCS commit when one is known.
func Full() string {
	commit := Commit
	if commit == "" {
		commit = vcsRevision()
	}

	if commit == "" {
		return Version
	}

	return Version + " (" + commit + ")"
}

// vcsRevision pulls the commit hash recorded by the Go toolchain, for
// binaries built without ldflags.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 12 {
			return setting.Value[:12]
		}
	}

	return ""
}
