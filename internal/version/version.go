// Package version provides build-time version information for shade.
// Release builds inject values with ldflags; other builds fall back to the
// VCS stamp the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Name is the application name used in version strings and the HTTP User-Agent.
const Name = "shade"

const unknown = "unknown"

var (
	// Version is the semantic version of the application.
	// Injected at build time via: -ldflags "-X github.com/jmylchreest/shade/internal/version.Version=x.y.z".
	Version = "dev"

	// Commit is the git commit hash of the build.
	Commit = unknown

	// Date is the build date in RFC3339 format.
	Date = unknown

	// readBuildInfo is swapped out in tests.
	readBuildInfo = debug.ReadBuildInfo
)

// Info describes the running binary.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns the version information for this build.
func Get() Info {
	info := Info{
		Name:      Name,
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := readBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == unknown {
					info.Commit = s.Value
				}
			case "vcs.time":
				if info.Date == unknown {
					info.Date = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}

	return info
}

// String renders the information on one line.
func (i Info) String() string {
	if i.Commit == unknown {
		return fmt.Sprintf("%s version %s (%s, %s)", i.Name, i.Version, i.GoVersion, i.Platform)
	}

	commit := i.Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	if i.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s version %s (commit: %s, built: %s, %s, %s)",
		i.Name, i.Version, commit, i.Date, i.GoVersion, i.Platform)
}

// String returns a human-readable version string.
func String() string {
	return Get().String()
}

// UserAgent returns the User-Agent header value for outbound requests.
func UserAgent() string {
	return Name + "/" + Version
}
