// Package version reports which prism build is running.
//
// Release builds set Version, Commit and Date with ldflags, e.g.
//
//	-X github.com/jmylchreest/prism/internal/version.Version=1.2.0
//
// Builds without ldflags (go install, go build in a checkout) fall back to the
// module version and VCS stamp the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const unknown = "unknown"

// Set at link time.
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// Info describes a build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Dirty     bool   `json:"dirty,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build description, filling gaps from embedded build info.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = withBuildInfo(info, bi)
	}
	return info
}

// withBuildInfo fills fields still at their defaults from bi. Values set with
// ldflags always win.
func withBuildInfo(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
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
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// String formats info for `prism version`.
func (info Info) String() string {
	if info.Commit == unknown {
		return fmt.Sprintf("prism version %s (%s, %s)", info.Version, info.GoVersion, info.Platform)
	}
	commit := info.Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	if info.Dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("prism version %s (commit: %s, built: %s, %s, %s)",
		info.Version, commit, info.Date, info.GoVersion, info.Platform)
}

// String returns the human-readable description of the running build.
func String() string {
	return GetInfo().String()
}

// Short returns the version alone, for --version.
func Short() string {
	return GetInfo().Version
}
