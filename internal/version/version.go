// Package version reports build information for tabcanvas.
//
// Release builds inject Version, Commit and Date with ldflags:
//
//	go build -ldflags "-X github.com/jmylchreest/tabcanvas/internal/version.Version=x.y.z \
//	                   -X github.com/jmylchreest/tabcanvas/internal/version.Commit=$(git rev-parse HEAD) \
//	                   -X github.com/jmylchreest/tabcanvas/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with go install carry no ldflags; for those the module
// version and VCS stamp recorded by the toolchain are used instead.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Build-time variables injected via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// ApplicationName is the canonical name of this application.
const ApplicationName = "tabcanvas"

// ProjectURL is advertised to image providers in the User-Agent.
const ProjectURL = "https://github.com/jmylchreest/tabcanvas"

// Info contains structured version information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Modified  bool   `json:"modified,omitempty"`
}

var (
	buildInfoOnce sync.Once
	readBuildInfo = debug.ReadBuildInfo
	vcsModified   bool
)

// fillFromBuildInfo replaces unset ldflags values with the toolchain's stamp.
func fillFromBuildInfo() {
	buildInfoOnce.Do(func() {
		bi, ok := readBuildInfo()
		if !ok {
			return
		}
		if Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if Commit == "unknown" {
					Commit = s.Value
				}
			case "vcs.time":
				if Date == "unknown" {
					Date = s.Value
				}
			case "vcs.modified":
				vcsModified = s.Value == "true"
			}
		}
	})
}

// GetInfo returns all version information as a structured type.
func GetInfo() Info {
	fillFromBuildInfo()
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Modified:  vcsModified,
	}
}

func shortCommit(commit string) string {
	if commit == "unknown" || len(commit) < 8 {
		return ""
	}
	return commit[:8]
}

// String returns a human-readable version string.
func String() string {
	info := GetInfo()
	if c := shortCommit(info.Commit); c != "" {
		return fmt.Sprintf("%s version %s (commit: %s, built: %s, %s, %s)",
			ApplicationName, info.Version, c, info.Date, info.GoVersion, info.Platform)
	}
	return fmt.Sprintf("%s version %s (%s, %s)", ApplicationName, info.Version, info.GoVersion, info.Platform)
}

// Short returns a short version string suitable for CLI --version output.
func Short() string {
	info := GetInfo()
	if c := shortCommit(info.Commit); c != "" {
		return fmt.Sprintf("%s %s (%s)", ApplicationName, info.Version, c)
	}
	return fmt.Sprintf("%s %s", ApplicationName, info.Version)
}

// JSON returns the version information as indented JSON.
func JSON() string {
	data, err := json.MarshalIndent(GetInfo(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// UserAgent returns the User-Agent sent to image providers.
func UserAgent() string {
	fillFromBuildInfo()
	return fmt.Sprintf("%s/%s (+%s)", ApplicationName, Version, ProjectURL)
}
