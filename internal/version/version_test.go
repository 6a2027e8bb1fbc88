package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withBuildInfo sets the ldflags values and disables the toolchain fallback.
func withBuildInfo(t *testing.T, version, commit, date string) {
	t.Helper()
	withToolchainInfo(t, nil)
	Version, Commit, Date = version, commit, date
}

// withToolchainInfo makes fillFromBuildInfo read bi. A nil bi reports no
// build info.
func withToolchainInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	origVersion, origCommit, origDate := Version, Commit, Date
	origRead, origModified := readBuildInfo, vcsModified
	t.Cleanup(func() {
		Version, Commit, Date = origVersion, origCommit, origDate
		readBuildInfo, vcsModified = origRead, origModified
		buildInfoOnce = sync.Once{}
	})
	buildInfoOnce = sync.Once{}
	vcsModified = false
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
}

func TestGetInfo(t *testing.T) {
	withBuildInfo(t, "1.0.0", "unknown", "unknown")
	info := GetInfo()

	assert.Equal(t, "1.0.0", info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.False(t, info.Modified)
}

func TestGetInfo_ToolchainFallback(t *testing.T) {
	withToolchainInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-03-01T12:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})
	Version, Commit, Date = "dev", "unknown", "unknown"

	info := GetInfo()
	assert.Equal(t, "v0.3.1", info.Version)
	assert.Equal(t, "0123456789abcdef", info.Commit)
	assert.Equal(t, "2026-03-01T12:00:00Z", info.Date)
	assert.True(t, info.Modified)
}

func TestGetInfo_LdflagsWin(t *testing.T) {
	withToolchainInfo(t, &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffffffff"}},
	})
	Version, Commit, Date = "2.0.0", "abc123def456789", "unknown"

	info := GetInfo()
	assert.Equal(t, "2.0.0", info.Version)
	assert.Equal(t, "abc123def456789", info.Commit)
}

func TestString(t *testing.T) {
	withBuildInfo(t, "1.0.0", "unknown", "unknown")
	s := String()
	assert.True(t, strings.HasPrefix(s, ApplicationName+" version 1.0.0"))
	assert.NotContains(t, s, "commit")

	withBuildInfo(t, "1.0.0", "abc123def456789", "2026-01-15T10:30:00Z")
	s = String()
	assert.Contains(t, s, "commit: abc123de")
	assert.Contains(t, s, "built: 2026-01-15T10:30:00Z")
}

func TestShort(t *testing.T) {
	withBuildInfo(t, "1.0.0", "unknown", "unknown")
	assert.Equal(t, "tabcanvas 1.0.0", Short())

	withBuildInfo(t, "1.0.0", "abc1", "unknown")
	assert.Equal(t, "tabcanvas 1.0.0", Short(), "short commits are not shown")

	withBuildInfo(t, "1.0.0", "abc123def456789", "unknown")
	assert.Equal(t, "tabcanvas 1.0.0 (abc123de)", Short())
}

func TestJSON(t *testing.T) {
	withBuildInfo(t, "1.2.3", "abc123def456789", "2026-01-15T10:30:00Z")

	var info Info
	require.NoError(t, json.Unmarshal([]byte(JSON()), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc123def456789", info.Commit)
	assert.Equal(t, "2026-01-15T10:30:00Z", info.Date)
	assert.NotContains(t, JSON(), "modified")
}

func TestUserAgent(t *testing.T) {
	withBuildInfo(t, "0.4.0", "unknown", "unknown")
	assert.Equal(t, "tabcanvas/0.4.0 (+https://github.com/jmylchreest/tabcanvas)", UserAgent())
}
