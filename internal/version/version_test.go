package version

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "dev build",
			info: Info{Version: "dev", Commit: unknown, Date: unknown, GoVersion: "go1.25.1", Platform: "linux/amd64"},
			want: "prism version dev (go1.25.1, linux/amd64)",
		},
		{
			name: "release",
			info: Info{Version: "1.2.0", Commit: "0123456789abcdef", Date: "2026-01-02T03:04:05Z", GoVersion: "go1.25.1", Platform: "linux/amd64"},
			want: "prism version 1.2.0 (commit: 01234567, built: 2026-01-02T03:04:05Z, go1.25.1, linux/amd64)",
		},
		{
			name: "short dirty commit",
			info: Info{Version: "1.2.0", Commit: "abc", Date: "2026-01-02T03:04:05Z", Dirty: true, GoVersion: "go1.25.1", Platform: "darwin/arm64"},
			want: "prism version 1.2.0 (commit: abc-dirty, built: 2026-01-02T03:04:05Z, go1.25.1, darwin/arm64)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestWithBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "fedcba9876543210"},
			{Key: "vcs.time", Value: "2026-03-04T05:06:07Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	got := withBuildInfo(Info{Version: "dev", Commit: unknown, Date: unknown}, bi)
	assert.Equal(t, "v1.3.0", got.Version)
	assert.Equal(t, "fedcba9876543210", got.Commit)
	assert.Equal(t, "2026-03-04T05:06:07Z", got.Date)
	assert.True(t, got.Dirty)

	linked := withBuildInfo(Info{Version: "1.2.0", Commit: "0123456789abcdef", Date: "2026-01-02T03:04:05Z"}, bi)
	assert.Equal(t, "1.2.0", linked.Version)
	assert.Equal(t, "0123456789abcdef", linked.Commit)
	assert.Equal(t, "2026-01-02T03:04:05Z", linked.Date)

	devel := withBuildInfo(Info{Version: "dev", Commit: unknown, Date: unknown}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	assert.Equal(t, "dev", devel.Version)
	assert.Equal(t, unknown, devel.Commit)
}

func TestLinkedValuesWin(t *testing.T) {
	v, c, d := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })
	Version, Commit, Date = "9.9.9", "0123456789abcdef", "2026-01-02T03:04:05Z"

	assert.Equal(t, "9.9.9", Short())
	assert.True(t, strings.HasPrefix(String(), "prism version 9.9.9 (commit: 01234567"), String())
}
