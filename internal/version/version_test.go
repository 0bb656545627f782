package version_test

import (
	"strings"
	"testing"

	"bennypowers.dev/a11yaudit/internal/version"
	"github.com/stretchr/testify/assert"
)

func restore(t *testing.T) {
	t.Helper()
	v, c, tag, dirty := version.Version, version.GitCommit, version.GitTag, version.GitDirty
	t.Cleanup(func() {
		version.Version, version.GitCommit, version.GitTag, version.GitDirty = v, c, tag, dirty
	})
}

func TestGetVersion(t *testing.T) {
	tests := []struct {
		name                    string
		ver, tag, commit, dirty string
		want                    string
	}{
		{name: "defaults", ver: "dev", tag: "unknown", commit: "unknown", want: "dev"},
		{name: "ldflags", ver: "v1.2.3", tag: "unknown", commit: "unknown", want: "v1.2.3"},
		{name: "tag and commit", ver: "dev", tag: "v1.2.3", commit: "abc1234567", want: "v1.2.3-abc1234"},
		{name: "short commit", ver: "dev", tag: "v1.0.0", commit: "abc", want: "v1.0.0-abc"},
		{name: "tag already has commit", ver: "dev", tag: "v1.2.3-abc1234", commit: "abc1234567", want: "v1.2.3-abc1234"},
		{name: "dirty", ver: "dev", tag: "v1.2.3", commit: "abc1234567", dirty: "dirty", want: "v1.2.3-abc1234-dirty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore(t)
			version.Version, version.GitTag, version.GitCommit, version.GitDirty = tt.ver, tt.tag, tt.commit, tt.dirty
			assert.Equal(t, tt.want, version.GetVersion())
		})
	}
}

func TestInfoString(t *testing.T) {
	restore(t)
	version.Version = "v2.0.0"
	version.GitCommit = "deadbeef"

	s := version.Get().String()
	assert.True(t, strings.HasPrefix(s, "a11y-audit v2.0.0 (commit: deadbeef) go"), s)

	version.GitCommit = "unknown"
	assert.NotContains(t, version.Get().String(), "commit")
}
