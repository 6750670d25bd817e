package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func stub(t *testing.T, version, commit string, info *debug.BuildInfo) {
	t.Helper()
	origVersion, origCommit, origRead := Version, Commit, readBuildInfo
	t.Cleanup(func() {
		Version, Commit, readBuildInfo = origVersion, origCommit, origRead
	})
	Version, Commit = version, commit
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
}

func TestInfo(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		want    string
	}{
		{"unknown commit", "1.0.0", "unknown", "1.0.0"},
		{"short commit", "1.0.0", "abc", "1.0.0"},
		{"exactly 7 chars", "2.0.0", "1234567", "2.0.0"},
		{"full hash", "1.0.0", "abc1234567890", "1.0.0 (abc1234)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub(t, tt.version, tt.commit, nil)
			if got := Info(); got != tt.want {
				t.Errorf("Info() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolved(t *testing.T) {
	withModule := func(v string) *debug.BuildInfo {
		return &debug.BuildInfo{Main: debug.Module{Path: "github.com/Gaming32/syntax-tweaker", Version: v}}
	}
	tests := []struct {
		name    string
		version string
		info    *debug.BuildInfo
		want    string
	}{
		{"ldflags win", "1.4.0", withModule("v9.9.9"), "1.4.0"},
		{"go install", "dev", withModule("v0.3.1"), "0.3.1"},
		{"local build", "dev", withModule("(devel)"), "dev"},
		{"no build info", "dev", nil, "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub(t, tt.version, "unknown", tt.info)
			if got := Resolved(); got != tt.want {
				t.Errorf("Resolved() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFull(t *testing.T) {
	stub(t, "1.2.3", "deadbeef", nil)
	BuildDate = "2026-01-02"
	defer func() { BuildDate = "unknown" }()

	full := Full()
	for _, want := range []string{"syntax-tweaker 1.2.3", "commit: deadbeef", "built:  2026-01-02"} {
		if !strings.Contains(full, want) {
			t.Errorf("Full() = %q, missing %q", full, want)
		}
	}
}
