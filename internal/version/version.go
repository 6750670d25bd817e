// Package version reports the build version of syntax-tweaker.
package version

import (
	"runtime/debug"
	"strings"
)

// Set at build time with
// -ldflags "-X github.com/Gaming32/syntax-tweaker/internal/version.Version=1.2.0 -X ...Commit=abc123"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Resolved returns Version, or for "dev" builds the module version `go
// install` recorded, if there is one.
func Resolved() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return strings.TrimPrefix(info.Main.Version, "v")
	}
	return Version
}

// Info is the short form: version plus abbreviated commit.
func Info() string {
	v := Resolved()
	if Commit != "unknown" && len(Commit) > 7 {
		return v + " (" + Commit[:7] + ")"
	}
	return v
}

// Full is the multi-line form printed by `syntax-tweaker version`.
func Full() string {
	return "syntax-tweaker " + Resolved() + "\n" +
		"commit: " + Commit + "\n" +
		"built:  " + BuildDate
}
