// Package buildinfo reports which copper build is running.
//
// Release builds stamp the values with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/copper/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/copper/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/copper/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Builds without them, such as go install, fall back to the module version and
// VCS stamp the Go toolchain embeds.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	// Version is the release tag, "dev" for unstamped builds.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Info is one resolved view of the build.
type Info struct {
	Version string
	Commit  string
	Date    string
	Dirty   bool
	Go      string
}

// Read resolves the build, preferring ldflags values over the embedded
// toolchain stamp.
func Read() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date, Go: runtime.Version()}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.fill(bi)
	}
	return info
}

func (i *Info) fill(bi *debug.BuildInfo) {
	if i.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		i.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if i.Commit == "none" {
				i.Commit = s.Value
			}
		case "vcs.time":
			if i.Date == "unknown" {
				i.Date = s.Value
			}
		case "vcs.modified":
			i.Dirty = s.Value == "true"
		}
	}
}

// Short returns the version with the abbreviated commit, e.g.
// "v0.3.0 (1a2b3c4d)" or "dev (1a2b3c4d, modified)".
func (i Info) Short() string {
	var parts []string
	if i.Commit != "none" {
		parts = append(parts, i.Commit[:min(8, len(i.Commit))])
	}
	if i.Dirty {
		parts = append(parts, "modified")
	}
	if len(parts) == 0 {
		return i.Version
	}
	return fmt.Sprintf("%s (%s)", i.Version, strings.Join(parts, ", "))
}

// String returns the multi-line form printed by "copper --version".
func (i Info) String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\ngo: %s", i.Version, i.Commit, i.Date, i.Go)
}

// Template returns the cobra version template for the running build.
func Template() string {
	// Braces in the values would be parsed as template actions.
	s := strings.NewReplacer("{{", "", "}}", "").Replace(Read().String())
	return "{{.Name}} " + s + "\n"
}
