package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/Masterminds/semver/v3"
)

// Build variables to be set via ldflags during compilation:
// -X 'github.com/compozy/clear-comments/pkg/version.Version=v1.0.0'
// -X 'github.com/compozy/clear-comments/pkg/version.CommitHash=abc123'
// -X 'github.com/compozy/clear-comments/pkg/version.BuildDate=2024-01-01T00:00:00Z'
var (
	// Version is the semantic version of the binary (e.g., "1.0.0")
	Version = "unknown"
	// CommitHash is the git commit hash used to build the binary
	CommitHash = "unknown"
	// BuildDate is the timestamp when the binary was built (RFC3339 format)
	BuildDate = "unknown"
)

// Info returns build information in a structured format
type Info struct {
	Version    string `json:"version"     yaml:"version"`
	CommitHash string `json:"commit_hash" yaml:"commit_hash"`
	BuildDate  string `json:"build_date"  yaml:"build_date"`
	GoVersion  string `json:"go_version"  yaml:"go_version"`
	Release    bool   `json:"release"     yaml:"release"`
}

// Get returns the current build information. Without ldflags the module
// version recorded by the Go toolchain is used when available.
func Get() Info {
	v := Version
	if v == "unknown" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
	}
	return Info{
		Version:    v,
		CommitHash: CommitHash,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
		Release:    IsRelease(v),
	}
}

// IsRelease reports whether v is a semantic version without a prerelease tag.
func IsRelease(v string) bool {
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return false
	}
	return parsed.Prerelease() == ""
}

func (i Info) String() string {
	s := fmt.Sprintf("clear-comments %s (commit %s, built %s, %s)", i.Version, i.CommitHash, i.BuildDate, i.GoVersion)
	if !i.Release {
		s += " development build"
	}
	return s
}
