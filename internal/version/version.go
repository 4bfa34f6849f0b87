// Package version provides build-time version information.
// These variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/jmgilman/overseer/internal/version.Version=v1.0.0 \
//	                   -X github.com/jmgilman/overseer/internal/version.Commit=abc123 \
//	                   -X github.com/jmgilman/overseer/internal/version.Date=2025-01-01"
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version of the build.
	Version = "dev"

	// Commit is the git commit SHA of the build.
	Commit = "none"

	// Date is the build date in ISO 8601 format.
	Date = "unknown"
)

// Info is the build metadata reported by the CLI and the control server.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
}

// Get returns the current build metadata.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
	}
}

// String formats the metadata on one line.
func (i Info) String() string {
	return fmt.Sprintf("overseer %s (commit %s, built %s, %s)", i.Version, i.Commit, i.Date, i.GoVersion)
}
