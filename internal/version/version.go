// Package version exposes build metadata injected with -ldflags.
package version

import "fmt"

// Version is set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/notebinder/internal/version.Version=v1.0.0".
var Version = "unknown"

// Build metadata, also injected via -ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by `notebinder --version`.
func String() string {
	return fmt.Sprintf("notebinder %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
