// Package version carries the build identity reported by `wristrelay --version`.
package version

import "fmt"

// Set through ldflags, e.g.
// go build -ldflags "-X git.home.luguber.info/inful/wristrelay/internal/version.Version=v0.3.0".
var (
	Version   = "unknown"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String formats the build identity as "version (commit, built time)".
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, GitCommit, BuildTime)
}
