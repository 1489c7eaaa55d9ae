// Package version holds build metadata injected with -ldflags.
package version

// Version contains the application version information.
// Set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/docpages/internal/version.Version=v1.0.0".
var Version = "dev"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns "<version> (<commit>, <build time>)".
func String() string {
	return Version + " (" + GitCommit + ", " + BuildTime + ")"
}
