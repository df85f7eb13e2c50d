// Package version exposes build metadata stamped via ldflags:
//
//	go build -ldflags "-X github.com/glassdash/livesync/internal/version.Version=0.3.0 \
//	                   -X github.com/glassdash/livesync/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

var (
	// Version is the semantic version of the build.
	Version = "dev"

	// Commit is the short git commit hash.
	Commit = "unknown"
)

// String formats the version for logs and --version output.
func String() string {
	return Version + " (" + Commit + ")"
}
