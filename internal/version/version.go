// Package version holds build information stamped in at link time:
//
//	go build -ldflags "-X github.com/banshee-data/daysabroad/internal/version.Version=v0.2.0" ./cmd/daysabroad
package version

import "fmt"

var (
	// Version is the release tag
	Version = "dev"
	// GitSHA is the commit the binary was built from
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String is the one-line form printed by -version.
func String() string {
	return fmt.Sprintf("daysabroad version %s (git %s, built %s)", Version, GitSHA, BuildTime)
}
