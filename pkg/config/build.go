package config

import (
	"fmt"
	"runtime"
)

// These variables are set at build time using ldflags:
//
//	go build -ldflags "-X burrow/pkg/config.Version=1.0.0 \
//	                   -X burrow/pkg/config.Commit=$(git rev-parse --short HEAD) \
//	                   -X burrow/pkg/config.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the application.
	Version = "dev"

	// Commit is the git commit SHA at build time.
	Commit = "unknown"

	// BuildDate is the date when the binary was built.
	BuildDate = "unknown"
)

// GetBuildInfo returns a one-line description of this build.
func GetBuildInfo() string {
	return fmt.Sprintf("burrow %s (commit %s, built %s) %s/%s %s",
		Version, Commit, BuildDate, runtime.GOOS, runtime.GOARCH, runtime.Version())
}
