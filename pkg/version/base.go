package version

import "runtime"

// Set with -ldflags "-X github.com/techwm-project/techwm/pkg/version.GITVERSION=..."
var (
	GITVERSION = "v0.0.0-dev"
	GITCOMMIT  = ""
	BUILDDATE  = "1970-01-01T00:00:00Z"
	GOOS       = runtime.GOOS
	GOARCH     = runtime.GOARCH
)
