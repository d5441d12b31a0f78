// Package version exposes the build identity the server logs at startup,
// stamped in at link time.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
