// Package version holds build metadata for the extractor binary,
// injected via ldflags.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata as a single identifier.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
