// Package version exposes build information stamped in at link time.
package version

import "fmt"

// Build information. Overridden via -ldflags at release time.
//
//nolint:gochecknoglobals // Link-time variables must be package-level
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the full version string.
func String() string {
	return fmt.Sprintf("payflow %s (commit %s, built %s)", Version, Commit, Date)
}
