// Package version provides version information for the application.
package version

import "fmt"

// Build information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// UserAgent identifies this service on outbound requests.
func UserAgent() string {
	return fmt.Sprintf("zwfm-voice/%s (%s)", Version, Commit)
}
