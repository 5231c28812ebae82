// Package version exposes the build version stamped at link time.
package version

// Version is overridden by the release build via
// -ldflags "-X github.com/treellis/worldmatrix/pkg/version.Version=v1.2.3".
var Version = "dev"

// GetVersion returns the stamped version; unstamped builds report "dev".
func GetVersion() string {
	return Version
}
