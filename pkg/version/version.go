package version

// Version information set by build flags
// Set using -ldflags "-X github.com/JukeboxMC/JBackwards/pkg/version.version=v1.2.3"
var version string = "unknown"

// String returns the version of the build.
func String() string {
	return version
}
