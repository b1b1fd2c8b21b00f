package version

// These variables are populated at build time using -ldflags
var (
	// Version is the semantic version of the application
	Version = "dev"

	// BuildTime is the time the binary was built
	BuildTime = "unknown"

	// Commit is the VCS revision the binary was built from
	Commit = "none"
)

// GetVersion returns the current version of the application
func GetVersion() string {
	return Version
}

// GetVersionInfo returns a formatted string with version information
func GetVersionInfo() string {
	return "Shuchu v" + Version + " (" + Commit + ", built " + BuildTime + ")"
}

// GetBuildTime returns the build time of the application
func GetBuildTime() string {
	return BuildTime
}
