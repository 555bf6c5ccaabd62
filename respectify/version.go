package respectify

// Version is the current semantic version of the respectify-go library.
const Version = "0.3.0"

// VersionInfo carries structured version metadata for logging and
// compatibility checks.
type VersionInfo struct {
	Version string
	Name    string
}

// GetVersion returns structured version information for the library.
func GetVersion() VersionInfo {
	return VersionInfo{
		Version: Version,
		Name:    "respectify-go",
	}
}
