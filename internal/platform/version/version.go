// Package version reports build information stamped in by the linker
package version

// BuildInfo holds version information about the build
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information
// set with -ldflags "-X pulse/internal/platform/version.version=v0.1.0 -X ...commit=abcd -X ...date=2025-09-02"
func Info() BuildInfo {
	return BuildInfo{Version: version, Commit: commit, Date: date}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
