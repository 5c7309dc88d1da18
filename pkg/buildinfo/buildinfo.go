package buildinfo

import "runtime"

// These vars are set at build time via ldflags:
// -X github.com/recaplabs/recap-cli/pkg/buildinfo.Version=v0.3.0
// -X github.com/recaplabs/recap-cli/pkg/buildinfo.Commit=1a2b3c4
// -X github.com/recaplabs/recap-cli/pkg/buildinfo.BuildTime=2026-08-28T09:00:00Z
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info holds build information for the CLI.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns build info for the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String returns a human-readable one-liner like "v0.3.0 (1a2b3c4, 2026-08-28T09:00:00Z)"
func String() string {
	return Version + " (" + Commit + ", " + BuildTime + ")"
}
