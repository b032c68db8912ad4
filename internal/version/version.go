package version

// Version is the current version of argo-chart.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-chart/internal/version.Version=1.2.3"
// The default value "main" indicates a development build.
var Version = "main"

// GetVersion returns the current version of the application.
func GetVersion() string {
	return Version
}

// Info is the version payload served by the API and printed by the CLI.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// GetInfo returns the application name and version.
func GetInfo() Info {
	return Info{Name: "argo-chart", Version: Version}
}
