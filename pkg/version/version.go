// Package version reports the monitord build identity.
package version

import (
	"fmt"
	"runtime"
)

// Set through -ldflags "-X github.com/carverauto/monitord/pkg/version.version=...".
//
//nolint:gochecknoglobals // ldflags injection
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info is the build identity printed by the version command.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the current build identity.
func Get() Info {
	return Info{
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetVersion returns the release version.
func GetVersion() string {
	return version
}

func (i Info) String() string {
	return fmt.Sprintf("monitord %s (commit: %s, built: %s, %s %s)", i.Version, i.Commit, i.Date, i.GoVersion, i.Platform)
}
