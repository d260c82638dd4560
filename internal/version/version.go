// Package version carries build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/mscrnt/vdisplay/internal/version.Version=v1.0.0"
var (
	Version   = ""
	Commit    = ""
	BuildTime = ""
)

// Info is a snapshot of the build metadata
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns the build metadata with placeholders for unset values
func Get() Info {
	return newInfo(Version, Commit, BuildTime)
}

func newInfo(version, commit, buildTime string) Info {
	if version == "" {
		version = "dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	if buildTime == "" {
		buildTime = "unknown"
	}
	return Info{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Short returns "version-commit" with the commit abbreviated to 7 characters
func (i Info) Short() string {
	if i.Commit == "unknown" {
		return i.Version
	}
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s-%s", i.Version, commit)
}

// String returns the multi-line banner printed by "vdisplay version"
func (i Info) String() string {
	return fmt.Sprintf(`vdisplay (virtual display EDID generator)
Version:    %s
Commit:     %s
Built:      %s
Go version: %s
OS/Arch:    %s`,
		i.Version, i.Commit, i.BuildTime, i.GoVersion, i.Platform)
}
