// Package version reports build information stamped at link time or
// recorded by the Go toolchain.
//
// Release builds set the variables below with
//
//	-ldflags "-X github.com/solidprinciples/solid/internal/version.Version=v1.2.3 ..."
//
// Development builds fall back to the VCS settings in debug.BuildInfo.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// Set at build time.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string    `json:"version" yaml:"version"`
	Commit    string    `json:"commit,omitempty" yaml:"commit,omitempty"`
	Dirty     bool      `json:"dirty,omitempty" yaml:"dirty,omitempty"`
	BuildTime time.Time `json:"build_time,omitempty" yaml:"build_time,omitempty"`
	GoVersion string    `json:"go_version" yaml:"go_version"`
	Platform  string    `json:"platform" yaml:"platform"`
}

var vcsSettings = sync.OnceValue(func() map[string]string {
	settings := make(map[string]string)
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			settings[s.Key] = s.Value
		}
	}
	return settings
})

// Get assembles the build information.
func Get() Info {
	settings := vcsSettings()

	info := Info{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     settings["vcs.modified"] == "true",
		BuildTime: parseTime(BuildTime),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Commit == "" {
		info.Commit = settings["vcs.revision"]
	}
	if info.BuildTime.IsZero() {
		info.BuildTime = parseTime(settings["vcs.time"])
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	return info
}

// Short returns e.g. "v1.2.0 (abc1234)" or "dev-abc1234".
func (i Info) Short() string {
	if len(i.Commit) < 7 {
		return i.Version
	}
	commit := i.Commit[:7]
	if i.IsRelease() {
		return fmt.Sprintf("%s (%s)", i.Version, commit)
	}
	return "dev-" + commit
}

// String returns a multi-line description.
func (i Info) String() string {
	lines := []string{"Version: " + i.Version}
	if i.Commit != "" {
		commit := i.Commit
		if i.Dirty {
			commit += " (dirty)"
		}
		lines = append(lines, "Commit: "+commit)
	}
	if !i.BuildTime.IsZero() {
		lines = append(lines, "Built: "+i.BuildTime.Format(time.RFC3339))
	}
	lines = append(lines, "Go: "+i.GoVersion, "Platform: "+i.Platform)
	return strings.Join(lines, "\n")
}

// IsRelease reports whether the version was stamped by a release build.
func (i Info) IsRelease() bool {
	return i.Version != "dev" && !strings.HasPrefix(i.Version, "dev-")
}

// GetShortVersion is Get().Short().
func GetShortVersion() string {
	return Get().Short()
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
