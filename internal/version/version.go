// Package version reports the routerctl build and the User-Agent sent to routers.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/routerctl/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/routerctl/internal/version.Commit=abc123"
//
// Whatever is left empty is filled from the module and VCS build info.
var (
	Version = ""
	Commit  = ""
)

const (
	appName        = "routerctl"
	shortCommitLen = 7
	develVersion   = "(devel)"
)

func init() {
	info, _ := debug.ReadBuildInfo()
	Version, Commit = resolve(Version, Commit, info, time.Now())
}

// resolve fills the values the linker did not set. A module version from
// `go install ...@vX` wins over the VCS commit date; a timestamp is the
// last resort.
func resolve(version, commit string, info *debug.BuildInfo, now time.Time) (string, string) {
	vcs := map[string]string{}
	if info != nil {
		for _, s := range info.Settings {
			vcs[s.Key] = s.Value
		}
	}

	if commit == "" {
		commit = shortCommit(vcs["vcs.revision"], vcs["vcs.modified"] == "true")
	}

	if version == "" && info != nil && info.Main.Version != "" && info.Main.Version != develVersion {
		version = info.Main.Version
	}
	if version == "" {
		if t, err := time.Parse(time.RFC3339, vcs["vcs.time"]); err == nil {
			version = "dev-" + t.Format("20060102")
		}
	}
	if version == "" {
		version = "dev-" + now.Format("20060102-150405")
	}

	if commit == "" {
		commit = "unknown"
	}
	return version, commit
}

func shortCommit(revision string, dirty bool) string {
	if revision == "" {
		return ""
	}
	if len(revision) > shortCommitLen {
		revision = revision[:shortCommitLen]
	}
	if dirty {
		revision += "-dirty"
	}
	return revision
}

// Full returns the version with its commit, as printed by `routerctl version`
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// UserAgent identifies routerctl in requests to the router
func UserAgent() string {
	return appName + "/" + Version
}
