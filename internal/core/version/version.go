// Package version reports which build of the service is running
package version

import "runtime/debug"

// Stamped at link time:
//
//	go build -ldflags "-X lodgement/internal/core/version.version=v1.4.0 -X lodgement/internal/core/version.commit=$(git rev-parse HEAD)"
var (
	version = "dev"
	commit  = ""
	date    = ""
)

// BuildInfo is served by /meta/version
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
	Dirty   bool   `json:"dirty,omitempty"`
}

var readBuildInfo = debug.ReadBuildInfo

// Info returns the link time stamps. A commit or date left unstamped is filled from
// the VCS settings the toolchain embeds, when present
func Info() BuildInfo {
	bi := BuildInfo{Service: "lodgement-api", Version: version, Commit: commit, Date: date}
	info, ok := readBuildInfo()
	if !ok {
		return bi
	}
	bi.Go = info.GoVersion
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if bi.Commit == "" {
				bi.Commit = s.Value
			}
		case "vcs.time":
			if bi.Date == "" {
				bi.Date = s.Value
			}
		case "vcs.modified":
			bi.Dirty = s.Value == "true"
		}
	}
	return bi
}
