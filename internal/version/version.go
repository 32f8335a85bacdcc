// Package version reports the build identity of the peek binary.
package version

import (
	"runtime/debug"
	"strings"
	"time"
)

const defaultModule = "pkt.systems/peek"

// buildVersion is set via -ldflags "-X pkt.systems/peek/internal/version.buildVersion=...".
var buildVersion = ""

// Info describes the running build.
type Info struct {
	Version   string
	Module    string
	Revision  string
	Time      time.Time
	Modified  bool
	GoVersion string
}

// Read collects build info. Missing fields stay empty.
func Read() Info {
	info, _ := debug.ReadBuildInfo()
	return fromBuildInfo(info, true)
}

// Current returns the best available version string (without dirty suffix).
func Current() string {
	info, _ := debug.ReadBuildInfo()
	return fromBuildInfo(info, false).Version
}

// Module returns the module path from build info when available.
func Module() string {
	info, _ := debug.ReadBuildInfo()
	return fromBuildInfo(info, false).Module
}

func fromBuildInfo(info *debug.BuildInfo, includeDirty bool) Info {
	out := Info{Module: defaultModule}
	if info != nil {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			out.Module = path
		}
		out.GoVersion = info.GoVersion
		out.Revision, out.Time, out.Modified = vcsSettings(info)
	}
	switch {
	case strings.TrimSpace(buildVersion) != "":
		out.Version = normalizeVersion(buildVersion, includeDirty)
	case info != nil && info.Main.Version != "" && info.Main.Version != "(devel)":
		out.Version = normalizeVersion(info.Main.Version, includeDirty)
	default:
		out.Version = pseudoVersion(out, includeDirty)
	}
	if out.Version == "" {
		out.Version = "v0.0.0-unknown"
	}
	return out
}

func normalizeVersion(v string, includeDirty bool) string {
	value := strings.TrimSpace(v)
	if includeDirty {
		return value
	}
	return strings.TrimSuffix(value, "+dirty")
}

func vcsSettings(info *debug.BuildInfo) (revision string, at time.Time, modified bool) {
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.time":
			if parsed, err := time.Parse(time.RFC3339, setting.Value); err == nil {
				at = parsed.UTC()
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	return revision, at, modified
}

// pseudoVersion formats a Go-style pseudo version from VCS stamps.
func pseudoVersion(info Info, includeDirty bool) string {
	if info.Revision == "" || info.Time.IsZero() {
		return ""
	}
	rev := info.Revision
	if len(rev) > 12 {
		rev = rev[:12]
	}
	ver := "v0.0.0-" + info.Time.Format("20060102150405") + "-" + rev
	if info.Modified && includeDirty {
		ver += "+dirty"
	}
	return ver
}
