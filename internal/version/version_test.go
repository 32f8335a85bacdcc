package version

import (
	"runtime/debug"
	"strings"
	"testing"
	"time"
)

func TestCurrentPrefersBuildVersion(t *testing.T) {
	old := buildVersion
	buildVersion = "v1.2.3+dirty"
	t.Cleanup(func() { buildVersion = old })

	if got := Current(); got != "v1.2.3" {
		t.Fatalf("expected build version without dirty suffix, got %q", got)
	}
	if got := Read().Version; got != "v1.2.3+dirty" {
		t.Fatalf("expected build version with dirty suffix, got %q", got)
	}
}

func TestFromBuildInfoPseudoVersion(t *testing.T) {
	ts := time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "example.com/peek", Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "1234567890abcdef"},
			{Key: "vcs.time", Value: ts.Format(time.RFC3339)},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	got := fromBuildInfo(info, true)
	if want := "v0.0.0-20250102030405-1234567890ab+dirty"; got.Version != want {
		t.Fatalf("expected %q, got %q", want, got.Version)
	}
	if got.Module != "example.com/peek" {
		t.Fatalf("expected module from build info, got %q", got.Module)
	}
	if !got.Time.Equal(ts) || !got.Modified {
		t.Fatalf("unexpected vcs fields %+v", got)
	}
	if clean := fromBuildInfo(info, false).Version; strings.HasSuffix(clean, "+dirty") {
		t.Fatalf("expected no dirty suffix, got %q", clean)
	}
}

func TestFromBuildInfoFallbacks(t *testing.T) {
	got := fromBuildInfo(nil, false)
	if got.Version != "v0.0.0-unknown" {
		t.Fatalf("expected unknown version, got %q", got.Version)
	}
	if got.Module != defaultModule {
		t.Fatalf("expected default module, got %q", got.Module)
	}
	tagged := fromBuildInfo(&debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}}, false)
	if tagged.Version != "v0.4.0" {
		t.Fatalf("expected module version, got %q", tagged.Version)
	}
}
