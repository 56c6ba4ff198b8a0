package version

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.25.0",
		Main:      debug.Module{Path: "github.com/harunosuke/web", Version: "v1.2.0"},
		Deps: []*debug.Module{
			{Path: "github.com/yuin/goldmark", Version: "v1.7.16"},
			{Path: "github.com/dlclark/regexp2", Version: "v1.11.5"},
		},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2024-03-09T00:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	info := fromBuildInfo(bi)
	if info.Version != "v1.2.0" {
		t.Errorf("Version = %q", info.Version)
	}
	if !info.Modified || info.Revision != "0123456789abcdef0123" {
		t.Errorf("vcs = %q modified=%v", info.Revision, info.Modified)
	}

	var buf bytes.Buffer
	info.Print(&buf, true)
	out := buf.String()
	for _, want := range []string{
		"harunosuke v1.2.0 (go1.25.0)",
		"commit 0123456789ab-dirty 2024-03-09T00:00:00Z",
		"github.com/dlclark/regexp2 v1.11.5\n   github.com/yuin/goldmark v1.7.16",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFromBuildInfoDevel(t *testing.T) {
	info := fromBuildInfo(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if info.Version != "dev" {
		t.Errorf("Version = %q, want dev", info.Version)
	}
	var buf bytes.Buffer
	info.Print(&buf, false)
	if strings.Contains(buf.String(), "commit") {
		t.Errorf("unexpected commit line: %q", buf.String())
	}
}
