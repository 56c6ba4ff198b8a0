// Package version reports what binary is running.
package version

import (
	"fmt"
	"io"
	"runtime/debug"
	"sort"
)

// Version is overridden at link time with -ldflags "-X".
var Version = "dev"

// Info is the subset of build metadata worth printing.
type Info struct {
	Version   string
	GoVersion string
	Revision  string
	Time      string
	Modified  bool
	Deps      map[string]string
}

// Read collects Info from the embedded build metadata.
func Read() Info {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Info{Version: Version}
	}
	return fromBuildInfo(bi)
}

func fromBuildInfo(bi *debug.BuildInfo) Info {
	info := Info{Version: Version, GoVersion: bi.GoVersion, Deps: map[string]string{}}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.time":
			info.Time = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	for _, d := range bi.Deps {
		info.Deps[d.Path] = d.Version
	}
	return info
}

// Print writes a short report. verbose adds the dependency list.
func (i Info) Print(w io.Writer, verbose bool) {
	fmt.Fprintf(w, "harunosuke %s", i.Version)
	if i.GoVersion != "" {
		fmt.Fprintf(w, " (%s)", i.GoVersion)
	}
	fmt.Fprintln(w)
	if i.Revision != "" {
		rev := i.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if i.Modified {
			rev += "-dirty"
		}
		fmt.Fprintf(w, "   commit %s %s\n", rev, i.Time)
	}
	if !verbose {
		return
	}
	for _, path := range sortedKeys(i.Deps) {
		fmt.Fprintf(w, "   %s %s\n", path, i.Deps[path])
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
