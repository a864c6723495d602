// Package version provides build and version information.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Websocket snapshot stream, Prometheus metrics, parallel ticks
// 0.2.0 - Comet and NEO catalogs, sampled orbit paths, viper config
// 0.1.0 - Initial release: top-down orrery TUI, builtin planets, headless summary

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Revision  string `json:"revision,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

// Get returns version information, including the VCS revision when the
// binary was built from a checkout.
func Get() Info {
	info := Info{
		Version:   Version,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// String formats the info on one line.
func (i Info) String() string {
	s := fmt.Sprintf("ls-orrery v%s (%s, %s)", i.Version, i.GoVersion, i.Platform)
	if i.Revision != "" {
		rev := i.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if i.Modified {
			rev += "-dirty"
		}
		s += " " + rev
	}
	return s
}
