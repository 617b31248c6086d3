// Package version exposes the build metadata stamped into the binary.
package version

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// The following variables can be overridden at build time using -ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
	BuildUser = "unknown"
	BuildHost = "unknown"
	BuildArch = ""
)

// Info contains metadata about the compiled binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	BuildUser string `json:"build_user"`
	BuildHost string `json:"build_host"`
	BuildArch string `json:"build_arch"`
	GoVersion string `json:"go_version"`
}

// Get returns build metadata, normalizing defaults where necessary.
func Get() Info {
	arch := strings.TrimSpace(BuildArch)
	if arch == "" {
		arch = runtime.GOOS + "/" + runtime.GOARCH
	}

	return Info{
		Version:   fallback(Version, "dev"),
		Commit:    fallback(Commit, "unknown"),
		BuildDate: fallback(BuildDate, "unknown"),
		BuildUser: fallback(BuildUser, "unknown"),
		BuildHost: fallback(BuildHost, "unknown"),
		BuildArch: arch,
		GoVersion: runtime.Version(),
	}
}

// BuildTime parses BuildDate as RFC 3339.
func (i Info) BuildTime() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, i.BuildDate)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// RelativeTime describes the build date relative to now, or "" when the date
// is unknown.
func (i Info) RelativeTime() string {
	built, ok := i.BuildTime()
	if !ok {
		return ""
	}

	return humanize.Time(built)
}

// UserAgent identifies the binary on outgoing API requests.
func (i Info) UserAgent() string {
	return fmt.Sprintf("netscope/%s (%s)", i.Version, i.BuildArch)
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}

	return strings.TrimSpace(value)
}
