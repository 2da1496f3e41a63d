package build

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	_ "embed"
)

//go:embed VERSION
var rawVersion []byte

// Build information, overridable with -ldflags at release time.
var (
	Version   = ""
	Commit    = ""
	BuildTime = ""
	GoVersion = runtime.Version()
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	StartTime = time.Now()
)

//nolint:gochecknoinits // init version.
func init() {
	if Version == "" {
		Version = strings.TrimSpace(string(rawVersion))
	}
}

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Uptime    string `json:"uptime"`
}

func GetBuildInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		Platform:  Platform,
		Uptime:    time.Since(StartTime).Truncate(time.Second).String(),
	}
}

func (i Info) String() string {
	lines := []string{"Version: " + i.Version}

	if i.Commit != "" {
		lines = append(lines, "Commit: "+i.Commit)
	}

	if i.BuildTime != "" {
		lines = append(lines, "Build Time: "+i.BuildTime)
	}

	lines = append(lines,
		"Go Version: "+i.GoVersion,
		"Platform: "+i.Platform,
		"Uptime: "+i.Uptime,
	)

	return strings.Join(lines, "\n")
}
