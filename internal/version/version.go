package version

import "fmt"

var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GoVersion = "unknown"
)

func SetInfo(v, bt, gc, gv string) {
	if v != "" {
		Version = v
	}
	if bt != "" {
		BuildTime = bt
	}
	if gc != "" {
		GitCommit = gc
	}
	if gv != "" {
		GoVersion = gv
	}
}

// FormatBanner returns the one-line description printed by the version command.
func FormatBanner() string {
	return fmt.Sprintf("webui-janitor %s (commit %s, built %s, %s)", Version, GitCommit, BuildTime, GoVersion)
}
