package version

import (
	"strings"
	"testing"
)

func TestSetInfo(t *testing.T) {
	originalVersion := Version
	originalBuildTime := BuildTime
	originalGitCommit := GitCommit
	originalGoVersion := GoVersion

	defer func() {
		Version = originalVersion
		BuildTime = originalBuildTime
		GitCommit = originalGitCommit
		GoVersion = originalGoVersion
	}()

	SetInfo("1.0.0", "2026-01-01T00:00:00Z", "abc123", "go1.26")

	if Version != "1.0.0" {
		t.Errorf("Version = %s, want 1.0.0", Version)
	}
	if BuildTime != "2026-01-01T00:00:00Z" {
		t.Errorf("BuildTime = %s, want 2026-01-01T00:00:00Z", BuildTime)
	}
	if GitCommit != "abc123" {
		t.Errorf("GitCommit = %s, want abc123", GitCommit)
	}
	if GoVersion != "go1.26" {
		t.Errorf("GoVersion = %s, want go1.26", GoVersion)
	}
}

func TestSetInfoEmptyValues(t *testing.T) {
	originalVersion := Version

	defer func() { Version = originalVersion }()

	Version = "test-version"
	SetInfo("", "", "", "")

	if Version != "test-version" {
		t.Errorf("Version should not change with empty value, got %s", Version)
	}
}

func TestFormatBanner(t *testing.T) {
	originalVersion := Version
	originalBuildTime := BuildTime
	originalGitCommit := GitCommit

	defer func() {
		Version = originalVersion
		BuildTime = originalBuildTime
		GitCommit = originalGitCommit
	}()

	Version = "1.2.3"
	BuildTime = "2026-06-15T10:30:00Z"
	GitCommit = "deadbeef"

	msg := FormatBanner()

	if !strings.HasPrefix(msg, "webui-janitor 1.2.3") {
		t.Errorf("Message should start with name and version, got: %s", msg)
	}
	if !strings.Contains(msg, "2026-06-15T10:30:00Z") {
		t.Errorf("Message should contain build time, got: %s", msg)
	}
	if !strings.Contains(msg, "deadbeef") {
		t.Errorf("Message should contain git commit, got: %s", msg)
	}
}
