package version

import (
	"strings"
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	// Override values (simulating build-time ldflags)
	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	if Colored(false) != "1.2.3" {
		t.Errorf("Colored(false) = %q, want %q", Colored(false), "1.2.3")
	}
}

func TestColored(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	tests := []struct {
		version    string
		wantColor  bool
		wantSuffix string
	}{
		{version: "0.1.0-dev", wantColor: true, wantSuffix: "-dev"},
		{version: "1.2.3-rc.1+build.123", wantColor: true, wantSuffix: "-rc.1+build.123"},
		{version: "1.0.0", wantColor: true},
		{version: "nightly", wantColor: false},
		{version: "1.2", wantColor: false},
	}
	for _, tt := range tests {
		Version = tt.version
		got := Colored(true)
		hasEscape := strings.Contains(got, "\x1b[")
		if hasEscape != tt.wantColor {
			t.Errorf("%s: colored=%v, want %v (%q)", tt.version, hasEscape, tt.wantColor, got)
		}
		if !strings.HasSuffix(got, tt.wantSuffix) {
			t.Errorf("%s: suffix lost in %q", tt.version, got)
		}
		if !tt.wantColor && got != tt.version {
			t.Errorf("%s: changed to %q", tt.version, got)
		}
	}
}
