// Package version holds the build fingerprint of the ucb CLI.
package version

import (
	"strings"

	"github.com/fatih/color"
)

// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with major, minor and patch in their own
// colours; the pre-release suffix stays plain. Versions that are not
// dotted triples are returned unchanged.
func Colored(enabled bool) string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.Split(core, ".")
	if !enabled || len(parts) != 3 {
		return Version
	}
	out := sprint(versionMajorColor, parts[0]) + "." + sprint(versionMinorColor, parts[1]) + "." + sprint(versionPatchColor, parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

func sprint(c *color.Color, s string) string {
	c.EnableColor()
	return c.Sprint(s)
}
