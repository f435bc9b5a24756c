// Package version holds build identification, normally stamped at link
// time via -ldflags.
package version

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of this build.
	Version = "0.1.0-dev"
	// Commit is the VCS revision the binary was built from.
	Commit = "unknown"
	// Date is the build timestamp.
	Date = "unknown"
)

// Short returns just the version number.
func Short() string {
	return Version
}

// Human renders a multi-line version banner.
func Human(colorize bool) string {
	name := "contractus"
	if colorize {
		name = color.New(color.FgCyan, color.Bold).Sprint(name)
	}
	return fmt.Sprintf("%s %s\ncommit: %s\nbuilt:  %s", name, Version, Commit, Date)
}
