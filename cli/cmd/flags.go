// Package cmd provides CLI commands for the synccheck binary.
package cmd

import "github.com/urfave/cli/v2"

// Exit codes for CI gating.
const (
	exitImproved      = 0 // second sync fetched strictly fewer records
	exitNoImprovement = 1 // equal or higher count (warning verdict)
	exitOrchestration = 2 // tap not launchable, input files missing
	exitTimedOut      = 3 // a run hit the configured timeout
)

// Shared flags for read-only commands.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}
)

// ReadOnlyFlags returns the shared flags for read-only commands.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
	}
}
