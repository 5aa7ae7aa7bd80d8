// Package main provides the synccheck CLI entrypoint.
//
// Usage:
//
//	synccheck check --tap <path> --config <path> --catalog <path> [options]
//
// Exit codes:
//   - 0: improved_by_skipping (second sync fetched strictly fewer records)
//   - 1: no_improvement (equal or higher count; warning verdict)
//   - 2: orchestration failure (tap not launchable, input files missing)
//   - 3: a sync hit the configured timeout
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mariocostaoptiply/tap-synccheck/cli/cmd"
)

// Populated via -ldflags at build time.
var (
	version = "0.1.0"
	commit  = "dev"
)

const exitOrchestration = 2

func main() {
	app := &cli.App{
		Name:    "synccheck",
		Usage:   "Verify a Singer tap honors its replication-key checkpoint",
		Version: version,
		Commands: []*cli.Command{
			cmd.CheckCommand(),
			cmd.InspectCommand(),
			cmd.VersionCommand(version, commit),
		},
		ExitErrHandler: exitErrHandler,
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit; this branch is only
		// reached if it didn't.
		os.Exit(exitOrchestration)
	}
}

// exitErrHandler handles errors from the CLI, respecting cli.ExitCoder.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N"; skip those
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitOrchestration)
}
