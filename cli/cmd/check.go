package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mariocostaoptiply/tap-synccheck/bookmark"
	"github.com/mariocostaoptiply/tap-synccheck/cli/config"
	"github.com/mariocostaoptiply/tap-synccheck/cli/render"
	"github.com/mariocostaoptiply/tap-synccheck/runtime"
	"github.com/mariocostaoptiply/tap-synccheck/types"
)

// defaultSettingsFile is picked up when present and --settings is not given.
const defaultSettingsFile = "synccheck.yaml"

// CheckCommand returns the check command, the only execution entrypoint.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Verify the tap honors its replication-key checkpoint (two syncs, compare record counts)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "tap",
				Usage: "Path to the tap executable",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the tap's JSON config file",
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Path to the tap's JSON catalog file",
			},
			&cli.StringFlag{
				Name:  "stream",
				Usage: "Stream whose replication key value is displayed",
			},
			&cli.StringFlag{
				Name:  "artifacts",
				Usage: "Directory for raw run logs and the checkpoint file",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-run timeout (0 = none)",
			},
			&cli.BoolFlag{
				Name:  "quick",
				Usage: "Reuse the previous first-sync log when present; run only the resumed sync",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a JSON report to this path (\"-\" for stderr)",
			},
			&cli.StringFlag{
				Name:  "settings",
				Usage: "YAML settings file with flag defaults",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress the summary output",
			},
			NoColorFlag,
		},
		Action: checkAction,
	}
}

// checkChoice holds the resolved check configuration after merging flags
// over settings-file defaults.
type checkChoice struct {
	tap       string
	config    string
	catalog   string
	stream    string
	artifacts string
	timeout   time.Duration
	report    string
	quick     bool
}

func checkAction(c *cli.Context) error {
	noColor := c.Bool("no-color")

	choice, err := resolveCheckChoice(c)
	if err != nil {
		return cli.Exit(render.Fail(noColor, err.Error()), exitOrchestration)
	}

	verifier, err := runtime.NewVerifier(&runtime.VerifyConfig{
		TapPath:     choice.tap,
		ConfigPath:  choice.config,
		CatalogPath: choice.catalog,
		Stream:      choice.stream,
		ArtifactDir: choice.artifacts,
		Timeout:     choice.timeout,
		Quick:       choice.quick,
	})
	if err != nil {
		return cli.Exit(render.Fail(noColor, err.Error()), exitOrchestration)
	}

	// Operator interrupt kills the active tap but keeps captured output.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	result, err := verifier.Execute(ctx)
	if err != nil {
		return cli.Exit(render.Fail(noColor, err.Error()), exitOrchestration)
	}

	exitCode := verdictExitCode(result)

	if !c.Bool("quiet") {
		printSummary(os.Stdout, result, choice.stream, noColor)
	}

	if choice.report != "" {
		report := runtime.BuildCheckReport(result, choice.tap, choice.stream, exitCode)
		if err := runtime.WriteCheckReport(report, choice.report); err != nil {
			return cli.Exit(render.Fail(noColor, err.Error()), exitOrchestration)
		}
	}

	return cli.Exit("", exitCode)
}

// resolveCheckChoice merges CLI flags over settings-file defaults.
// Flags always win; the settings file only fills gaps.
func resolveCheckChoice(c *cli.Context) (*checkChoice, error) {
	settings := &config.Settings{}
	settingsPath := c.String("settings")
	if settingsPath == "" {
		if _, err := os.Stat(defaultSettingsFile); err == nil {
			settingsPath = defaultSettingsFile
		}
	}
	if settingsPath != "" {
		loaded, err := config.Load(settingsPath)
		if err != nil {
			return nil, err
		}
		settings = loaded
	}

	choice := &checkChoice{
		tap:       firstNonEmpty(c.String("tap"), settings.Tap),
		config:    firstNonEmpty(c.String("config"), settings.Config),
		catalog:   firstNonEmpty(c.String("catalog"), settings.Catalog),
		stream:    firstNonEmpty(c.String("stream"), settings.Stream, "products"),
		artifacts: firstNonEmpty(c.String("artifacts"), settings.Artifacts, ".synccheck"),
		report:    firstNonEmpty(c.String("report"), settings.Report),
		timeout:   c.Duration("timeout"),
		quick:     c.Bool("quick"),
	}
	if choice.timeout == 0 {
		choice.timeout = settings.Timeout.Duration
	}

	if choice.tap == "" {
		return nil, fmt.Errorf("--tap is required (flag or settings file)")
	}
	if choice.config == "" {
		return nil, fmt.Errorf("--config is required (flag or settings file)")
	}
	if choice.catalog == "" {
		return nil, fmt.Errorf("--catalog is required (flag or settings file)")
	}

	return choice, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// verdictExitCode maps a verification result to the process exit code.
func verdictExitCode(result *runtime.VerifyResult) int {
	if result.TimedOut() {
		return exitTimedOut
	}
	if result.Verdict == types.VerdictImproved {
		return exitImproved
	}
	return exitNoImprovement
}

// printSummary renders the human-readable verification summary.
func printSummary(w io.Writer, result *runtime.VerifyResult, stream string, noColor bool) {
	firstLabel := "first sync"
	if result.Quick {
		firstLabel = "first sync (reused saved log)"
	}
	fmt.Fprintln(w, render.Step(noColor, fmt.Sprintf("%s: %d records, %d state messages (%s)",
		firstLabel, result.First.RecordCount, result.First.StateCount, result.First.LogPath)))

	if result.Checkpoint != nil {
		fmt.Fprintln(w, render.Step(noColor, fmt.Sprintf("checkpoint: %s.%s=%s",
			stream, bookmark.ReplicationKeyField, result.ReplicationKey)))
	} else {
		fmt.Fprintln(w, render.Warn(noColor, "no checkpoint captured; wrote empty placeholder"))
	}

	secondLabel := "second sync"
	if result.StateFed {
		secondLabel = "second sync (resumed from checkpoint)"
	}
	fmt.Fprintln(w, render.Step(noColor, fmt.Sprintf("%s: %d records (%s)",
		secondLabel, result.Second.RecordCount, result.Second.LogPath)))

	for _, warning := range result.Warnings {
		fmt.Fprintln(w, render.Warn(noColor, warning))
	}

	if result.Verdict == types.VerdictImproved {
		fmt.Fprintln(w, render.Pass(noColor, fmt.Sprintf(
			"PASS second sync fetched fewer records (%d < %d)",
			result.Second.RecordCount, result.First.RecordCount)))
	} else {
		fmt.Fprintln(w, render.Warn(noColor, fmt.Sprintf(
			"WARN second sync did not fetch fewer records (%d >= %d)",
			result.Second.RecordCount, result.First.RecordCount)))
	}
}
