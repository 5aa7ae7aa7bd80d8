package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mariocostaoptiply/tap-synccheck/types"
)

// CheckReport is the structured JSON report written by --report.
// Intended for CI consumption alongside the process exit code.
type CheckReport struct {
	CheckID        string        `json:"check_id"`
	Tap            string        `json:"tap"`
	Stream         string        `json:"stream"`
	Verdict        types.Verdict `json:"verdict"`
	ExitCode       int           `json:"exit_code"`
	DurationMs     int64         `json:"duration_ms"`
	Quick          bool          `json:"quick,omitempty"`
	StateFed       bool          `json:"state_fed"`
	ReplicationKey string        `json:"replication_key_value"`
	First          *ReportRun    `json:"first_sync"`
	Second         *ReportRun    `json:"second_sync"`
	Warnings       []string      `json:"warnings,omitempty"`
}

// ReportRun summarizes one tap run in the report.
type ReportRun struct {
	Status     types.RunStatus `json:"status"`
	Records    int             `json:"records"`
	States     int             `json:"states"`
	ExitCode   int             `json:"exit_code"`
	DurationMs int64           `json:"duration_ms"`
	LogPath    string          `json:"log_path"`
	Message    string          `json:"message,omitempty"`
}

// BuildCheckReport composes a CheckReport from a verification result.
// The exitCode is the process exit code that will be returned to the caller.
func BuildCheckReport(result *VerifyResult, tapPath, stream string, exitCode int) *CheckReport {
	return &CheckReport{
		CheckID:        result.CheckID,
		Tap:            tapPath,
		Stream:         stream,
		Verdict:        result.Verdict,
		ExitCode:       exitCode,
		DurationMs:     result.Duration.Milliseconds(),
		Quick:          result.Quick,
		StateFed:       result.StateFed,
		ReplicationKey: result.ReplicationKey,
		First:          buildReportRun(result.First),
		Second:         buildReportRun(result.Second),
		Warnings:       result.Warnings,
	}
}

func buildReportRun(run *RunResult) *ReportRun {
	return &ReportRun{
		Status:     run.Status,
		Records:    run.RecordCount,
		States:     run.StateCount,
		ExitCode:   run.ExitCode,
		DurationMs: run.Duration.Milliseconds(),
		LogPath:    run.LogPath,
		Message:    run.Message,
	}
}

// WriteCheckReport writes the report as JSON to the specified path.
// If path is "-", writes to stderr so stdout stays parseable.
func WriteCheckReport(report *CheckReport, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}

	if path == "-" {
		return writeCheckReportTo(report, os.Stderr)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}

// writeCheckReportTo writes report JSON to any writer (for testing).
func writeCheckReportTo(report *CheckReport, w io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
