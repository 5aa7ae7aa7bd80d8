package runtime

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/mariocostaoptiply/tap-synccheck/types"
)

func TestBuildCheckReport(t *testing.T) {
	result := &VerifyResult{
		CheckID:        "check-1",
		ReplicationKey: "42",
		StateFed:       true,
		Verdict:        types.VerdictImproved,
		Duration:       1500 * time.Millisecond,
		Warnings:       []string{"second sync: tap exited with code 1; comparison uses partial output (10 records)"},
		First: &RunResult{
			Status:      types.RunCompleted,
			RecordCount: 100,
			StateCount:  1,
			LogPath:     "artifacts/sync-first.log",
		},
		Second: &RunResult{
			Status:      types.RunFailed,
			RecordCount: 10,
			ExitCode:    1,
			Message:     "tap exited with code 1",
			LogPath:     "artifacts/sync-second.log",
		},
	}

	report := BuildCheckReport(result, "tap-lightspeed", "products", 0)

	if report.CheckID != "check-1" {
		t.Errorf("CheckID = %q, want %q", report.CheckID, "check-1")
	}
	if report.Verdict != types.VerdictImproved {
		t.Errorf("Verdict = %q, want %q", report.Verdict, types.VerdictImproved)
	}
	if report.DurationMs != 1500 {
		t.Errorf("DurationMs = %d, want 1500", report.DurationMs)
	}
	if report.First.Records != 100 || report.Second.Records != 10 {
		t.Errorf("records = %d/%d, want 100/10", report.First.Records, report.Second.Records)
	}
	if report.Second.Message == "" {
		t.Error("Second.Message empty, want failure detail")
	}
}

func TestWriteCheckReportJSON(t *testing.T) {
	report := &CheckReport{
		CheckID:        "check-2",
		Tap:            "tap-lightspeed",
		Stream:         "products",
		Verdict:        types.VerdictNoImprovement,
		ExitCode:       1,
		ReplicationKey: "n/a",
		First:          &ReportRun{Status: types.RunCompleted, Records: 50},
		Second:         &ReportRun{Status: types.RunCompleted, Records: 50},
	}

	var buf bytes.Buffer
	if err := writeCheckReportTo(report, &buf); err != nil {
		t.Fatalf("writeCheckReportTo failed: %v", err)
	}

	var decoded CheckReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.Verdict != types.VerdictNoImprovement {
		t.Errorf("Verdict = %q, want %q", decoded.Verdict, types.VerdictNoImprovement)
	}
	if decoded.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", decoded.ExitCode)
	}
}

func TestWriteCheckReportEmptyPath(t *testing.T) {
	if err := WriteCheckReport(&CheckReport{}, ""); err == nil {
		t.Error("WriteCheckReport accepted an empty path")
	}
}
