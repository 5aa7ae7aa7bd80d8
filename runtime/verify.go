package runtime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mariocostaoptiply/tap-synccheck/bookmark"
	"github.com/mariocostaoptiply/tap-synccheck/log"
	"github.com/mariocostaoptiply/tap-synccheck/tap"
	"github.com/mariocostaoptiply/tap-synccheck/types"
)

// Artifact names within the artifact directory. Fixed and overwritable:
// each verification exclusively owns them until the next one runs.
const (
	FirstRunLog  = "sync-first.log"
	SecondRunLog = "sync-second.log"
	StateFile    = "state.json"
)

// VerifyConfig configures a full incremental-sync verification.
// All paths are explicit; the verifier keeps no process-wide defaults.
type VerifyConfig struct {
	// TapPath is the tap executable.
	TapPath string
	// ConfigPath is the tap's JSON config file.
	ConfigPath string
	// CatalogPath is the tap's JSON catalog file.
	CatalogPath string
	// Stream is the stream whose replication key value is displayed.
	Stream string
	// ArtifactDir holds the two raw run logs and the checkpoint file.
	ArtifactDir string
	// Timeout bounds each tap run. Zero means no timeout.
	Timeout time.Duration
	// Quick reuses the previous verification's first-run log when present,
	// invoking the tap only for the resumed run.
	Quick bool
	// RunnerFactory overrides tap process creation (for testing).
	RunnerFactory RunnerFactory
}

// VerifyResult is the outcome of a full verification.
type VerifyResult struct {
	// CheckID identifies this verification in logs and reports.
	CheckID string
	// First is the baseline run (no checkpoint).
	First *RunResult
	// Second is the resumed run.
	Second *RunResult
	// Checkpoint is the persisted checkpoint, nil when the first run
	// emitted no STATE message.
	Checkpoint bookmark.Checkpoint
	// ReplicationKey is the display form of the replication key value for
	// the configured stream; bookmark.NotAvailable when absent.
	ReplicationKey string
	// StateFed reports whether the second run received --state.
	StateFed bool
	// Verdict is the comparison outcome.
	Verdict types.Verdict
	// Warnings are non-fatal anomalies observed along the way.
	Warnings []string
	// Quick reports whether the baseline was reparsed from a saved log.
	Quick bool
	// Duration is the total verification wall-clock time.
	Duration time.Duration
}

// TimedOut reports whether either tap run hit the configured timeout.
func (r *VerifyResult) TimedOut() bool {
	return r.First.Status == types.RunTimedOut || r.Second.Status == types.RunTimedOut
}

// Verifier drives the two-run verification sequence. Strictly sequential:
// the first run fully exits and drains before checkpoint extraction, and
// persistence completes before the second run starts.
type Verifier struct {
	config  *VerifyConfig
	logger  *log.Logger
	checkID string
}

// NewVerifier validates the configuration and creates a verifier.
// Missing tap config or catalog files are orchestration failures, caught
// here before any process is launched.
func NewVerifier(config *VerifyConfig) (*Verifier, error) {
	if config.TapPath == "" {
		return nil, fmt.Errorf("tap executable is required")
	}
	for _, p := range []string{config.ConfigPath, config.CatalogPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("tap input file not readable: %w", err)
		}
	}
	if err := os.MkdirAll(config.ArtifactDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact dir %s: %w", config.ArtifactDir, err)
	}

	checkID := uuid.NewString()
	return &Verifier{
		config:  config,
		logger:  log.NewLogger(checkID, config.TapPath),
		checkID: checkID,
	}, nil
}

// Logger exposes the verification-scoped logger.
func (v *Verifier) Logger() *log.Logger {
	return v.logger
}

// Execute runs the verification end to end.
//
// Sequence:
//  1. baseline run without state
//  2. extract the latest checkpoint from its output
//  3. persist the checkpoint (empty-object placeholder when absent)
//  4. resumed run, fed --state only when a checkpoint was captured
//  5. compare record counts
//
// The returned error is reserved for orchestration failures that prevent a
// comparison (tap not launchable, artifacts unwritable). Everything else,
// including a missing checkpoint or a non-zero tap exit with partial
// output, flows into the result as a warning.
func (v *Verifier) Execute(ctx context.Context) (*VerifyResult, error) {
	start := time.Now()
	result := &VerifyResult{
		CheckID:        v.checkID,
		ReplicationKey: bookmark.NotAvailable,
	}

	first, quick, err := v.baselineRun(ctx)
	if err != nil {
		return nil, err
	}
	if first.Status == types.RunLaunchFailed {
		return nil, fmt.Errorf("first sync: %s", first.Message)
	}
	result.First = first
	result.Quick = quick
	v.noteRunAnomalies(result, "first sync", first)

	cp, found := bookmark.Latest(first.Messages)
	if !found {
		v.logger.Warn("no checkpoint in first sync output", map[string]any{
			"messages": len(first.Messages),
		})
		result.Warnings = append(result.Warnings,
			"first sync emitted no STATE message; second sync starts from scratch")
	}
	result.Checkpoint = cp
	if found {
		if rk, ok := cp.ReplicationKeyValue(v.config.Stream); ok {
			result.ReplicationKey = fmt.Sprint(rk)
		}
	}

	// Persisted even when absent: the placeholder documents that the first
	// run produced no checkpoint, rather than leaving a stale file behind.
	store := &bookmark.Store{Path: v.statePath()}
	if err := store.Write(cp); err != nil {
		return nil, fmt.Errorf("failed to persist checkpoint: %w", err)
	}

	secondExec := &ExecConfig{
		TapPath:     v.config.TapPath,
		ConfigPath:  v.config.ConfigPath,
		CatalogPath: v.config.CatalogPath,
	}
	if found {
		secondExec.StatePath = v.statePath()
		result.StateFed = true
	}

	second, err := v.runOnce(ctx, secondExec, v.artifactPath(SecondRunLog))
	if err != nil {
		return nil, err
	}
	if second.Status == types.RunLaunchFailed {
		return nil, fmt.Errorf("second sync: %s", second.Message)
	}
	result.Second = second
	v.noteRunAnomalies(result, "second sync", second)

	result.Verdict = Compare(first, second)
	result.Duration = time.Since(start)

	v.logger.Info("verification finished", map[string]any{
		"verdict":        result.Verdict,
		"first_records":  first.RecordCount,
		"second_records": second.RecordCount,
		"state_fed":      result.StateFed,
		"duration":       result.Duration.String(),
	})

	return result, nil
}

// baselineRun produces the first-run result, reparsing the saved log in
// quick mode when a previous verification left one behind.
func (v *Verifier) baselineRun(ctx context.Context) (*RunResult, bool, error) {
	if v.config.Quick {
		saved, err := v.reparseSavedRun()
		if err == nil {
			v.logger.Info("quick mode: reusing saved first sync", map[string]any{
				"log":     saved.LogPath,
				"records": saved.RecordCount,
			})
			return saved, true, nil
		}
		v.logger.Warn("quick mode: no reusable first sync, running full", map[string]any{
			"error": err.Error(),
		})
	}

	exec := &ExecConfig{
		TapPath:     v.config.TapPath,
		ConfigPath:  v.config.ConfigPath,
		CatalogPath: v.config.CatalogPath,
	}
	result, err := v.runOnce(ctx, exec, v.artifactPath(FirstRunLog))
	return result, false, err
}

func (v *Verifier) runOnce(ctx context.Context, exec *ExecConfig, logPath string) (*RunResult, error) {
	orch := NewOrchestrator(&RunConfig{
		Exec:          exec,
		LogPath:       logPath,
		Timeout:       v.config.Timeout,
		RunnerFactory: v.config.RunnerFactory,
		Logger:        v.logger,
	})
	return orch.RunOnce(ctx)
}

// reparseSavedRun rebuilds a baseline RunResult from the previous
// verification's raw first-run log.
func (v *Verifier) reparseSavedRun() (*RunResult, error) {
	logPath := v.artifactPath(FirstRunLog)
	f, err := os.Open(logPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	messages, err := tap.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to reparse %s: %w", logPath, err)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("saved run log %s holds no protocol messages", logPath)
	}

	return &RunResult{
		Messages:    messages,
		RecordCount: tap.Count(messages, tap.MessageRecord),
		StateCount:  tap.Count(messages, tap.MessageState),
		ExitCode:    0,
		Status:      types.RunCompleted,
		LogPath:     logPath,
	}, nil
}

func (v *Verifier) noteRunAnomalies(result *VerifyResult, label string, run *RunResult) {
	switch run.Status {
	case types.RunTimedOut:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s timed out; comparison uses partial output (%d records)", label, run.RecordCount))
	case types.RunFailed:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: %s; comparison uses partial output (%d records)", label, run.Message, run.RecordCount))
	}
}

func (v *Verifier) statePath() string {
	return v.artifactPath(StateFile)
}

func (v *Verifier) artifactPath(name string) string {
	return filepath.Join(v.config.ArtifactDir, name)
}
