package runtime

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mariocostaoptiply/tap-synccheck/log"
	"github.com/mariocostaoptiply/tap-synccheck/tap"
	"github.com/mariocostaoptiply/tap-synccheck/types"
)

// RunConfig configures a single tap run.
type RunConfig struct {
	// Exec is the tap invocation.
	Exec *ExecConfig
	// LogPath is where the raw combined output is persisted for post-hoc
	// inspection. Written even when the tap fails.
	LogPath string
	// Timeout bounds the run. Zero means no timeout.
	Timeout time.Duration
	// RunnerFactory overrides tap process creation (for testing).
	// If nil, uses NewTapProcess.
	RunnerFactory RunnerFactory
	// Logger is the verification-scoped logger.
	Logger *log.Logger
}

// RunResult represents one tap invocation's parsed output.
type RunResult struct {
	// Messages is the ordered sequence of protocol messages produced.
	Messages []tap.Message
	// RecordCount is the number of RECORD messages.
	RecordCount int
	// StateCount is the number of STATE messages.
	StateCount int
	// ExitCode is the tap's exit code. -1 when killed or never started.
	ExitCode int
	// Status classifies how the run ended.
	Status types.RunStatus
	// Message carries failure detail for non-completed statuses.
	Message string
	// Duration is the wall-clock run time.
	Duration time.Duration
	// LogPath is the raw output artifact for this run.
	LogPath string
}

// HasState reports whether the run emitted at least one STATE message.
func (r *RunResult) HasState() bool {
	return r.StateCount > 0
}

// Orchestrator executes one tap run end to end: launch, drain, persist
// raw output, parse, classify.
type Orchestrator struct {
	config *RunConfig
}

// NewOrchestrator creates a run orchestrator.
func NewOrchestrator(config *RunConfig) *Orchestrator {
	return &Orchestrator{config: config}
}

// RunOnce executes the tap and blocks until the process has exited and its
// output stream is fully drained.
//
// A non-zero exit does not invalidate the partial result; partial output is
// still parsed. The returned error is reserved for harness-side failures
// (the raw log artifact cannot be created).
func (o *Orchestrator) RunOnce(ctx context.Context) (*RunResult, error) {
	start := time.Now()

	result := &RunResult{
		ExitCode: -1,
		LogPath:  o.config.LogPath,
	}

	// The raw log artifact must exist even when the tap fails to launch.
	logFile, err := os.Create(o.config.LogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log %s: %w", o.config.LogPath, err)
	}
	defer func() { _ = logFile.Close() }()

	runCtx := ctx
	cancel := context.CancelFunc(func() {})
	if o.config.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, o.config.Timeout)
	}
	defer cancel()

	var runner TapRunner
	if o.config.RunnerFactory != nil {
		runner = o.config.RunnerFactory(o.config.Exec)
	} else {
		runner = NewTapProcess(o.config.Exec)
	}

	o.config.Logger.Info("starting tap", map[string]any{
		"config":  o.config.Exec.ConfigPath,
		"catalog": o.config.Exec.CatalogPath,
		"state":   o.config.Exec.StatePath,
	})

	if err := runner.Start(runCtx); err != nil {
		result.Status = types.RunLaunchFailed
		result.Message = err.Error()
		result.Duration = time.Since(start)
		o.config.Logger.Error("failed to launch tap", map[string]any{
			"error": err.Error(),
		})
		return result, nil
	}

	// Kill the tap on cancellation or timeout so partially captured output
	// is preserved instead of blocking forever.
	killDone := make(chan struct{})
	go func() {
		select {
		case <-runCtx.Done():
			_ = runner.Kill()
		case <-killDone:
		}
	}()

	// Drain the merged stream before Wait: exec.Cmd.Wait closes the stdout
	// pipe, which would tear reads even with data left in the pipe buffer.
	// The tee persists every captured byte regardless of how the run ends.
	messages, scanErr := tap.ReadAll(io.TeeReader(runner.Output(), logFile))
	close(killDone)

	tapResult, waitErr := runner.Wait()

	result.Messages = messages
	result.RecordCount = tap.Count(messages, tap.MessageRecord)
	result.StateCount = tap.Count(messages, tap.MessageState)
	result.Duration = time.Since(start)

	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		result.Status = types.RunTimedOut
		result.Message = fmt.Sprintf("tap killed after %s timeout", o.config.Timeout)
	case runCtx.Err() == context.Canceled:
		result.Status = types.RunFailed
		result.Message = "run canceled"
	case waitErr != nil:
		result.Status = types.RunFailed
		result.Message = waitErr.Error()
	case scanErr != nil:
		result.Status = types.RunFailed
		result.Message = fmt.Sprintf("output stream error: %v", scanErr)
		result.ExitCode = tapResult.ExitCode
	case tapResult.ExitCode != 0:
		result.Status = types.RunFailed
		result.Message = fmt.Sprintf("tap exited with code %d", tapResult.ExitCode)
		result.ExitCode = tapResult.ExitCode
	default:
		result.Status = types.RunCompleted
		result.ExitCode = 0
	}

	o.config.Logger.Info("tap run finished", map[string]any{
		"status":    result.Status,
		"exit_code": result.ExitCode,
		"records":   result.RecordCount,
		"states":    result.StateCount,
		"duration":  result.Duration.String(),
	})

	return result, nil
}
