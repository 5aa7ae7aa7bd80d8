// Package types defines core domain types for the synccheck harness.
//
//nolint:revive // types is a common Go package naming convention
package types

// Verdict classifies the result of comparing two sync runs.
type Verdict string

const (
	// VerdictImproved means the second sync fetched strictly fewer records,
	// evidence that the tap honored the persisted checkpoint.
	VerdictImproved Verdict = "improved_by_skipping"
	// VerdictNoImprovement means the second sync fetched as many records as
	// the first, or more. A warning, not a hard failure: new upstream data
	// between runs legitimately produces equal or higher counts.
	VerdictNoImprovement Verdict = "no_improvement"
)

// RunStatus classifies how a single tap invocation ended.
type RunStatus string

const (
	// RunCompleted means the tap exited zero with its output fully drained.
	RunCompleted RunStatus = "completed"
	// RunFailed means the tap exited non-zero. Partial output is still
	// parsed; failure is fatal only when no output was produced at all.
	RunFailed RunStatus = "failed"
	// RunTimedOut means the configured timeout fired before the tap exited.
	// Output captured before the kill is still parsed.
	RunTimedOut RunStatus = "timed_out"
	// RunLaunchFailed means the tap process could not be started at all.
	RunLaunchFailed RunStatus = "launch_failed"
)

// Terminal reports whether the run produced a result worth comparing.
// Launch failures produce no output stream and abort the verification.
func (s RunStatus) Terminal() bool {
	return s != RunLaunchFailed
}
