package runtime

import "github.com/mariocostaoptiply/tap-synccheck/types"

// Compare classifies the two-run comparison: improved iff the second run
// fetched strictly fewer records than the first.
//
// This is a heuristic proxy for "the checkpoint was respected", not a
// proof. Equal or higher counts are a warning, never a strict assertion:
// new data arriving between runs legitimately inflates the second count.
func Compare(first, second *RunResult) types.Verdict {
	if second.RecordCount < first.RecordCount {
		return types.VerdictImproved
	}
	return types.VerdictNoImprovement
}
