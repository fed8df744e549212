// Package planner names the two decisions that sit above this operator
// without implementing either: whether an aggregate over this chunk can
// be pushed down as a partial aggregate, and whether the operator
// should run in merge or non-merge mode for a given scan. Cross-chunk
// planning is an explicit Non-goal (spec.md §1); both decisions are
// left to the caller, matching original_source/src/planner/partialize.c's
// separation between "can this be partialized" (planner-time) and the
// executor that actually runs the partial aggregate.
package planner

import "github.com/jnidzwetzki/timescaledb/pkg/merge"

// PartialAggDecision is the outcome of asking whether an aggregate over
// this operator's output can run as a partial aggregate that the caller
// finishes elsewhere. Grounded on partialize.c's
// check_for_partialize_function_call, which marks an Aggref partial
// without itself executing anything.
type PartialAggDecision struct {
	CanPushDown bool
	// Reason explains a false CanPushDown for Explain output; empty
	// when CanPushDown is true.
	Reason string
}

// PartialAggAdvisor decides pushdown eligibility for one aggregate over
// one chunk scan. The source's own handling of this is incomplete
// (spec.md §9 "Open questions": exploratory, TODOs in vector-agg
// paths) — this interface exists so a caller can plug in whatever
// policy it has without this package taking a position.
type PartialAggAdvisor interface {
	Advise(hypertableID uint64, aggregateFn string) PartialAggDecision
}

// AlwaysPushDown is the simplest PartialAggAdvisor: every aggregate is
// eligible. Useful as a default and in tests.
type AlwaysPushDown struct{}

func (AlwaysPushDown) Advise(uint64, string) PartialAggDecision {
	return PartialAggDecision{CanPushDown: true}
}

// NeverPushDown always declines, citing reason. Useful for callers that
// want partial-agg pushdown disabled without deleting the call site.
type NeverPushDown struct{ Reason string }

func (n NeverPushDown) Advise(uint64, string) PartialAggDecision {
	return PartialAggDecision{CanPushDown: false, Reason: n.Reason}
}

// ScanShape is the operator-instantiation decision (§6 "planner hooks
// that... decide when to instantiate this operator"): given whether the
// caller needs a specific tuple order, choose merge mode and its sort
// keys, or plain streaming.
type ScanShape struct {
	MergeEnabled bool
	SortKeys     []merge.SortKey
}

// ChooseScanShape picks non-merge streaming when no order is required,
// merge mode otherwise. Real cost-based selection (e.g. preferring
// non-merge plus a post-hoc sort when there is only one batch) is
// exactly the kind of cross-chunk/cost-based planning spec.md §1
// excludes; this is the minimal correct rule.
func ChooseScanShape(requiredOrder []merge.SortKey) ScanShape {
	if len(requiredOrder) == 0 {
		return ScanShape{MergeEnabled: false}
	}
	return ScanShape{MergeEnabled: true, SortKeys: requiredOrder}
}
