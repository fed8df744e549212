package merge

import "github.com/jnidzwetzki/timescaledb/pkg/common"

// OrderType and OrderByNullType reuse the teacher's sort-layout naming
// (pkg/compute/sort_types.go OrderType/OrderByNullType) for the same
// concept: sort direction and null placement.
type OrderType int

const (
	OT_ASC OrderType = iota
	OT_DESC
)

type OrderByNullType int

const (
	OBNT_NULLS_FIRST OrderByNullType = iota
	OBNT_NULLS_LAST
)

// SortKey is one ORDER BY term of the operator's sort_keys (§3, §4.5).
// OutputAttno indexes into a BatchState's decoded output_slot.
type SortKey struct {
	OutputAttno int
	Direction   OrderType
	NullOrder   OrderByNullType
}

// compareValues orders a, b honoring null placement, then falls back to
// common.Compare for the non-null case, then inverts for OT_DESC.
func compareValues(k SortKey, a, b common.Value) int {
	if a.IsNull || b.IsNull {
		switch {
		case a.IsNull && b.IsNull:
			return 0
		case a.IsNull:
			if k.NullOrder == OBNT_NULLS_FIRST {
				return -1
			}
			return 1
		default: // b.IsNull
			if k.NullOrder == OBNT_NULLS_FIRST {
				return 1
			}
			return -1
		}
	}
	c := common.Compare(a, b)
	if k.Direction == OT_DESC {
		c = -c
	}
	return c
}

// CompareSlots implements the §4.5 comparator: walk sort_keys in order,
// returning on the first non-zero result. Direction is already folded
// into compareValues, so the result is exactly "a before b under the
// user's requested order" — which is what the MergeHeap, min-first,
// needs to pop the right id next. Preconditions asserted per §4.5:
// "both slots non-empty" — id range is the heap's own job (Heap.less),
// since only it knows the pool's bounds.
func CompareSlots(keys []SortKey, aID, bID common.SlotNumber, a, b []common.Value) int {
	common.AssertFunc(len(a) > 0 && len(b) > 0, "merge: comparator precondition: both output slots must be non-empty")
	for _, k := range keys {
		idx := k.OutputAttno - 1
		c := compareValues(k, a[idx], b[idx])
		if c != 0 {
			return c
		}
	}
	// Ties produce a stable but unspecified order (§4.5); break on
	// SlotNumber ascending so heap-insertion order stays deterministic.
	switch {
	case aID < bID:
		return -1
	case aID > bID:
		return 1
	default:
		return 0
	}
}
