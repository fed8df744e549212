package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jnidzwetzki/timescaledb/pkg/common"
)

func TestCompareSlotsBreaksTiesBySlotNumberAscending(t *testing.T) {
	keys := []SortKey{{OutputAttno: 1, Direction: OT_ASC}}
	a := row(5)
	b := row(5)

	assert.Equal(t, 0, CompareSlots(keys, 3, 3, a, b))
	assert.Negative(t, CompareSlots(keys, 3, 7, a, b))
	assert.Positive(t, CompareSlots(keys, 7, 3, a, b))
}

func TestCompareSlotsPanicsOnEmptySlot(t *testing.T) {
	keys := []SortKey{{OutputAttno: 1, Direction: OT_ASC}}
	assert.Panics(t, func() {
		CompareSlots(keys, 0, 1, row(1), nil)
	})
}

func TestHeapPanicsOnOutOfRangeID(t *testing.T) {
	rows := fakeRows{0: row(1)} // Len() == 1, so id 5 below is out of range
	keys := []SortKey{{OutputAttno: 1, Direction: OT_ASC}}

	assert.Panics(t, func() {
		BuildFromSlice(keys, rows, []common.SlotNumber{0, 5})
	})
}
