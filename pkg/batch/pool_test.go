package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnidzwetzki/timescaledb/pkg/common"
	"github.com/jnidzwetzki/timescaledb/pkg/decomp"
	"github.com/jnidzwetzki/timescaledb/pkg/descriptor"
)

func testDescriptors() []descriptor.ColumnDescriptor {
	return []descriptor.ColumnDescriptor{
		{Kind: descriptor.RowCount, InputAttno: 1, OutputAttno: descriptor.CountSentinel},
	}
}

func TestPoolAllocateGrowsByInitialCapacity(t *testing.T) {
	p := NewPool(testDescriptors(), decomp.NewDefaultRegistry(), decomp.Forward, 4)
	require.Equal(t, 0, p.Len())

	var ids []common.SlotNumber
	for i := 0; i < 5; i++ {
		id, state := p.Allocate()
		require.NotNil(t, state)
		ids = append(ids, id)
	}

	// growBy=4: exhausting the first 4 triggers exactly one more grow to 8.
	assert.Equal(t, 8, p.Len())
	assert.Equal(t, 3, p.NumFree())

	// ids are assigned in increasing order starting at 0.
	for i, id := range ids {
		assert.Equal(t, common.SlotNumber(i), id)
	}
}

func TestPoolFreeSetLiveIdsPartition(t *testing.T) {
	p := NewPool(testDescriptors(), decomp.NewDefaultRegistry(), decomp.Forward, 4)
	p.InitialSize(4)

	id0, _ := p.Allocate()
	id1, _ := p.Allocate()
	_, _ = p.Allocate()

	p.Release(id0)
	assert.Equal(t, 2, p.NumFree()) // id0 back, slot 3 still unused

	id0Again, _ := p.Allocate()
	assert.Equal(t, id0, id0Again, "lowest free id reused first")

	p.Release(id1)
	p.Release(id0Again)
	assert.Equal(t, p.Len()-1, p.NumFree(), "everything free except slot 2, which is still live")
}

func TestPoolReleaseIsIdempotent(t *testing.T) {
	p := NewPool(testDescriptors(), decomp.NewDefaultRegistry(), decomp.Forward, 2)
	id, _ := p.Allocate()

	p.Release(id)
	before := p.NumFree()
	p.Release(id)
	assert.Equal(t, before, p.NumFree())
}

func TestPoolInitialSizePreFillsClosedSlots(t *testing.T) {
	p := NewPool(testDescriptors(), decomp.NewDefaultRegistry(), decomp.Forward, 4)
	p.InitialSize(10)
	assert.Equal(t, 10, p.Len())
	assert.Equal(t, 10, p.NumFree())
}
