package batch

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/jnidzwetzki/timescaledb/pkg/common"
	"github.com/jnidzwetzki/timescaledb/pkg/decomp"
	"github.com/jnidzwetzki/timescaledb/pkg/descriptor"
)

// Pool is the Batch Pool (§4.4): a dense array of BatchStates, all sharing
// the same column-descriptor table and decompression registry, with a
// roaring bitmap tracking which slots are currently free. Slot ids are
// stable for the life of the pool: growth only appends, it never
// renumbers a live slot (§4.4 "re-allocation preserves existing slot
// ids").
type Pool struct {
	descriptors []descriptor.ColumnDescriptor
	registry    *decomp.Registry
	direction   decomp.Direction
	growBy      int

	slots   []*State
	freeSet *roaring.Bitmap
}

// NewPool constructs an empty pool. growBy is INITIAL_BATCH_CAPACITY (§2,
// §4.4): the step Allocate grows the pool by whenever the free set is
// empty, including the first Allocate on an empty pool. InitialSize
// does not use it; it fills to the size it is given.
func NewPool(descriptors []descriptor.ColumnDescriptor, registry *decomp.Registry, dir decomp.Direction, growBy int) *Pool {
	if growBy <= 0 {
		growBy = 1
	}
	return &Pool{
		descriptors: descriptors,
		registry:    registry,
		direction:   dir,
		growBy:      growBy,
		freeSet:     roaring.New(),
	}
}

// InitialSize pre-fills the pool with n closed slots (§4.4 "initial_size").
func (p *Pool) InitialSize(n int) {
	if n <= 0 {
		return
	}
	p.growTo(n)
}

// growTo appends fresh slots until the pool holds at least n total,
// marking every new slot free. Existing slot ids and contents are
// untouched (the underlying array is replaced, but every element is
// copied over first).
func (p *Pool) growTo(n int) {
	if n <= len(p.slots) {
		return
	}
	grown := make([]*State, n)
	copy(grown, p.slots)
	for i := len(p.slots); i < n; i++ {
		grown[i] = newState(common.SlotNumber(i), p.descriptors, p.registry, p.direction)
		p.freeSet.Add(uint32(i))
	}
	p.slots = grown
}

// Allocate returns the lowest free slot id and its BatchState, growing
// the pool by growBy first if the free set is exhausted (§4.4
// "allocate"). Amortized O(1): growth happens once every growBy calls.
func (p *Pool) Allocate() (common.SlotNumber, *State) {
	if p.freeSet.IsEmpty() {
		p.growTo(len(p.slots) + p.growBy)
	}
	id := p.freeSet.Minimum()
	p.freeSet.Remove(id)
	return common.SlotNumber(id), p.slots[id]
}

// Release closes the slot's BatchState and returns its id to the free
// set (§4.4 "release"). Safe to call on an already-released id; the
// (idempotent) Close runs again and the id is re-added to freeSet, a
// no-op for a roaring.Bitmap.
func (p *Pool) Release(id common.SlotNumber) {
	if int(id) >= len(p.slots) {
		return
	}
	p.slots[id].Close()
	p.freeSet.Add(uint32(id))
}

// Get returns the BatchState bound to id, for callers (the merge driver)
// that already hold the id and need the state it names.
func (p *Pool) Get(id common.SlotNumber) *State {
	return p.slots[id]
}

// OutputSlot satisfies merge.SlotAccessor: the heap's comparator fetches
// a batch's decoded row through the pool without needing its own
// reference to *State.
func (p *Pool) OutputSlot(id common.SlotNumber) []common.Value {
	return p.slots[id].OutputSlot()
}

// Len is the pool's current total capacity (live + free slots).
func (p *Pool) Len() int {
	return len(p.slots)
}

// NumFree is the number of ids currently in the free set.
func (p *Pool) NumFree() int {
	return int(p.freeSet.GetCardinality())
}
