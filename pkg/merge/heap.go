package merge

import "github.com/jnidzwetzki/timescaledb/pkg/common"

// SlotAccessor resolves a SlotNumber to the row the comparator compares
// (§4.5 "fetch the output_slot of each"). Implemented by *batch.Pool in
// production; a test fixture in heap_test.go. Len bounds the valid id
// range, so the heap can assert "both ids in range" (§4.5 comparator
// preconditions) before dereferencing either one.
type SlotAccessor interface {
	OutputSlot(id common.SlotNumber) []common.Value
	Len() int
}

// Heap is the Merge Driver's binary min-heap over BatchState ids (§3
// MergeHeap, §4.5 "Heap sizing"). Owned by value: ids are plain
// SlotNumbers, never pointers into the array, so a grow never
// invalidates anything a caller is holding (§9 design note "Heap
// reallocation").
type Heap struct {
	ids  []common.SlotNumber
	keys []SortKey
	rows SlotAccessor
}

// NewHeap starts at capacity defaultCap (BINARY_HEAP_DEFAULT_CAPACITY,
// §2, §4.5).
func NewHeap(keys []SortKey, rows SlotAccessor, defaultCap int) *Heap {
	if defaultCap <= 0 {
		defaultCap = 1
	}
	return &Heap{
		ids:  make([]common.SlotNumber, 0, defaultCap),
		keys: keys,
		rows: rows,
	}
}

func (h *Heap) Len() int      { return len(h.ids) }
func (h *Heap) IsEmpty() bool { return len(h.ids) == 0 }

func (h *Heap) less(i, j int) bool {
	ai, bi := h.ids[i], h.ids[j]
	bound := h.rows.Len()
	common.AssertFunc(int(ai) >= 0 && int(ai) < bound && int(bi) >= 0 && int(bi) < bound,
		"merge: comparator precondition: both ids must be in range")
	a := h.rows.OutputSlot(ai)
	b := h.rows.OutputSlot(bi)
	return CompareSlots(h.keys, ai, bi, a, b) < 0
}

func (h *Heap) swap(i, j int) {
	h.ids[i], h.ids[j] = h.ids[j], h.ids[i]
}

// Insert adds id, doubling capacity first if the backing array is full
// (§4.5 "Heap sizing": "before each insert, if size == capacity, double
// capacity").
func (h *Heap) Insert(id common.SlotNumber) {
	if len(h.ids) == cap(h.ids) {
		grown := make([]common.SlotNumber, len(h.ids), cap(h.ids)*2)
		copy(grown, h.ids)
		h.ids = grown
	}
	h.ids = append(h.ids, id)
	h.siftUp(len(h.ids) - 1)
}

// BuildFromSlice heap-ifies ids in place, linear time (§4.5 "INIT: ...
// Build the heap (linear-time)").
func BuildFromSlice(keys []SortKey, rows SlotAccessor, ids []common.SlotNumber) *Heap {
	h := &Heap{ids: ids, keys: keys, rows: rows}
	for i := len(h.ids)/2 - 1; i >= 0; i-- {
		h.siftDown(i)
	}
	return h
}

// Peek returns the id whose row sorts first without removing it.
func (h *Heap) Peek() common.SlotNumber {
	return h.ids[0]
}

// ReplaceTop re-establishes the heap property after the top id's row
// changed in place (§4.5 STREAMING "If it yielded a tuple, replace_top(top)
// (sift-down)").
func (h *Heap) ReplaceTop() {
	h.siftDown(0)
}

// RemoveTop drops the top id (§4.5 STREAMING "remove_top()").
func (h *Heap) RemoveTop() common.SlotNumber {
	top := h.ids[0]
	last := len(h.ids) - 1
	h.ids[0] = h.ids[last]
	h.ids = h.ids[:last]
	if len(h.ids) > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *Heap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			return
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *Heap) siftDown(i int) {
	n := len(h.ids)
	for {
		l, r := 2*i+1, 2*i+2
		smallest := i
		if l < n && h.less(l, smallest) {
			smallest = l
		}
		if r < n && h.less(r, smallest) {
			smallest = r
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}
