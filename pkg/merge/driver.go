package merge

import (
	"github.com/jnidzwetzki/timescaledb/pkg/batch"
	"github.com/jnidzwetzki/timescaledb/pkg/childscan"
	"github.com/jnidzwetzki/timescaledb/pkg/common"
)

// DriverState is the explicit state machine of §4.5/§9: "model as an
// explicit enum {Init, Streaming, Done}... do not rely on null-pointer
// checks as implicit state." Named after the teacher's own SS_INIT /
// SS_SORT / SS_SCAN convention (pkg/compute/sort_types.go SortState).
type DriverState int

const (
	DS_INIT DriverState = iota
	DS_STREAMING
	DS_DONE
)

// Driver is the Merge Driver (§4.5): pulls every input batch up front,
// opens each into a pooled BatchState, and k-way-merges their decoded
// rows on SortKeys through a Heap.
type Driver struct {
	child   childscan.ChildScan
	pool    *batch.Pool
	keys    []SortKey
	heapCap int
	state   DriverState
	heap    *Heap

	// pendingAdvance defers decode_next on the current heap top until
	// the *next* call to Next, per §4.5 "Why advance after emit".
	pendingAdvance bool
}

func NewDriver(child childscan.ChildScan, pool *batch.Pool, keys []SortKey, heapDefaultCap int) *Driver {
	return &Driver{
		child:   child,
		pool:    pool,
		keys:    keys,
		heapCap: heapDefaultCap,
		state:   DS_INIT,
	}
}

// Next returns the next decoded tuple in merge order, or ok=false once
// every input batch has been fully consumed.
func (d *Driver) Next() (tuple []common.Value, ok bool, err error) {
	if d.state == DS_INIT {
		if err := d.init(); err != nil {
			return nil, false, err
		}
	}
	if d.state == DS_DONE {
		return nil, false, nil
	}

	// §4.5 "Why advance after emit": the previous call's top must be
	// advanced before this call's peek, so the returned slot stays
	// stable until the *next* call rather than changing underfoot.
	if d.pendingAdvance {
		if err := d.advanceTop(); err != nil {
			return nil, false, err
		}
	}
	if d.heap.IsEmpty() {
		d.state = DS_DONE
		return nil, false, nil
	}

	top := d.heap.Peek()
	d.pendingAdvance = true
	return d.pool.Get(top).OutputSlot(), true, nil
}

// init implements the INIT state (§4.5): pull all input tuples, open one
// BatchState per tuple, decode its first row, and heap-insert every
// non-empty result. A batch already exhausted after open (count=0) still
// takes a pool slot for its open and first decode; that slot is released
// straight away, so the batch never enters the heap and the next batch
// reuses its id.
func (d *Driver) init() error {
	var ids []common.SlotNumber
	for {
		raw, ok, err := d.child.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		id, state := d.pool.Allocate()
		if err := state.Open(raw); err != nil {
			return err
		}
		decoded, err := state.DecodeNext()
		if err != nil {
			return err
		}
		if !decoded {
			// count=0: never enters the heap (§8 boundary case).
			d.pool.Release(id)
			continue
		}
		ids = append(ids, id)
	}

	d.heap = BuildFromSlice(d.keys, d.pool, ids)
	if d.heapCap > len(ids) {
		// Heap.Insert grows lazily; BuildFromSlice already owns exactly
		// len(ids) capacity, so pad up to BINARY_HEAP_DEFAULT_CAPACITY
		// only when that default exceeds what INIT actually needed.
		grown := make([]common.SlotNumber, len(d.heap.ids), d.heapCap)
		copy(grown, d.heap.ids)
		d.heap.ids = grown
	}
	d.state = DS_STREAMING
	d.pendingAdvance = false
	return nil
}

// advanceTop runs decode_next on the current top id, then either
// sifts it back down (more rows) or removes and releases it (exhausted).
func (d *Driver) advanceTop() error {
	top := d.heap.Peek()
	state := d.pool.Get(top)
	decoded, err := state.DecodeNext()
	if err != nil {
		return err
	}
	if decoded {
		d.heap.ReplaceTop()
	} else {
		d.heap.RemoveTop()
		d.pool.Release(top)
	}
	d.pendingAdvance = false
	return nil
}

// Rescan discards the heap outright rather than reusing it (§4.6
// "rescan... the heap is discarded, not reused: correctness outweighs
// reuse cost") and releases every still-live batch back to the pool.
func (d *Driver) Rescan() error {
	if d.heap != nil {
		for !d.heap.IsEmpty() {
			d.pool.Release(d.heap.RemoveTop())
		}
	}
	d.heap = nil
	d.pendingAdvance = false
	d.state = DS_INIT
	return d.child.Rescan()
}

// Close releases every remaining live batch and closes the child scan
// (§4.6 "end: drops all slots and closes the child").
func (d *Driver) Close() error {
	if d.heap != nil {
		for !d.heap.IsEmpty() {
			d.pool.Release(d.heap.RemoveTop())
		}
	}
	d.heap = nil
	d.state = DS_DONE
	return d.child.Close()
}
