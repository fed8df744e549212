// Package childscan defines the pull iterator this operator is driven
// from: one compressed-row tuple at a time, laid out per the operator's
// decompression map (§6 "Child scan interface"). The planner/optimizer,
// the hypertable catalog, and the physical child node that actually reads
// the compressed-batch table are all out of scope (§1) — this package
// only names the contract.
package childscan

import "github.com/jnidzwetzki/timescaledb/pkg/common"

// Tuple is one row of the underlying compressed-batch table: segment-by
// columns hold the per-batch constant, compressed columns hold an opaque
// blob whose header carries an algorithm id, a count column holds the
// batch's row count, and an optional sequence-number column participates
// only in external sort (§6).
type Tuple struct {
	Values []common.Value
}

// ChildScan is the pull iterator the Merge Driver and the non-merge
// streamer both consume. Implementations are free to be backed by a real
// compressed-batch table scan, a test fixture, or (as here) a slice.
type ChildScan interface {
	// Next returns the next compressed-row tuple, or ok=false when the
	// scan is exhausted. The returned Tuple is only guaranteed valid
	// until the next call to Next.
	Next() (tuple *Tuple, ok bool, err error)
	// Rescan restarts the scan from its first tuple (§4.6 operator
	// Rescan).
	Rescan() error
	Close() error
}

// SliceScan is a ChildScan over an in-memory slice of tuples, used by
// tests and by cmd/chunkscan's demo pipeline.
type SliceScan struct {
	tuples []*Tuple
	pos    int
	closed bool
}

func NewSliceScan(tuples []*Tuple) *SliceScan {
	return &SliceScan{tuples: tuples}
}

func (s *SliceScan) Next() (*Tuple, bool, error) {
	if s.pos >= len(s.tuples) {
		return nil, false, nil
	}
	t := s.tuples[s.pos]
	s.pos++
	return t, true, nil
}

func (s *SliceScan) Rescan() error {
	s.pos = 0
	return nil
}

func (s *SliceScan) Close() error {
	s.closed = true
	return nil
}

func (s *SliceScan) Closed() bool {
	return s.closed
}
