package merge

import (
	"github.com/jnidzwetzki/timescaledb/pkg/batch"
	"github.com/jnidzwetzki/timescaledb/pkg/childscan"
	"github.com/jnidzwetzki/timescaledb/pkg/common"
)

// Qualifier filters decoded rows after decode (§4.5 "Non-merge mode...
// A qualifier expression may be applied after decode, discarding
// non-matching tuples").
type Qualifier func(row []common.Value) bool

// Streamer is the non-merge mode of §4.5: a single reused BatchState,
// pulling one input batch at a time from the child scan. Kept as its
// own small type rather than unified with Driver, per §9 design note
// "Mixed merge/non-merge code paths... keep as two small, independent
// methods sharing only BatchState and ColumnDescriptor types; do not
// attempt to unify."
type Streamer struct {
	child     childscan.ChildScan
	pool      *batch.Pool
	state     *batch.State
	stateID   common.SlotNumber
	hasState  bool
	qualifier Qualifier
}

// NewStreamer pulls a fresh BatchState from pool each time the current
// batch runs out (§4.5 "on batch end, re-pull"); pool need only ever
// hold one live slot for a Streamer.
func NewStreamer(child childscan.ChildScan, pool *batch.Pool, qualifier Qualifier) *Streamer {
	return &Streamer{child: child, pool: pool, qualifier: qualifier}
}

// Next implements §4.5 "Non-merge mode": pull a batch, open it, decode
// one row, re-pulling across batch boundaries until a row passes the
// qualifier or the child scan is exhausted.
func (s *Streamer) Next() (row []common.Value, ok bool, err error) {
	for {
		if !s.hasState {
			raw, ok, err := s.child.Next()
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
			id, st := s.pool.Allocate()
			if err := st.Open(raw); err != nil {
				return nil, false, err
			}
			s.state, s.stateID, s.hasState = st, id, true
		}

		decoded, err := s.state.DecodeNext()
		if err != nil {
			return nil, false, err
		}
		if !decoded {
			s.pool.Release(s.stateID)
			s.hasState = false
			continue
		}

		out := s.state.OutputSlot()
		if s.qualifier != nil && !s.qualifier(out) {
			continue
		}
		return out, true, nil
	}
}

// Rescan restarts the child scan and releases the in-flight batch state.
func (s *Streamer) Rescan() error {
	if s.hasState {
		s.pool.Release(s.stateID)
		s.hasState = false
	}
	return s.child.Rescan()
}

// Close releases the in-flight batch state and closes the child scan.
func (s *Streamer) Close() error {
	if s.hasState {
		s.pool.Release(s.stateID)
		s.hasState = false
	}
	return s.child.Close()
}
