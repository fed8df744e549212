// Package batch implements the per-batch working set (§4.3 Batch State)
// and the dynamically-sized pool that owns a dense array of them (§4.4
// Batch Pool). Grounded on the teacher's per-segment scan state
// (pkg/storage/table.go ColumnScanState/SegmentScanState: one segment at
// a time, one scan state per column) generalized from a single scanned
// column to the operator's whole column-descriptor table.
package batch

import (
	"fmt"

	"github.com/jnidzwetzki/timescaledb/pkg/childscan"
	"github.com/jnidzwetzki/timescaledb/pkg/common"
	"github.com/jnidzwetzki/timescaledb/pkg/decomp"
	"github.com/jnidzwetzki/timescaledb/pkg/descriptor"
)

// columnState is the per-column working state of one open batch: either a
// cached SEGMENT_CONST datum or a live COMPRESSED iterator (§3 BatchState
// "columns[]"). ROWCOUNT and SEQUENCE_NUM columns carry no extra state
// beyond their Kind.
type columnState struct {
	kind     descriptor.ColumnKind
	constVal common.Value
	iter     decomp.Iterator
}

// State is one Batch State (§3, §4.3): bound to one raw compressed-row
// tuple, decoding it one row at a time into an output slot.
type State struct {
	id          common.SlotNumber
	descriptors []descriptor.ColumnDescriptor
	registry    *decomp.Registry
	direction   decomp.Direction
	outputWidth int

	columns   []columnState
	remaining common.IdxType
	arena     *common.Arena
	input     *childscan.Tuple
	output    []common.Value // nil when empty (§3 invariant)
}

func newState(id common.SlotNumber, descriptors []descriptor.ColumnDescriptor, registry *decomp.Registry, dir decomp.Direction) *State {
	width := 0
	for _, d := range descriptors {
		if d.OutputAttno > width {
			width = d.OutputAttno
		}
	}
	return &State{
		id:          id,
		descriptors: descriptors,
		registry:    registry,
		direction:   dir,
		outputWidth: width,
		arena:       common.NewArena(256),
	}
}

func (s *State) ID() common.SlotNumber  { return s.id }
func (s *State) Remaining() common.IdxType { return s.remaining }
func (s *State) OutputSlot() []common.Value { return s.output }
func (s *State) IsEmpty() bool { return s.output == nil }

// Open binds the batch state to a raw compressed-row tuple (§4.3 "open").
// It runs in two passes over the descriptor table: first to establish
// remaining from ROWCOUNT (every COMPRESSED iterator is constructed with
// that row count; the delta codec checks its encoded length against it,
// the array and LZ4 codecs do not), then to cache SEGMENT_CONST datums
// and construct COMPRESSED iterators.
func (s *State) Open(input *childscan.Tuple) error {
	s.arena.Reset()
	s.input = input
	s.output = nil
	s.columns = make([]columnState, len(s.descriptors))

	haveRowCount := false
	for i, d := range s.descriptors {
		if d.Kind != descriptor.RowCount {
			continue
		}
		v, err := attr(input, d.InputAttno)
		if err != nil {
			return err
		}
		if v.IsNull {
			return ErrMissingRowCount
		}
		s.remaining = common.IdxType(v.I64)
		s.columns[i] = columnState{kind: d.Kind}
		haveRowCount = true
	}
	if !haveRowCount {
		return ErrMissingRowCount
	}

	for i, d := range s.descriptors {
		switch d.Kind {
		case descriptor.RowCount:
			// handled above
		case descriptor.SequenceNum:
			s.columns[i] = columnState{kind: d.Kind}
		case descriptor.SegmentConst:
			v, err := attr(input, d.InputAttno)
			if err != nil {
				return err
			}
			if !v.IsNull && v.Str != "" {
				v.Str = s.arena.CopyString(v.Str)
			}
			s.columns[i] = columnState{kind: d.Kind, constVal: v}
		case descriptor.Compressed:
			v, err := attr(input, d.InputAttno)
			if err != nil {
				return err
			}
			if v.IsNull {
				// No iterator: decode_next fills the column's
				// missing-value default (§4.3 open, case (b)/(d)).
				s.columns[i] = columnState{kind: d.Kind}
				continue
			}
			it, err := s.registry.New(d.TypeOid, []byte(v.Str), s.remaining, s.direction)
			if err != nil {
				return err
			}
			s.columns[i] = columnState{kind: d.Kind, iter: it}
		}
	}
	return nil
}

func attr(input *childscan.Tuple, inputAttno int) (common.Value, error) {
	idx := inputAttno - 1
	if idx < 0 || idx >= len(input.Values) {
		return common.Value{}, fmt.Errorf("batch: input attno %d out of range (tuple has %d columns)", inputAttno, len(input.Values))
	}
	return input.Values[idx], nil
}

// DecodeNext produces the next decoded row (§4.3 "decode_next"). It
// returns ok=false once the batch is exhausted, in which case OutputSlot
// returns nil.
func (s *State) DecodeNext() (ok bool, err error) {
	if s.remaining == 0 {
		// The batch's own counter already signaled end on a previous
		// call. Any COMPRESSED iterator that still has a value now is
		// the desync §4.3's consistency check exists to catch.
		for _, c := range s.columns {
			if c.kind == descriptor.Compressed && c.iter != nil {
				if r := c.iter.TryNext(); !r.IsDone {
					s.output = nil
					return false, fmt.Errorf("%w: batch %d", decomp.ErrBatchDesync, s.id)
				}
			}
		}
		s.output = nil
		return false, nil
	}

	out := make([]common.Value, s.outputWidth)
	for i, d := range s.descriptors {
		c := s.columns[i]
		switch d.Kind {
		case descriptor.SequenceNum:
			continue
		case descriptor.RowCount:
			s.remaining--
			continue
		case descriptor.SegmentConst:
			if d.OutputAttno > 0 {
				out[d.OutputAttno-1] = c.constVal
			}
		case descriptor.Compressed:
			if c.iter == nil {
				if d.OutputAttno > 0 {
					out[d.OutputAttno-1] = common.NullValue(d.TypeOid)
				}
				continue
			}
			r := c.iter.TryNext()
			if r.IsDone {
				// Tolerated early end (§4.3 "Failure semantics"): the
				// codec ran out before the ROWCOUNT counter did. This
				// row is discarded and the batch is exhausted.
				s.remaining = 0
				s.output = nil
				return false, nil
			}
			if d.OutputAttno > 0 {
				v := r.Value
				v.IsNull = r.IsNull
				out[d.OutputAttno-1] = v
			}
		}
	}
	s.output = out
	return true, nil
}

// Close drops iterators, clears slots, and resets the arena (§4.3
// "close"). Safe to call more than once (§8 idempotence).
func (s *State) Close() {
	s.columns = nil
	s.output = nil
	s.input = nil
	s.remaining = 0
	s.arena.Reset()
}
