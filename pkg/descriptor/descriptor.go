// Package descriptor builds the Column-Descriptor Table (§4.1): the
// static, per-operator mapping shared read-only by every BatchState that
// describes, for each input-batch column, whether it is a segment-wide
// constant, a per-row compressed stream, the batch row-count field, or
// the sort-sequence-number field.
package descriptor

import (
	"errors"
	"fmt"

	"github.com/jnidzwetzki/timescaledb/pkg/common"
)

type ColumnKind int

const (
	SegmentConst ColumnKind = iota
	Compressed
	RowCount
	SequenceNum
)

func (k ColumnKind) String() string {
	switch k {
	case SegmentConst:
		return "SEGMENT_CONST"
	case Compressed:
		return "COMPRESSED"
	case RowCount:
		return "ROWCOUNT"
	case SequenceNum:
		return "SEQUENCE_NUM"
	default:
		return "UNKNOWN"
	}
}

// Reserved negative output attnos (§4.1).
const (
	CountSentinel  = -1
	SeqNumSentinel = -2
)

// ColumnDescriptor is immutable for the life of the operator (§3).
type ColumnDescriptor struct {
	Kind ColumnKind
	// OutputAttno is the 1-based index into the output tuple; negative
	// values denote metadata that is never materialized into the output.
	OutputAttno int
	// InputAttno is the 1-based index into the compressed input tuple.
	InputAttno int
	TypeOid    common.LType
}

var ErrEmptyDecompressionMap = errors.New("descriptor: decompression map is empty")

// ErrUnknownSentinelAttno is returned for a negative output attno that is
// neither CountSentinel nor SeqNumSentinel (§4.1, §7 configuration error).
var ErrUnknownSentinelAttno = errors.New("descriptor: unknown negative output attno")

// Classifier resolves an ordinary (positive-attno) compressed-input column
// to SEGMENT_CONST or COMPRESSED by looking up its name in the catalog
// (§4.1). This is the seam the out-of-core hypertable catalog (§1) is
// plugged in through.
type Classifier interface {
	IsSegmentBy(columnName string) bool
}

// ColumnNamer supplies the compressed-table column name for a given
// output attno, so Classifier can look it up. In production this comes
// from the planner's column mapping (§1); tests supply a map.
type ColumnNamer interface {
	ColumnName(outputAttno int) (string, bool)
}

// BuildColumnDescriptors implements the construction contract of §4.1.
// decompressionMap is the ordered sequence of output attnos (zero meaning
// "ignore this input column"); its length fixes InputAttno assignment
// (the 1-based position in the map, including skipped entries), so the
// child scan's tuple layout is preserved even for ignored columns.
func BuildColumnDescriptors(
	decompressionMap []int,
	namer ColumnNamer,
	classifier Classifier,
	outputTypes map[int]common.LType,
) ([]ColumnDescriptor, error) {
	if len(decompressionMap) == 0 {
		return nil, ErrEmptyDecompressionMap
	}

	var out []ColumnDescriptor
	for i, outputAttno := range decompressionMap {
		inputAttno := i + 1
		if outputAttno == 0 {
			continue
		}

		desc := ColumnDescriptor{OutputAttno: outputAttno, InputAttno: inputAttno}
		switch {
		case outputAttno == CountSentinel:
			desc.Kind = RowCount
		case outputAttno == SeqNumSentinel:
			desc.Kind = SequenceNum
		case outputAttno < 0:
			return nil, fmt.Errorf("%w: %d", ErrUnknownSentinelAttno, outputAttno)
		default:
			name, ok := namer.ColumnName(outputAttno)
			if !ok {
				return nil, fmt.Errorf("descriptor: no column name for output attno %d", outputAttno)
			}
			if classifier.IsSegmentBy(name) {
				desc.Kind = SegmentConst
			} else {
				desc.Kind = Compressed
			}
			desc.TypeOid = outputTypes[outputAttno]
		}
		out = append(out, desc)
	}
	return out, nil
}

// NumColumns is the count of non-zero output attnos (§4.1 invariant).
func NumColumns(decompressionMap []int) int {
	n := 0
	for _, a := range decompressionMap {
		if a != 0 {
			n++
		}
	}
	return n
}
