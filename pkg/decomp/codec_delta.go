package decomp

import (
	"encoding/binary"
	"fmt"

	"github.com/jnidzwetzki/timescaledb/pkg/common"
)

// EncodeDeltaInt builds the payload for AlgorithmDeltaInt: a base value
// followed by zigzag-varint deltas between consecutive rows, the same
// family of encoding time-series integer/timestamp columns (e.g. Gorilla
// delta-of-delta) use upstream. NULLs are not supported by this codec —
// callers with nullable integer columns use AlgorithmArray instead.
func EncodeDeltaInt(values []int64) []byte {
	buf := make([]byte, 0, len(values)*2+8)
	var first [8]byte
	if len(values) > 0 {
		binary.LittleEndian.PutUint64(first[:], uint64(values[0]))
	}
	buf = append(buf, first[:]...)
	prev := int64(0)
	if len(values) > 0 {
		prev = values[0]
	}
	var tmp [binary.MaxVarintLen64]byte
	for i := 1; i < len(values); i++ {
		delta := values[i] - prev
		n := binary.PutVarint(tmp[:], delta)
		buf = append(buf, tmp[:n]...)
		prev = values[i]
	}
	return buf
}

func newDeltaIntIterator(typ common.LType, payload []byte, rowCount common.IdxType, dir Direction) (Iterator, error) {
	values := make([]common.Value, 0, rowCount)
	if rowCount == 0 {
		return newSliceIterator(values, nil, dir), nil
	}
	if len(payload) < 8 {
		return nil, fmt.Errorf("decomp: delta codec payload missing base value")
	}
	base := int64(binary.LittleEndian.Uint64(payload))
	values = append(values, common.IntValue(typ, base))
	off := 8
	prev := base
	for i := common.IdxType(1); i < rowCount; i++ {
		delta, n := binary.Varint(payload[off:])
		if n <= 0 {
			return nil, fmt.Errorf("%w: delta codec ran out of deltas at row %d of %d", ErrBatchDesync, i, rowCount)
		}
		off += n
		prev += delta
		values = append(values, common.IntValue(typ, prev))
	}
	if off != len(payload) {
		return nil, fmt.Errorf("%w: delta codec payload has %d trailing bytes after %d rows",
			ErrBatchDesync, len(payload)-off, rowCount)
	}
	return newSliceIterator(values, nil, dir), nil
}
