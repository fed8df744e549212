package decomp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/jnidzwetzki/timescaledb/pkg/common"
)

// EncodeLZ4Text builds the payload for AlgorithmLZ4Text: a 4-byte row
// count, an uncompressed null bitmap, then the non-null row strings
// length-prefixed, concatenated and LZ4-framed — the same per-block framing
// dot5enko-simple-column-db uses for its string columns.
func EncodeLZ4Text(values []common.Value) ([]byte, error) {
	var raw bytes.Buffer
	nullBitmap := make([]byte, (len(values)+7)/8)
	for i, v := range values {
		if v.IsNull {
			nullBitmap[i/8] |= 1 << uint(i%8)
			continue
		}
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(v.Str)))
		raw.Write(lenBuf[:])
		raw.WriteString(v.Str)
	}

	var compressed bytes.Buffer
	zw := lz4.NewWriter(&compressed)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		return nil, fmt.Errorf("decomp: lz4 compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("decomp: lz4 compress: %w", err)
	}

	out := make([]byte, 0, 4+len(nullBitmap)+compressed.Len())
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(values)))
	out = append(out, countBuf[:]...)
	out = append(out, nullBitmap...)
	out = append(out, compressed.Bytes()...)
	return out, nil
}

// newLZ4TextIterator decodes exactly the rows the payload's own header
// declares (encodedRows), regardless of rowCount: like the array codec,
// this codec serves whatever it has and leaves reconciling that against
// the batch's ROWCOUNT to State.DecodeNext (§4.3 "Consistency check").
func newLZ4TextIterator(typ common.LType, payload []byte, rowCount common.IdxType, dir Direction) (Iterator, error) {
	if len(payload) < 4 {
		return nil, fmt.Errorf("decomp: lz4 codec payload missing row count header")
	}
	encodedRows := common.IdxType(binary.LittleEndian.Uint32(payload))
	nullBitmapLen := (int(encodedRows) + 7) / 8
	if len(payload) < 4+nullBitmapLen {
		return nil, fmt.Errorf("decomp: lz4 codec payload missing null bitmap")
	}
	nullBitmap := payload[4 : 4+nullBitmapLen]
	compressed := payload[4+nullBitmapLen:]

	zr := lz4.NewReader(bytes.NewReader(compressed))
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decomp: lz4 decompress: %w", err)
	}

	values := make([]common.Value, 0, encodedRows)
	nulls := make([]bool, 0, encodedRows)
	off := 0
	for i := common.IdxType(0); i < encodedRows; i++ {
		isNull := nullBitmap[i/8]&(1<<uint(i%8)) != 0
		if isNull {
			values = append(values, common.NullValue(typ))
			nulls = append(nulls, true)
			continue
		}
		if off+4 > len(raw) {
			return nil, fmt.Errorf("decomp: lz4 codec truncated string data at row %d of %d", i, encodedRows)
		}
		n := int(binary.LittleEndian.Uint32(raw[off:]))
		off += 4
		if off+n > len(raw) {
			return nil, fmt.Errorf("decomp: truncated lz4 string payload")
		}
		values = append(values, common.Value{Typ: typ, Str: string(raw[off : off+n])})
		nulls = append(nulls, false)
		off += n
	}
	return newSliceIterator(values, nulls, dir), nil
}
