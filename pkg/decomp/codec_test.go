package decomp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnidzwetzki/timescaledb/pkg/common"
)

func drain(t *testing.T, it Iterator, dir Direction) []common.Value {
	t.Helper()
	var out []common.Value
	for {
		r := it.TryNext()
		if r.IsDone {
			break
		}
		out = append(out, r.Value)
	}
	return out
}

func TestArrayCodecRoundTrip(t *testing.T) {
	typ := common.LType{Id: common.LTID_INTEGER}
	values := []common.Value{
		common.IntValue(typ, 10),
		common.NullValue(typ),
		common.IntValue(typ, 30),
	}
	payload := EncodeArray(typ, values)
	blob := WithHeader(AlgorithmArray, payload)

	reg := NewDefaultRegistry()
	id, rest, err := ParseHeader(blob)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmArray, id)

	it, err := reg.codecs[AlgorithmArray](typ, rest, 3, Forward)
	require.NoError(t, err)
	out := drain(t, it, Forward)
	require.Len(t, out, 3)
	assert.Equal(t, int64(10), out[0].I64)
	assert.True(t, out[1].IsNull)
	assert.Equal(t, int64(30), out[2].I64)
}

func TestArrayCodecReverse(t *testing.T) {
	typ := common.LType{Id: common.LTID_INTEGER}
	values := []common.Value{
		common.IntValue(typ, 1),
		common.IntValue(typ, 2),
		common.IntValue(typ, 3),
	}
	payload := EncodeArray(typ, values)

	itFwd, err := newArrayIterator(typ, payload, 3, Forward)
	require.NoError(t, err)
	fwd := drain(t, itFwd, Forward)

	itRev, err := newArrayIterator(typ, payload, 3, Reverse)
	require.NoError(t, err)
	rev := drain(t, itRev, Reverse)

	require.Len(t, fwd, 3)
	require.Len(t, rev, 3)
	for i := range fwd {
		assert.Equal(t, fwd[i].I64, rev[len(rev)-1-i].I64)
	}
}

// The codec itself never polices rowCount: it decodes every row the
// payload actually encodes and leaves reconciling that count against
// the batch's ROWCOUNT to pkg/batch.State (see
// TestStateDesyncThroughRealArrayCodec, which drives this through the
// real registry).
func TestArrayCodecIgnoresRowCountHintAndDecodesWhatThePayloadHolds(t *testing.T) {
	typ := common.LType{Id: common.LTID_INTEGER}
	values := []common.Value{common.IntValue(typ, 1), common.IntValue(typ, 2)}
	payload := EncodeArray(typ, values)
	// Claim only 1 row while the payload encodes 2.
	it, err := newArrayIterator(typ, payload, 1, Forward)
	require.NoError(t, err)
	out := drain(t, it, Forward)
	require.Len(t, out, 2)
	assert.Equal(t, int64(1), out[0].I64)
	assert.Equal(t, int64(2), out[1].I64)
}

func TestDeltaIntCodecRoundTrip(t *testing.T) {
	typ := common.LType{Id: common.LTID_BIGINT}
	raw := []int64{1000, 1005, 1005, 990, 2000}
	payload := EncodeDeltaInt(raw)

	it, err := newDeltaIntIterator(typ, payload, common.IdxType(len(raw)), Forward)
	require.NoError(t, err)
	out := drain(t, it, Forward)
	require.Len(t, out, len(raw))
	for i, v := range raw {
		assert.Equal(t, v, out[i].I64)
	}
}

func TestDeltaIntCodecReverse(t *testing.T) {
	typ := common.LType{Id: common.LTID_BIGINT}
	raw := []int64{5, 9, 3, 20}
	payload := EncodeDeltaInt(raw)

	it, err := newDeltaIntIterator(typ, payload, common.IdxType(len(raw)), Reverse)
	require.NoError(t, err)
	out := drain(t, it, Reverse)
	require.Len(t, out, len(raw))
	for i := range raw {
		assert.Equal(t, raw[len(raw)-1-i], out[i].I64)
	}
}

func TestLZ4TextCodecRoundTrip(t *testing.T) {
	typ := common.LType{Id: common.LTID_VARCHAR}
	values := []common.Value{
		common.StringValue("sensor-a"),
		common.NullValue(typ),
		common.StringValue("sensor-c is a much longer string to make lz4 do actual work"),
	}
	payload, err := EncodeLZ4Text(values)
	require.NoError(t, err)

	it, err := newLZ4TextIterator(typ, payload, 3, Forward)
	require.NoError(t, err)
	out := drain(t, it, Forward)
	require.Len(t, out, 3)
	assert.Equal(t, "sensor-a", out[0].Str)
	assert.True(t, out[1].IsNull)
	assert.Equal(t, "sensor-c is a much longer string to make lz4 do actual work", out[2].Str)
}

func TestRegistryDispatch(t *testing.T) {
	reg := NewDefaultRegistry()
	typ := common.LType{Id: common.LTID_INTEGER}
	payload := EncodeArray(typ, []common.Value{common.IntValue(typ, 7)})
	blob := WithHeader(AlgorithmArray, payload)

	it, err := reg.New(typ, blob, 1, Forward)
	require.NoError(t, err)
	r := it.TryNext()
	assert.False(t, r.IsDone)
	assert.Equal(t, int64(7), r.Value.I64)
}

func TestRegistryUnknownAlgorithm(t *testing.T) {
	reg := NewDefaultRegistry()
	typ := common.LType{Id: common.LTID_INTEGER}
	blob := WithHeader(AlgorithmID(99), nil)
	_, err := reg.New(typ, blob, 0, Forward)
	require.Error(t, err)
}
