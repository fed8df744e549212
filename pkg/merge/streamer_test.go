package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnidzwetzki/timescaledb/pkg/batch"
	"github.com/jnidzwetzki/timescaledb/pkg/childscan"
	"github.com/jnidzwetzki/timescaledb/pkg/common"
	"github.com/jnidzwetzki/timescaledb/pkg/decomp"
)

func newStreamerPool() *batch.Pool {
	return batch.NewPool(mergeDescriptors(), decomp.NewDefaultRegistry(), decomp.Forward, 4)
}

// Scenario 1 (§8), non-merge mode: a single batch streams in raw
// encoded order.
func TestStreamerSingleBatchOrder(t *testing.T) {
	child := childscan.NewSliceScan([]*childscan.Tuple{mergeTuple(4, 3, 2, 1)})
	s := NewStreamer(child, newStreamerPool(), nil)

	var out []int64
	for {
		row, ok, err := s.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		out = append(out, row[0].I64)
	}
	assert.Equal(t, []int64{4, 3, 2, 1}, out)
}

// §4.5 "on batch end, re-pull": multiple batches stream back to back
// with no merge-ordering applied.
func TestStreamerRePullsAcrossBatches(t *testing.T) {
	child := childscan.NewSliceScan([]*childscan.Tuple{
		mergeTuple(1, 2),
		mergeTuple(3, 4, 5),
	})
	s := NewStreamer(child, newStreamerPool(), nil)

	var out []int64
	for {
		row, ok, err := s.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		out = append(out, row[0].I64)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, out)
}

// §4.5 "A qualifier expression may be applied after decode, discarding
// non-matching tuples."
func TestStreamerQualifierDiscardsRows(t *testing.T) {
	child := childscan.NewSliceScan([]*childscan.Tuple{mergeTuple(1, 2, 3, 4, 5)})
	onlyEven := func(row []common.Value) bool { return row[0].I64%2 == 0 }
	s := NewStreamer(child, newStreamerPool(), onlyEven)

	var out []int64
	for {
		row, ok, err := s.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		out = append(out, row[0].I64)
	}
	assert.Equal(t, []int64{2, 4}, out)
}
