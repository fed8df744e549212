package ingest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnidzwetzki/timescaledb/pkg/catalog"
	"github.com/jnidzwetzki/timescaledb/pkg/common"
	"github.com/jnidzwetzki/timescaledb/pkg/config"
)

type recordingInserter struct {
	mu    sync.Mutex
	calls map[catalog.ChunkRelID]int
	rows  map[catalog.ChunkRelID][][]common.Value
}

func newRecordingInserter() *recordingInserter {
	return &recordingInserter{
		calls: make(map[catalog.ChunkRelID]int),
		rows:  make(map[catalog.ChunkRelID][][]common.Value),
	}
}

func (r *recordingInserter) InsertBatch(ctx context.Context, chunk catalog.ChunkRelID, rows [][]common.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[chunk]++
	r.rows[chunk] = append(r.rows[chunk], rows...)
	return nil
}

func intRow(v int64) []common.Value {
	return []common.Value{common.IntValue(common.LType{Id: common.LTID_BIGINT}, v)}
}

func TestBuffersFlushOnTupleThreshold(t *testing.T) {
	ins := newRecordingInserter()
	cfg := config.IngestConfig{MaxBufferedTuples: 3, MaxBufferedBytes: 1 << 30, MaxRetainedBuffers: 32}
	b := NewBuffers(cfg, ins)

	for i := int64(0); i < 3; i++ {
		require.NoError(t, b.Add(context.Background(), catalog.ChunkRelID(1), intRow(i)))
	}
	assert.Equal(t, 1, ins.calls[catalog.ChunkRelID(1)])
	assert.Len(t, ins.rows[catalog.ChunkRelID(1)], 3)
}

func TestBuffersFlushOnByteThreshold(t *testing.T) {
	ins := newRecordingInserter()
	cfg := config.IngestConfig{MaxBufferedTuples: 1000, MaxBufferedBytes: 16, MaxRetainedBuffers: 32}
	b := NewBuffers(cfg, ins)

	require.NoError(t, b.Add(context.Background(), catalog.ChunkRelID(1), intRow(1)))
	require.NoError(t, b.Add(context.Background(), catalog.ChunkRelID(1), intRow(2)))
	assert.Equal(t, 1, ins.calls[catalog.ChunkRelID(1)])
}

func TestBuffersFlushesMultipleChunksConcurrently(t *testing.T) {
	ins := newRecordingInserter()
	cfg := config.IngestConfig{MaxBufferedTuples: 4, MaxBufferedBytes: 1 << 30, MaxRetainedBuffers: 32}
	b := NewBuffers(cfg, ins)

	require.NoError(t, b.Add(context.Background(), catalog.ChunkRelID(1), intRow(1)))
	require.NoError(t, b.Add(context.Background(), catalog.ChunkRelID(2), intRow(2)))
	require.NoError(t, b.Add(context.Background(), catalog.ChunkRelID(1), intRow(3)))
	require.NoError(t, b.Add(context.Background(), catalog.ChunkRelID(2), intRow(4)))

	assert.Equal(t, 1, ins.calls[catalog.ChunkRelID(1)])
	assert.Equal(t, 1, ins.calls[catalog.ChunkRelID(2)])
}

func TestBuffersTrimsOldestFirst(t *testing.T) {
	ins := newRecordingInserter()
	cfg := config.IngestConfig{MaxBufferedTuples: 1, MaxBufferedBytes: 1 << 30, MaxRetainedBuffers: 2}
	b := NewBuffers(cfg, ins)

	require.NoError(t, b.Add(context.Background(), catalog.ChunkRelID(1), intRow(1)))
	require.NoError(t, b.Add(context.Background(), catalog.ChunkRelID(2), intRow(2)))
	require.NoError(t, b.Add(context.Background(), catalog.ChunkRelID(3), intRow(3)))

	assert.Equal(t, 2, b.NumTrackedBuffers())
	_, tracked := b.byChunk[catalog.ChunkRelID(1)]
	assert.False(t, tracked, "oldest buffer should have been trimmed")
}

// The chunk actively being written can end up as the oldest tracked
// buffer (created first, still receiving rows while others were added
// around it). The trim policy must rotate past it rather than evict it
// (original_source/src/copy.c CopyMultiInsertInfoFlush: "We never want
// to remove the buffer that's currently being used").
func TestBuffersNeverTrimsCurrentChunk(t *testing.T) {
	ins := newRecordingInserter()
	cfg := config.IngestConfig{MaxBufferedTuples: 5, MaxBufferedBytes: 1 << 30, MaxRetainedBuffers: 2}
	b := NewBuffers(cfg, ins)

	require.NoError(t, b.Add(context.Background(), catalog.ChunkRelID(1), intRow(1))) // A
	require.NoError(t, b.Add(context.Background(), catalog.ChunkRelID(2), intRow(2))) // B
	require.NoError(t, b.Add(context.Background(), catalog.ChunkRelID(3), intRow(3))) // C
	require.NoError(t, b.Add(context.Background(), catalog.ChunkRelID(1), intRow(4))) // A again
	require.NoError(t, b.Add(context.Background(), catalog.ChunkRelID(1), intRow(5))) // A: trips the 5-tuple threshold

	assert.Equal(t, 2, b.NumTrackedBuffers())
	_, aTracked := b.byChunk[catalog.ChunkRelID(1)]
	_, bTracked := b.byChunk[catalog.ChunkRelID(2)]
	assert.True(t, aTracked, "chunk still being actively written must survive the trim")
	assert.False(t, bTracked, "an idle older buffer should be evicted instead")
}
