// Package ingest implements the bulk-ingest producer path named in §6
// as out of core for the operator but supplemented here from
// original_source/src/copy.c's CopyMultiInsertInfo: buffer tuples
// per destination chunk, flush a chunk's buffer once it crosses
// MaxBufferedTuples or MaxBufferedBytes, and cap the number of
// concurrently tracked per-chunk buffers, trimming the oldest first.
package ingest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jnidzwetzki/timescaledb/pkg/catalog"
	"github.com/jnidzwetzki/timescaledb/pkg/common"
	"github.com/jnidzwetzki/timescaledb/pkg/config"
	"github.com/jnidzwetzki/timescaledb/pkg/logging"
	"go.uber.org/zap"
)

// Inserter writes one chunk's buffered rows to storage. The real
// destination (a compressed-batch table writer) is out of scope; tests
// and cmd/chunkscan supply a fixture.
type Inserter interface {
	InsertBatch(ctx context.Context, chunk catalog.ChunkRelID, rows [][]common.Value) error
}

// buffer is one chunk's CopyMultiInsertBuffer equivalent: tuples plus a
// running byte estimate, both reset on flush.
type buffer struct {
	rows  [][]common.Value
	bytes int
}

func rowSize(row []common.Value) int {
	n := 0
	for _, v := range row {
		switch {
		case v.IsNull:
			n++
		case v.Str != "":
			n += len(v.Str)
		default:
			n += 8
		}
	}
	return n
}

// Buffers is the CopyMultiInsertInfo equivalent (original_source's
// copy.c): one buffer per destination chunk, flushed once the shared
// tuple/byte thresholds are crossed, with a cap on how many per-chunk
// buffers stay tracked between flushes.
type Buffers struct {
	cfg      config.IngestConfig
	inserter Inserter

	order   []catalog.ChunkRelID // insertion order, oldest first (trim target)
	byChunk map[catalog.ChunkRelID]*buffer

	bufferedTuples int
	bufferedBytes  int
}

func NewBuffers(cfg config.IngestConfig, inserter Inserter) *Buffers {
	return &Buffers{
		cfg:      cfg,
		inserter: inserter,
		byChunk:  make(map[catalog.ChunkRelID]*buffer),
	}
}

// Add appends row to chunk's buffer, flushing every tracked buffer once
// the aggregate thresholds are crossed (§6 "multi-insert buffered up to
// 1000 tuples or 64 KiB"). current is passed through to Flush so the
// trim policy never evicts the chunk still being written.
func (b *Buffers) Add(ctx context.Context, current catalog.ChunkRelID, row []common.Value) error {
	buf, ok := b.byChunk[current]
	if !ok {
		buf = &buffer{}
		b.byChunk[current] = buf
		b.order = append(b.order, current)
	}
	buf.rows = append(buf.rows, row)
	sz := rowSize(row)
	buf.bytes += sz
	b.bufferedTuples++
	b.bufferedBytes += sz

	if b.bufferedTuples >= b.cfg.MaxBufferedTuples || b.bufferedBytes >= b.cfg.MaxBufferedBytes {
		return b.Flush(ctx, current)
	}
	return nil
}

// Flush writes every tracked buffer's rows out concurrently (§9
// "concurrent per-chunk buffer flush", golang.org/x/sync/errgroup),
// resets the shared counters, then trims the tracked-buffer list down
// to MaxRetainedBuffers, evicting the oldest first and never the chunk
// named by current (original_source/src/copy.c
// CopyMultiInsertInfoFlush's "never remove the buffer that's currently
// being used" rule).
func (b *Buffers) Flush(ctx context.Context, current catalog.ChunkRelID) error {
	g, gctx := errgroup.WithContext(ctx)
	for chunk, buf := range b.byChunk {
		if len(buf.rows) == 0 {
			continue
		}
		chunk, rows := chunk, buf.rows
		g.Go(func() error {
			if err := b.inserter.InsertBatch(gctx, chunk, rows); err != nil {
				return fmt.Errorf("ingest: flushing chunk %d: %w", chunk, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, buf := range b.byChunk {
		buf.rows = nil
		buf.bytes = 0
	}
	b.bufferedTuples = 0
	b.bufferedBytes = 0

	b.trim(current)
	return nil
}

func (b *Buffers) trim(current catalog.ChunkRelID) {
	for len(b.order) > b.cfg.MaxRetainedBuffers {
		oldest := b.order[0]
		if oldest == current {
			// Never evict the buffer in active use: rotate it to the
			// end and evict the next-oldest instead.
			b.order = append(b.order[1:], oldest)
			oldest = b.order[0]
		}
		delete(b.byChunk, oldest)
		b.order = b.order[1:]
		logging.Debug("ingest: evicted idle chunk buffer", zap.Uint64("chunk_relid", uint64(oldest)))
	}
}

// NumTrackedBuffers is the number of chunk buffers currently retained.
func (b *Buffers) NumTrackedBuffers() int {
	return len(b.byChunk)
}
