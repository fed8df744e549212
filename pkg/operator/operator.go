// Package operator implements the compressed-chunk scan operator's
// lifecycle (§4.6): Begin/Next/Rescan/End over either the Merge Driver
// or the non-merge Streamer, depending on Config.MergeEnabled.
package operator

import (
	"context"
	"fmt"

	"github.com/jnidzwetzki/timescaledb/pkg/batch"
	"github.com/jnidzwetzki/timescaledb/pkg/catalog"
	"github.com/jnidzwetzki/timescaledb/pkg/childscan"
	"github.com/jnidzwetzki/timescaledb/pkg/common"
	"github.com/jnidzwetzki/timescaledb/pkg/decomp"
	"github.com/jnidzwetzki/timescaledb/pkg/descriptor"
	"github.com/jnidzwetzki/timescaledb/pkg/logging"
	"github.com/jnidzwetzki/timescaledb/pkg/merge"
	"go.uber.org/zap"
)

// Projection is the downstream consumer's output-column list, the seam
// the tableoid-rewrite guard (§4.6) operates on: decoded tuples are
// virtual and carry no system columns, so a surviving tableoid
// reference has to be replaced with a literal before the projection
// runs, or it crashes.
type Projection interface {
	HasTableOidRef() bool
	RewriteTableOidRefs(chunkRelID catalog.ChunkRelID)
}

type source interface {
	Next() ([]common.Value, bool, error)
	Rescan() error
	Close() error
}

// Operator is the compressed-chunk scan/merge-append operator (§2).
type Operator struct {
	cfg        Config
	child      childscan.ChildScan
	catalog    *catalog.Cache
	namer      descriptor.ColumnNamer
	projection Projection
	registry   *decomp.Registry
	poolGrowBy int
	heapCap    int

	descriptors []descriptor.ColumnDescriptor
	pool        *batch.Pool
	src         source
	initialized bool
}

// New constructs an Operator; Begin must still be called before Next.
func New(cfg Config, child childscan.ChildScan, cat *catalog.Cache, namer descriptor.ColumnNamer, projection Projection, registry *decomp.Registry, poolGrowBy, heapDefaultCap int) (*Operator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Operator{
		cfg:        cfg,
		child:      child,
		catalog:    cat,
		namer:      namer,
		projection: projection,
		registry:   registry,
		poolGrowBy: poolGrowBy,
		heapCap:    heapDefaultCap,
	}, nil
}

// Begin loads catalog-derived compression info, builds the
// column-descriptor table, rewrites any surviving tableoid reference
// (§4.6), and sets up the pool and the merge or streaming source over the
// child scan it was constructed with; the child scan itself is not
// touched.
func (o *Operator) Begin() error {
	info, err := o.catalog.Get(catalog.Key{Hypertable: o.cfg.HypertableID, Chunk: o.cfg.ChunkRelID})
	if err != nil {
		return err
	}
	descs, err := descriptor.BuildColumnDescriptors(o.cfg.DecompressionMap, o.namer, info, info.OutputTypes)
	if err != nil {
		return err
	}
	o.descriptors = descs

	if o.projection != nil && o.projection.HasTableOidRef() {
		o.projection.RewriteTableOidRefs(o.cfg.ChunkRelID)
	}

	dir := decomp.Forward
	if o.cfg.Reverse {
		dir = decomp.Reverse
	}
	o.pool = batch.NewPool(o.descriptors, o.registry, dir, o.poolGrowBy)

	if o.cfg.MergeEnabled {
		o.src = merge.NewDriver(o.child, o.pool, o.cfg.SortKeys, o.heapCap)
	} else {
		o.src = merge.NewStreamer(o.child, o.pool, nil)
	}
	o.initialized = true
	logging.Info("operator begin",
		zap.Uint64("hypertable_id", uint64(o.cfg.HypertableID)),
		zap.Uint64("chunk_relid", uint64(o.cfg.ChunkRelID)),
		zap.Bool("merge_enabled", o.cfg.MergeEnabled))
	return nil
}

// Next returns the next output tuple, or ok=false at end of stream.
// Checked for cancellation at the top, per §5 "Cancellation & timeouts".
func (o *Operator) Next(ctx context.Context) (row []common.Value, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("operator: cancelled: %w", err)
	}
	if !o.initialized {
		if err := o.Begin(); err != nil {
			return nil, false, err
		}
	}
	return o.src.Next()
}

// Rescan clears initialized and rescans the child; the next Next() call
// re-runs Begin from scratch, so the old pool and (in merge mode) its
// heap are simply dropped rather than reused (§4.6 "the heap is
// discarded, not reused: correctness outweighs reuse cost").
func (o *Operator) Rescan() error {
	o.initialized = false
	o.src = nil
	o.pool = nil
	return o.child.Rescan()
}

// End drops all slots and closes the child (§4.6).
func (o *Operator) End() error {
	if o.src == nil {
		return o.child.Close()
	}
	return o.src.Close()
}

// ExplainDetail reports the single property spec.md §6 names: "Per
// segment merge append" (`decompress_chunk_explain` in
// original_source/tsl/src/nodes/decompress_chunk/exec.c:723-728 emits
// exactly this one ExplainPropertyBool and nothing else).
type ExplainDetail struct {
	PerSegmentMergeAppend bool
}

func (o *Operator) ExplainDetail() ExplainDetail {
	return ExplainDetail{PerSegmentMergeAppend: o.cfg.MergeEnabled}
}
