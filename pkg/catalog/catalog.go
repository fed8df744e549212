// Package catalog loads and caches the out-of-core compression
// descriptors an operator needs to build its Column-Descriptor Table
// (§4.1, §6 "hypertable_id, chunk_relid: catalog handles, used to load
// compression descriptors"). The planner and catalog proper are out of
// scope (§1); this package only names the lookup contract and caches
// whatever a Loader returns.
package catalog

import (
	"fmt"
	"sync"

	treemap "github.com/liyue201/gostl/ds/map"

	"github.com/jnidzwetzki/timescaledb/pkg/common"
)

// HypertableID and ChunkRelID are catalog handles (§6): opaque
// identifiers the real catalog resolves to a hypertable and one of its
// compressed chunks.
type HypertableID uint64
type ChunkRelID uint64

// Key is the cache key: one chunk's compression layout never changes
// independently of its hypertable's, so both are needed to disambiguate
// chunk ids that happen to collide across hypertables in tests.
type Key struct {
	Hypertable HypertableID
	Chunk      ChunkRelID
}

func compareKeys(a, b Key) int {
	if a.Hypertable != b.Hypertable {
		if a.Hypertable < b.Hypertable {
			return -1
		}
		return 1
	}
	switch {
	case a.Chunk < b.Chunk:
		return -1
	case a.Chunk > b.Chunk:
		return 1
	default:
		return 0
	}
}

// CompressionInfo is everything BuildColumnDescriptors (pkg/descriptor)
// needs, resolved once per chunk and cached thereafter.
type CompressionInfo struct {
	DecompressionMap []int
	ColumnNames      map[int]string
	SegmentByColumns map[string]bool
	OutputTypes      map[int]common.LType
}

func (c *CompressionInfo) ColumnName(outputAttno int) (string, bool) {
	name, ok := c.ColumnNames[outputAttno]
	return name, ok
}

func (c *CompressionInfo) IsSegmentBy(name string) bool {
	return c.SegmentByColumns[name]
}

// Loader resolves a chunk's compression info from the real catalog. In
// production this issues the lookup the planner would otherwise inline;
// tests supply a fixed map.
type Loader interface {
	Load(key Key) (*CompressionInfo, error)
}

// LoaderFunc adapts a plain function to Loader.
type LoaderFunc func(key Key) (*CompressionInfo, error)

func (f LoaderFunc) Load(key Key) (*CompressionInfo, error) { return f(key) }

// Cache memoizes Loader lookups in an ordered map keyed by (hypertable,
// chunk), exactly the role the teacher's LocalStorage gives its
// treemap.Map[*DataTable, *LocalTableStorage]: a get-or-load cache
// guarded by a single mutex, insert-on-miss.
type Cache struct {
	mu     sync.Mutex
	loader Loader
	cache  *treemap.Map[Key, *CompressionInfo]
}

func NewCache(loader Loader) *Cache {
	return &Cache{
		loader: loader,
		cache:  treemap.New[Key, *CompressionInfo](compareKeys),
	}
}

// Get returns the cached CompressionInfo for key, loading and caching it
// on first access.
func (c *Cache) Get(key Key) (*CompressionInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if info, err := c.cache.Get(key); err == nil {
		return info, nil
	}
	info, err := c.loader.Load(key)
	if err != nil {
		return nil, fmt.Errorf("catalog: loading compression info for chunk %d of hypertable %d: %w", key.Chunk, key.Hypertable, err)
	}
	c.cache.Insert(key, info)
	return info, nil
}

// Invalidate drops a cached entry, e.g. after a chunk is recompressed.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Erase(key)
}

// Size is the number of chunks currently cached.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Size()
}
