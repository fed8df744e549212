package operator

import (
	"errors"

	"github.com/jnidzwetzki/timescaledb/pkg/catalog"
	"github.com/jnidzwetzki/timescaledb/pkg/descriptor"
	"github.com/jnidzwetzki/timescaledb/pkg/merge"
)

// Config is the operator's immutable-at-construction configuration (§6
// "Operator configuration").
type Config struct {
	HypertableID     catalog.HypertableID
	ChunkRelID       catalog.ChunkRelID
	Reverse          bool
	MergeEnabled     bool
	DecompressionMap []int
	SortKeys         []merge.SortKey
}

// ErrSortKeysRequireMerge and ErrSortKeysForbiddenWithoutMerge are the
// two configuration errors §7 calls out by name: "sort keys without
// merge_enabled" — fatal at construction, checked both ways since either
// mismatch is equally a caller bug.
var (
	ErrSortKeysRequireMerge          = errors.New("operator: merge_enabled requires at least one sort key")
	ErrSortKeysForbiddenWithoutMerge = errors.New("operator: sort keys given but merge_enabled is false")
)

// Validate enforces §6's "must be empty if merge_enabled=false,
// non-empty otherwise" constraint plus the descriptor table's own
// non-empty-map precondition (§4.1, §7 "empty decompression map" is a
// configuration error, fatal at construction).
func (c Config) Validate() error {
	switch {
	case c.MergeEnabled && len(c.SortKeys) == 0:
		return ErrSortKeysRequireMerge
	case !c.MergeEnabled && len(c.SortKeys) != 0:
		return ErrSortKeysForbiddenWithoutMerge
	}
	if len(c.DecompressionMap) == 0 {
		return descriptor.ErrEmptyDecompressionMap
	}
	return nil
}
