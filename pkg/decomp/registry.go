package decomp

import (
	"fmt"

	"github.com/jnidzwetzki/timescaledb/pkg/common"
)

// AlgorithmID identifies a registered codec. It is carried in the header
// of every COMPRESSED column's blob (§6: "an opaque blob whose header
// carries algorithm_id").
type AlgorithmID uint8

const (
	AlgorithmArray AlgorithmID = iota + 1
	AlgorithmDeltaInt
	AlgorithmLZ4Text
)

// NewIteratorFunc constructs an Iterator over one compressed column of one
// batch. rowCount is the batch's ROWCOUNT. The delta codec uses it as
// its row count and rejects a payload whose length disagrees with it;
// the array and LZ4 codecs ignore it and decode what their payload holds.
type NewIteratorFunc func(typ common.LType, payload []byte, rowCount common.IdxType, dir Direction) (Iterator, error)

// Registry is the process-wide codec dispatch table, keyed by algorithm
// id (§4.2 "Algorithms are registered externally").
type Registry struct {
	codecs map[AlgorithmID]NewIteratorFunc
}

func NewRegistry() *Registry {
	return &Registry{codecs: make(map[AlgorithmID]NewIteratorFunc)}
}

func (r *Registry) Register(id AlgorithmID, ctor NewIteratorFunc) {
	r.codecs[id] = ctor
}

// New parses the blob's header to find the algorithm id and dispatches to
// the registered constructor for (algorithm_id, direction).
func (r *Registry) New(typ common.LType, blob []byte, rowCount common.IdxType, dir Direction) (Iterator, error) {
	id, payload, err := ParseHeader(blob)
	if err != nil {
		return nil, err
	}
	ctor, ok := r.codecs[id]
	if !ok {
		return nil, fmt.Errorf("decomp: no codec registered for algorithm id %d", id)
	}
	return ctor(typ, payload, rowCount, dir)
}

// NewDefaultRegistry registers the codecs this module ships: a generic
// per-row value array, a delta-encoded integer codec, and an
// LZ4-compressed text codec (§3 SPEC_FULL domain stack).
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(AlgorithmArray, newArrayIterator)
	r.Register(AlgorithmDeltaInt, newDeltaIntIterator)
	r.Register(AlgorithmLZ4Text, newLZ4TextIterator)
	return r
}
