// Package decomp hides codec variety behind a single opaque, pull-based,
// finite, forward-only iterator (§4.2). The operator never inspects codec
// internals; it only ever calls TryNext through this interface. Codecs are
// registered externally by algorithm id, exactly the redesign note in
// spec.md §9 asks for ("dynamic dispatch on codec → a trait-object /
// interface port"), mirroring the teacher's CompressInitSegmentScan /
// CompressScanVector function-pointer table in pkg/storage/compress.go,
// adapted from a table of function pointers to a table of constructors
// returning an interface value.
package decomp

import "github.com/jnidzwetzki/timescaledb/pkg/common"

// Direction selects the scan order a batch's compressed columns are
// decoded in (§6 "reverse").
type Direction int

const (
	Forward Direction = iota
	Reverse
)

// Result is what TryNext hands back for one row.
type Result struct {
	Value  common.Value
	IsNull bool
	IsDone bool
}

// Iterator is the decompression-iterator port (§4.2). Once IsDone is true
// on a returned Result, no further calls are made — iterators are not
// restartable; a fresh iterator with the opposite Direction yields the
// reverse sequence.
type Iterator interface {
	TryNext() Result
}
