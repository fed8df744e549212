package decomp

import "github.com/jnidzwetzki/timescaledb/pkg/common"

// sliceIterator serves a pre-decoded run of values forward or backward.
// Every codec in this package decodes its payload eagerly at
// construction time and hands the result to a sliceIterator — simpler
// than a truly lazy per-call decode, and numeric/null semantics remain
// entirely the codec's (§4.2), which is all the operator's contract
// requires.
type sliceIterator struct {
	values []common.Value
	nulls  []bool
	dir    Direction
	pos    int // next index to serve, walking toward -1/len depending on dir
	served int
}

func newSliceIterator(values []common.Value, nulls []bool, dir Direction) *sliceIterator {
	it := &sliceIterator{values: values, nulls: nulls, dir: dir}
	if dir == Reverse {
		it.pos = len(values) - 1
	}
	return it
}

func (it *sliceIterator) TryNext() Result {
	if it.served >= len(it.values) {
		return Result{IsDone: true}
	}
	idx := it.pos
	if it.dir == Forward {
		it.pos++
	} else {
		it.pos--
	}
	it.served++
	isNull := it.nulls != nil && it.nulls[idx]
	v := it.values[idx]
	v.IsNull = isNull
	return Result{Value: v, IsNull: isNull}
}
