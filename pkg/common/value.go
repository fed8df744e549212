package common

import (
	"fmt"

	"github.com/govalues/decimal"
)

// Value is a single decoded datum: the payload a DecompressionIterator
// hands back for one row of one column, or the cached constant a
// SEGMENT_CONST column carries for a whole batch. Shaped after the
// teacher's chunk.Value, trimmed to the scalar kinds this operator's
// columns actually carry.
type Value struct {
	Typ    LType
	IsNull bool

	I64 int64
	F64 float64
	Str string
	Dec decimal.Decimal
}

func NullValue(typ LType) Value {
	return Value{Typ: typ, IsNull: true}
}

func IntValue(typ LType, v int64) Value {
	return Value{Typ: typ, I64: v}
}

func DoubleValue(v float64) Value {
	return Value{Typ: LType{Id: LTID_DOUBLE}, F64: v}
}

func StringValue(v string) Value {
	return Value{Typ: LType{Id: LTID_VARCHAR}, Str: v}
}

func (v Value) String() string {
	if v.IsNull {
		return "NULL"
	}
	switch v.Typ.Id {
	case LTID_VARCHAR, LTID_BLOB:
		return v.Str
	case LTID_DOUBLE, LTID_FLOAT:
		return fmt.Sprintf("%v", v.F64)
	case LTID_DECIMAL:
		return v.Dec.String()
	case LTID_BOOLEAN:
		return fmt.Sprintf("%v", v.I64 != 0)
	default:
		return fmt.Sprintf("%d", v.I64)
	}
}

// Compare orders two values of the same type. NULLs are not ordered here;
// callers apply null-ordering policy (SortKey.NullOrder) before falling
// back to Compare for the non-null case.
func Compare(a, b Value) int {
	switch a.Typ.Id {
	case LTID_VARCHAR, LTID_BLOB:
		switch {
		case a.Str < b.Str:
			return -1
		case a.Str > b.Str:
			return 1
		default:
			return 0
		}
	case LTID_DOUBLE, LTID_FLOAT:
		switch {
		case a.F64 < b.F64:
			return -1
		case a.F64 > b.F64:
			return 1
		default:
			return 0
		}
	case LTID_DECIMAL:
		return a.Dec.Cmp(b.Dec)
	default:
		switch {
		case a.I64 < b.I64:
			return -1
		case a.I64 > b.I64:
			return 1
		default:
			return 0
		}
	}
}
