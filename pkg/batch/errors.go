package batch

import "errors"

// ErrMissingRowCount is fatal at runtime (§4.3, §7): a batch's ROWCOUNT
// column is null or the descriptor table has no ROWCOUNT column at all.
var ErrMissingRowCount = errors.New("batch: missing or null ROWCOUNT column")
