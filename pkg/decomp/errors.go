package decomp

import "errors"

// ErrBatchDesync is the codec error raised when a compressed stream's
// encoded length disagrees with the batch's own ROWCOUNT metadata (§4.3,
// §7 "compressed stream out-of-sync with counter"). Scenario 4 in
// spec.md §8 is this condition surfacing after the batch's row budget is
// already exhausted, rather than from the codec's own length check; both
// paths report the same sentinel so callers can match on it with
// errors.Is.
var ErrBatchDesync = errors.New("decomp: compressed column out of sync with batch counter")
