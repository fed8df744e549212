package decomp

import "fmt"

// ParseHeader splits a compressed column's blob into its algorithm id and
// the codec-specific payload that follows it (§6, §4.2).
func ParseHeader(blob []byte) (AlgorithmID, []byte, error) {
	if len(blob) < 1 {
		return 0, nil, fmt.Errorf("decomp: empty compressed blob, no codec header")
	}
	return AlgorithmID(blob[0]), blob[1:], nil
}

// WithHeader prepends an algorithm id byte to payload, the inverse of
// ParseHeader. Used by the codec encoders and by tests constructing
// compressed-column blobs.
func WithHeader(id AlgorithmID, payload []byte) []byte {
	out := make([]byte, 1+len(payload))
	out[0] = byte(id)
	copy(out[1:], payload)
	return out
}
