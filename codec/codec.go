// Package codec defines the byte encoder used by the transfer layer.
//
// A Codec is format-agnostic and type-agnostic: the same instance serializes
// every transfer-record instantiation the cache encounters. Implementations
// MUST round-trip every exported field of a record exactly; lossy encodings
// (truncated integers, re-zoned timestamps) break entry metadata across
// process boundaries.
package codec

// Codec encodes/decodes records to []byte for storage.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(b []byte, v any) error
	// Name identifies the encoding in diagnostics.
	Name() string
}
