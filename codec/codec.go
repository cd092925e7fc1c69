// Package codec provides the pure bidirectional wire conversions the field
// descriptors build on. Decode maps the API's JSON-compatible representation
// to a native value, Encode is the exact inverse: for every codec here,
// Encode(Decode(x)) == x for wire-shaped x and Decode(Encode(y)) == y for
// native y.
package codec

// Codec converts between a wire representation W and a native
// representation N. Implementations are pure: no I/O, no blocking, no
// per-call state.
type Codec[W, N any] interface {
	// Decode converts wire -> native.
	Decode(w W) (N, error)
	// Encode converts native -> wire.
	Encode(n N) (W, error)
}
