// Package canonical implements the deterministic serialization used for
// content-addressed event identity.
//
// Every client implementation of the protocol must produce byte-identical
// output for the same logical value, so canonical bytes are defined here
// once and used everywhere a hash is computed:
//
//   - No insignificant whitespace
//   - Object keys sorted lexicographically by byte order, recursively
//   - Integral numbers rendered without a fractional part
//   - Non-integral numbers rendered in the shortest round-trippable form
//   - Standard JSON string escaping, no HTML escaping
//
// Values are modeled as a sealed Value union (Null, Bool, Int, Float,
// String, Array, Object) rather than interface{} so the supported type set
// is closed at compile time. Anything outside the union is an
// ErrUnsupportedType at serialization time, never a silent coercion.
package canonical
