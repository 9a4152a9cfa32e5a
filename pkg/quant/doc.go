// Package quant maps continuous world coordinates and angles to fixed-width
// integers for compact transmission, and back.
//
// # Positions
//
// A position axis is quantized against a [WorldBounds] value:
//
//	t = (v - Min) / Range
//	q = int16(trunc(t * 32767))
//
// so Min maps to 0 and Max maps to 32767. Values are not clamped. An input
// outside the bounds yields a product outside the int16 range, which wraps by
// two's-complement truncation to 16 bits. Callers that need saturation must
// clamp before quantizing.
//
// The round-trip error of an in-bounds value is below Range/32767.
//
// # Angles
//
// Yaw angles are wrapped into [0, 360) with [Repeat] and mapped linearly onto
// [0, 65535]. The round-trip error is below 360/65535 degrees.
//
// # Bounds
//
// [WorldBounds] is an immutable value. A [Codec] holds the bounds used by a
// session and replaces them atomically, so a reader never observes a mix of an
// old Min and a new Range.
package quant
