// Package protocol implements the binary wire protocol shared by every
// participant of a co-op session.
//
// All game traffic flows through one envelope type carrying one of a closed
// set of message variants. Each variant has a permanent numeric [Tag]; the
// registry rejects duplicate tags at init, and the tests check that every
// type implementing [Message] is registered exactly once.
//
// # Wire Format
//
//	┌────────────┬──────────┬──────────────────┬─────────────────────┐
//	│ Tag        │ Flags    │ Body length      │ Body                │
//	│ (uint16 BE)│ (1 byte) │ (uvarint)        │                     │
//	└────────────┴──────────┴──────────────────┴─────────────────────┘
//
// Body fields are written in declaration order:
//
//   - Fixed-width big-endian integers (uint16, int16, uint32, int32)
//   - IEEE 754 float32 bits, so negative zero and boundary values survive
//   - Booleans as a single 0x00 or 0x01 byte
//   - Strings, byte slices and sequences with a uvarint length prefix
//   - Quantized vectors as consecutive int16 axes (see package quant)
//
// The only flag is [FlagCompressed], set when the body is zstd-compressed by
// a [Codec] created with [WithCompression]. Other flag bits are reserved.
//
// # Decoding
//
// [Decode] distinguishes three outcomes besides success:
//
//   - [ErrEmptyInput]: nothing arrived
//   - [ErrMalformedEnvelope]: garbage arrived (truncation, reserved flags,
//     a body that does not match its variant)
//   - (nil, nil): the tag is not known to this build, which happens during
//     version skew between peers
//
// The tag is checked before anything else, so an unknown tag is reported as
// (nil, nil) even when the rest of the envelope is also invalid.
//
// A body may carry bytes after the fields this build knows; they are
// ignored so that newer peers can append fields to existing variants.
// Bytes after the declared body length are an error.
//
// Sequences always decode to non-nil slices, so an empty roster survives a
// round trip as an empty roster.
package protocol
