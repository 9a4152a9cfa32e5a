package protocol

import (
	"math"

	"github.com/coopsync-dev/coopsync/pkg/quant"
)

// Encoder appends wire-format values to an internal buffer. Integers and
// floats are fixed-width big-endian; strings and sequences carry a uvarint
// length prefix.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an encoder with a default initial capacity.
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0, 256),
	}
}

// NewEncoderWithCap creates an encoder with the given initial capacity.
func NewEncoderWithCap(cap int) *Encoder {
	return &Encoder{
		buf: make([]byte, 0, cap),
	}
}

// Reset empties the encoder, reusing the underlying buffer.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the encoded bytes. The slice is valid until the next call to
// Reset or any Write method.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes currently encoded.
func (e *Encoder) Len() int {
	return len(e.buf)
}

func (e *Encoder) WriteUint8(b uint8) {
	e.buf = append(e.buf, b)
}

// WriteBytes appends raw bytes.
func (e *Encoder) WriteBytes(b []byte) {
	e.buf = append(e.buf, b...)
}

// WriteUvarint appends an unsigned varint.
func (e *Encoder) WriteUvarint(v uint64) {
	var tmp [MaxVarintLen]byte
	n := EncodeUvarint(tmp[:], v)
	e.buf = append(e.buf, tmp[:n]...)
}

// WriteString appends a length-prefixed UTF-8 string.
func (e *Encoder) WriteString(s string) {
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// WriteLenBytes appends length-prefixed bytes.
func (e *Encoder) WriteLenBytes(b []byte) {
	e.WriteUvarint(uint64(len(b)))
	e.buf = append(e.buf, b...)
}

// WriteBool appends a boolean as 0x00 or 0x01.
func (e *Encoder) WriteBool(b bool) {
	if b {
		e.buf = append(e.buf, 0x01)
	} else {
		e.buf = append(e.buf, 0x00)
	}
}

func (e *Encoder) WriteUint16(v uint16) {
	e.buf = append(e.buf, byte(v>>8), byte(v))
}

func (e *Encoder) WriteUint32(v uint32) {
	e.buf = append(e.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func (e *Encoder) WriteInt16(v int16) {
	e.WriteUint16(uint16(v))
}

func (e *Encoder) WriteInt32(v int32) {
	e.WriteUint32(uint32(v))
}

// WriteFloat32 appends the IEEE 754 bits of v, so every value including
// negative zero survives the round trip.
func (e *Encoder) WriteFloat32(v float32) {
	e.WriteUint32(math.Float32bits(v))
}

// WriteVector2 appends a quantized 2-vector as two int16.
func (e *Encoder) WriteVector2(v quant.Vector2) {
	e.WriteInt16(v.X)
	e.WriteInt16(v.Y)
}

// WriteVector3 appends a quantized 3-vector as three int16.
func (e *Encoder) WriteVector3(v quant.Vector3) {
	e.WriteInt16(v.X)
	e.WriteInt16(v.Y)
	e.WriteInt16(v.Z)
}

// WriteVector4 appends a quantized quaternion as four int16.
func (e *Encoder) WriteVector4(v quant.Vector4) {
	e.WriteInt16(v.X)
	e.WriteInt16(v.Y)
	e.WriteInt16(v.Z)
	e.WriteInt16(v.W)
}

// WriteAngle appends a quantized yaw.
func (e *Encoder) WriteAngle(a quant.Angle) {
	e.WriteUint16(uint16(a))
}

// WriteVec3 appends an unquantized vector as three float32.
func (e *Encoder) WriteVec3(v quant.Vec3) {
	e.WriteFloat32(v.X)
	e.WriteFloat32(v.Y)
	e.WriteFloat32(v.Z)
}

// WriteQuat appends an unquantized rotation as four float32.
func (e *Encoder) WriteQuat(q quant.Quat) {
	e.WriteFloat32(q.X)
	e.WriteFloat32(q.Y)
	e.WriteFloat32(q.Z)
	e.WriteFloat32(q.W)
}

// writeSeq appends a count followed by each element.
func writeSeq[T any](e *Encoder, items []T, write func(*Encoder, T)) {
	e.WriteUvarint(uint64(len(items)))
	for _, it := range items {
		write(e, it)
	}
}

func writeUint32s(e *Encoder, vs []uint32) {
	writeSeq(e, vs, (*Encoder).WriteUint32)
}
