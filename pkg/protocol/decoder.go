package protocol

import (
	"errors"
	"io"
	"math"

	"github.com/coopsync-dev/coopsync/pkg/quant"
)

// Common decoding errors.
var (
	ErrVarintOverflow     = errors.New("protocol: varint overflow")
	ErrInvalidBool        = errors.New("protocol: invalid boolean value")
	ErrAllocationTooLarge = errors.New("protocol: allocation size exceeds limit")
	ErrCollectionTooLarge = errors.New("protocol: collection count exceeds limit")
)

// Decoder reads wire-format values from a byte buffer.
//
// Errors are sticky: the first failure is recorded and every later read
// returns the zero value, so a message body can read all of its fields and
// check Err once at the end.
type Decoder struct {
	buf []byte
	pos int
	err error
}

// NewDecoder creates a decoder over buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Err returns the first error encountered, or nil.
func (d *Decoder) Err() error {
	return d.err
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// EOF reports whether all bytes have been read.
func (d *Decoder) EOF() bool {
	return d.pos >= len(d.buf)
}

// Position returns the current read offset.
func (d *Decoder) Position() int {
	return d.pos
}

func (d *Decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// take returns the next n bytes, or nil after recording io.ErrUnexpectedEOF.
func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.pos+n > len(d.buf) {
		d.fail(io.ErrUnexpectedEOF)
		return nil
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b
}

// Skip advances the read offset by n bytes.
func (d *Decoder) Skip(n int) {
	d.take(n)
}

func (d *Decoder) ReadUint8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// ReadBytes returns the next n bytes. The slice aliases the decoder's buffer.
func (d *Decoder) ReadBytes(n int) []byte {
	return d.take(n)
}

func (d *Decoder) ReadUvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := DecodeUvarint(d.buf[d.pos:])
	switch {
	case n == -2:
		d.fail(ErrVarintOverflow)
		return 0
	case n < 0:
		d.fail(io.ErrUnexpectedEOF)
		return 0
	}
	d.pos += n
	return v
}

// ReadString reads a length-prefixed UTF-8 string.
func (d *Decoder) ReadString() string {
	n := d.readLen()
	b := d.take(n)
	if b == nil {
		return ""
	}
	return string(b)
}

// ReadLenBytes reads length-prefixed bytes and returns a copy.
func (d *Decoder) ReadLenBytes() []byte {
	n := d.readLen()
	b := d.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// readLen reads a byte length prefix and checks it against the buffer and
// the allocation limit.
func (d *Decoder) readLen() int {
	length := d.ReadUvarint()
	if d.err != nil {
		return 0
	}
	if length > uint64(d.Remaining()) {
		d.fail(io.ErrUnexpectedEOF)
		return 0
	}
	if length > DefaultMaxAllocation {
		d.fail(ErrAllocationTooLarge)
		return 0
	}
	return int(length)
}

// ReadBool reads 0x00 or 0x01. Any other byte is ErrInvalidBool, which keeps
// decode(encode(m)) and encode(decode(b)) in agreement.
func (d *Decoder) ReadBool() bool {
	b := d.take(1)
	if b == nil {
		return false
	}
	switch b[0] {
	case 0x00:
		return false
	case 0x01:
		return true
	default:
		d.fail(ErrInvalidBool)
		return false
	}
}

func (d *Decoder) ReadUint16() uint16 {
	b := d.take(2)
	if b == nil {
		return 0
	}
	return uint16(b[0])<<8 | uint16(b[1])
}

func (d *Decoder) ReadUint32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func (d *Decoder) ReadInt16() int16 {
	return int16(d.ReadUint16())
}

func (d *Decoder) ReadInt32() int32 {
	return int32(d.ReadUint32())
}

func (d *Decoder) ReadFloat32() float32 {
	return math.Float32frombits(d.ReadUint32())
}

func (d *Decoder) ReadVector2() quant.Vector2 {
	return quant.Vector2{X: d.ReadInt16(), Y: d.ReadInt16()}
}

func (d *Decoder) ReadVector3() quant.Vector3 {
	return quant.Vector3{X: d.ReadInt16(), Y: d.ReadInt16(), Z: d.ReadInt16()}
}

func (d *Decoder) ReadVector4() quant.Vector4 {
	return quant.Vector4{X: d.ReadInt16(), Y: d.ReadInt16(), Z: d.ReadInt16(), W: d.ReadInt16()}
}

func (d *Decoder) ReadAngle() quant.Angle {
	return quant.Angle(d.ReadUint16())
}

func (d *Decoder) ReadVec3() quant.Vec3 {
	return quant.Vec3{X: d.ReadFloat32(), Y: d.ReadFloat32(), Z: d.ReadFloat32()}
}

func (d *Decoder) ReadQuat() quant.Quat {
	return quant.Quat{X: d.ReadFloat32(), Y: d.ReadFloat32(), Z: d.ReadFloat32(), W: d.ReadFloat32()}
}

// ReadCollectionCount reads a sequence length and validates it against
// MaxCollectionCount and the remaining bytes (every element is at least one
// byte long).
func (d *Decoder) ReadCollectionCount() int {
	count := d.ReadUvarint()
	if d.err != nil {
		return 0
	}
	if count > MaxCollectionCount {
		d.fail(ErrCollectionTooLarge)
		return 0
	}
	if count > uint64(d.Remaining()) {
		d.fail(io.ErrUnexpectedEOF)
		return 0
	}
	return int(count)
}

// readSeq reads a counted sequence. The result is never nil, so an empty
// sequence decodes to an empty slice.
func readSeq[T any](d *Decoder, read func(*Decoder) T) []T {
	n := d.ReadCollectionCount()
	out := make([]T, 0, n)
	for i := 0; i < n && d.err == nil; i++ {
		out = append(out, read(d))
	}
	return out
}

func readUint32s(d *Decoder) []uint32 {
	return readSeq(d, (*Decoder).ReadUint32)
}
