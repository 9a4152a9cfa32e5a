package protocol

import (
	"errors"
	"fmt"
	"io"
)

// Flags modify how an envelope body is stored.
type Flags uint8

const (
	// FlagCompressed marks a zstd-compressed body.
	FlagCompressed Flags = 0x01

	knownFlags = FlagCompressed
)

// Has reports whether f contains flag.
func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

// Envelope errors. Decode never returns any other error class: failures from
// the body codec are wrapped in ErrMalformedEnvelope.
var (
	// ErrEmptyInput means nothing arrived: a zero-length buffer was decoded.
	ErrEmptyInput = errors.New("protocol: empty input")

	// ErrMalformedEnvelope means garbage arrived: a truncated header, a
	// declared body length beyond the buffer, reserved flag bits, or a body
	// that does not decode as its tag's variant.
	ErrMalformedEnvelope = errors.New("protocol: malformed envelope")

	// ErrBodyTooLarge is returned when an encoded body exceeds MaxBodySize.
	ErrBodyTooLarge = errors.New("protocol: body too large")

	// ErrNilMessage is returned when encoding a nil message.
	ErrNilMessage = errors.New("protocol: nil message")
)

// TagSize is the size of the envelope tag in bytes.
const TagSize = 2

// header is a parsed envelope header.
//
// Wire format:
//
//	┌────────────┬──────────┬──────────────────┬─────────────────────┐
//	│ Tag        │ Flags    │ Body length      │ Body                │
//	│ (2 bytes,  │ (1 byte) │ (uvarint)        │ (body length bytes) │
//	│ big-endian)│          │                  │                     │
//	└────────────┴──────────┴──────────────────┴─────────────────────┘
type header struct {
	tag     Tag
	flags   Flags
	bodyLen int
	// size is the header length in bytes.
	size int
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedEnvelope, fmt.Sprintf(format, args...))
}

// readTag returns the tag at the start of b.
func readTag(b []byte) (Tag, error) {
	if len(b) == 0 {
		return 0, ErrEmptyInput
	}
	if len(b) < TagSize {
		return 0, malformed("truncated tag")
	}
	return Tag(uint16(b[0])<<8 | uint16(b[1])), nil
}

// parseHeader reads the header at the start of b and checks that the
// declared body fits in b. It does not require the tag to be registered.
func parseHeader(b []byte) (header, error) {
	var h header
	tag, err := readTag(b)
	if err != nil {
		return h, err
	}
	h.tag = tag

	d := NewDecoder(b[TagSize:])
	h.flags = Flags(d.ReadUint8())
	length := d.ReadUvarint()
	if err := d.Err(); err != nil {
		return h, malformed("%s header: %v", h.tag, err)
	}
	if h.flags&^knownFlags != 0 {
		return h, malformed("%s: reserved flags %#02x", h.tag, uint8(h.flags))
	}
	if length > uint64(d.Remaining()) {
		return h, malformed("%s: body length %d exceeds %d remaining bytes", h.tag, length, d.Remaining())
	}
	if length > MaxBodySize {
		return h, malformed("%s: body length %d exceeds limit", h.tag, length)
	}
	h.bodyLen = int(length)
	h.size = TagSize + d.Position()
	return h, nil
}

// appendHeader appends the envelope header for a body of n bytes.
func appendHeader(dst []byte, tag Tag, flags Flags, n int) []byte {
	var tmp [MaxVarintLen]byte
	dst = append(dst, byte(tag>>8), byte(tag), byte(flags))
	k := EncodeUvarint(tmp[:], uint64(n))
	return append(dst, tmp[:k]...)
}

// Encode encodes m with DefaultCodec.
func Encode(m Message) ([]byte, error) {
	return DefaultCodec.Encode(m)
}

// Decode decodes one envelope with DefaultCodec.
//
// It returns ErrEmptyInput for a zero-length buffer and an error wrapping
// ErrMalformedEnvelope for a truncated or corrupt envelope. An envelope whose
// tag is not registered decodes to (nil, nil): a peer running a newer
// protocol may send variants this build does not know.
func Decode(b []byte) (Message, error) {
	return DefaultCodec.Decode(b)
}

// DecodeAll decodes a buffer holding several concatenated envelopes with
// DefaultCodec. Envelopes with unknown tags are skipped.
func DecodeAll(b []byte) ([]Message, error) {
	return DefaultCodec.DecodeAll(b)
}

// ReadEnvelope reads exactly one envelope from r and returns its raw bytes,
// including the header. Pass the result to Decode.
func ReadEnvelope(r io.Reader) ([]byte, error) {
	var hdr [TagSize + 1 + MaxVarintLen]byte
	if _, err := io.ReadFull(r, hdr[:TagSize+1]); err != nil {
		return nil, err
	}
	n := TagSize + 1
	var length uint64
	for shift := uint(0); ; shift += 7 {
		if n == len(hdr) {
			return nil, malformed("body length varint overflow")
		}
		if _, err := io.ReadFull(r, hdr[n:n+1]); err != nil {
			return nil, noEOF(err)
		}
		b := hdr[n]
		n++
		length |= uint64(b&0x7F) << shift
		if b < 0x80 {
			break
		}
	}
	if length > MaxBodySize {
		return nil, malformed("body length %d exceeds limit", length)
	}

	out := make([]byte, n+int(length))
	copy(out, hdr[:n])
	if _, err := io.ReadFull(r, out[n:]); err != nil {
		return nil, noEOF(err)
	}
	return out, nil
}

// WriteEnvelope encodes m with DefaultCodec and writes it to w.
func WriteEnvelope(w io.Writer, m Message) error {
	b, err := Encode(m)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// noEOF turns a clean EOF in the middle of an envelope into
// io.ErrUnexpectedEOF.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
