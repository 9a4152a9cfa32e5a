package protocol

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ErrUnregistered is returned when encoding a message whose tag has no
// registration.
var ErrUnregistered = errors.New("protocol: unregistered message")

// DefaultCodec never compresses. It still decodes compressed bodies sent by
// peers that enable compression.
var DefaultCodec = NewCodec()

// Codec encodes and decodes envelopes. It is safe for concurrent use.
type Codec struct {
	compressAbove int

	encOnce sync.Once
	enc     *zstd.Encoder
	encErr  error

	decOnce sync.Once
	dec     *zstd.Decoder
	decErr  error

	bufs sync.Pool
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithCompression compresses bodies of at least threshold bytes. A body is
// sent compressed only when that makes it smaller. A threshold <= 0 disables
// compression.
func WithCompression(threshold int) CodecOption {
	return func(c *Codec) {
		c.compressAbove = threshold
	}
}

// NewCodec creates a codec.
func NewCodec(opts ...CodecOption) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	c.bufs.New = func() any { return NewEncoder() }
	return c
}

// CompressionThreshold returns the configured threshold, 0 when disabled.
func (c *Codec) CompressionThreshold() int {
	if c.compressAbove < 0 {
		return 0
	}
	return c.compressAbove
}

// Encode returns the envelope for m. Equal messages always produce identical
// bytes.
func (c *Codec) Encode(m Message) ([]byte, error) {
	return c.Append(nil, m)
}

// Append appends the envelope for m to dst.
func (c *Codec) Append(dst []byte, m Message) ([]byte, error) {
	if m == nil {
		return dst, ErrNilMessage
	}
	tag := m.Tag()
	if _, ok := Lookup(tag); !ok {
		return dst, fmt.Errorf("%w: tag %d", ErrUnregistered, uint16(tag))
	}

	e := c.bufs.Get().(*Encoder)
	defer func() {
		e.Reset()
		c.bufs.Put(e)
	}()
	m.encodeBody(e)

	body := e.Bytes()
	var flags Flags
	if c.compressAbove > 0 && len(body) >= c.compressAbove {
		enc, err := c.encoder()
		if err != nil {
			return dst, err
		}
		if packed := enc.EncodeAll(body, nil); len(packed) < len(body) {
			body = packed
			flags |= FlagCompressed
		}
	}
	if len(body) > MaxBodySize {
		return dst, fmt.Errorf("%w: %s body is %d bytes", ErrBodyTooLarge, tag, len(body))
	}

	dst = appendHeader(dst, tag, flags, len(body))
	return append(dst, body...), nil
}

// Decode decodes exactly one envelope. See the package-level Decode for the
// error classes.
func (c *Codec) Decode(b []byte) (Message, error) {
	tag, err := readTag(b)
	if err != nil {
		return nil, err
	}
	reg, ok := Lookup(tag)
	if !ok {
		return nil, nil
	}

	h, err := parseHeader(b)
	if err != nil {
		return nil, err
	}
	if extra := len(b) - h.size - h.bodyLen; extra != 0 {
		return nil, malformed("%s: %d bytes after body", tag, extra)
	}
	return c.decodeBody(reg, h, b[h.size:])
}

// DecodeAll decodes concatenated envelopes. Envelopes with unknown tags are
// skipped using their declared length. Decoding stops at the first malformed
// envelope; the messages decoded before it are returned with the error.
func (c *Codec) DecodeAll(b []byte) ([]Message, error) {
	if len(b) == 0 {
		return nil, ErrEmptyInput
	}
	out := make([]Message, 0, 4)
	for len(b) > 0 {
		h, err := parseHeader(b)
		if err != nil {
			return out, err
		}
		env := b[:h.size+h.bodyLen]
		b = b[len(env):]

		reg, ok := Lookup(h.tag)
		if !ok {
			continue
		}
		m, err := c.decodeBody(reg, h, env[h.size:])
		if err != nil {
			return out, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *Codec) decodeBody(reg Registration, h header, body []byte) (Message, error) {
	if h.flags.Has(FlagCompressed) {
		dec, err := c.decoder()
		if err != nil {
			return nil, err
		}
		body, err = dec.DecodeAll(body, nil)
		if err != nil {
			return nil, malformed("%s: decompress: %v", reg.Name, err)
		}
	}

	m := reg.New()
	if err := m.decodeBody(NewDecoder(body)); err != nil {
		return nil, fmt.Errorf("%w: %s body: %w", ErrMalformedEnvelope, reg.Name, err)
	}
	return m, nil
}

func (c *Codec) encoder() (*zstd.Encoder, error) {
	c.encOnce.Do(func() {
		c.enc, c.encErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	})
	return c.enc, c.encErr
}

func (c *Codec) decoder() (*zstd.Decoder, error) {
	c.decOnce.Do(func() {
		c.dec, c.decErr = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxBodySize))
	})
	return c.dec, c.decErr
}
