package protocol

// MaxVarintLen is the maximum number of bytes a uint64 varint occupies.
const MaxVarintLen = 10

// EncodeUvarint encodes v into buf and returns the number of bytes written.
// buf must have at least MaxVarintLen bytes available. Each byte carries
// 7 bits of data; the high bit marks continuation.
func EncodeUvarint(buf []byte, v uint64) int {
	i := 0
	for v >= 0x80 {
		buf[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	buf[i] = byte(v)
	return i + 1
}

// DecodeUvarint decodes a varint from the start of buf.
// It returns (value, bytesRead). A negative bytesRead reports failure:
//   - -1: buffer ends inside the varint
//   - -2: more than MaxVarintLen bytes
func DecodeUvarint(buf []byte) (uint64, int) {
	var v uint64
	var shift uint

	for i, b := range buf {
		if i >= MaxVarintLen {
			return 0, -2
		}
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, -1
}

// UvarintLen returns the number of bytes needed to encode v.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		n++
		v >>= 7
	}
	return n
}
