package protocol

// Allocation limits applied while decoding untrusted input.
const (
	// DefaultMaxAllocation caps a single string or byte field (4MB).
	DefaultMaxAllocation = 4 * 1024 * 1024

	// MaxCollectionCount caps the element count of any sequence field.
	MaxCollectionCount = 100_000

	// MaxBodySize caps the declared body length of an envelope, before and
	// after decompression (16MB).
	MaxBodySize = 16 * 1024 * 1024
)
