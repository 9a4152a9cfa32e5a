package quant

import (
	"errors"
	"fmt"
	"math"
)

// Scale constants for the quantized ranges.
const (
	// PositionScale is the quantized value of WorldBounds.Max.
	PositionScale = 32767

	// YawScale is the quantized value of a full turn.
	YawScale = 65535

	// DefaultMin and DefaultMax are the bounds used until a session configures
	// its world size.
	DefaultMin float32 = -500
	DefaultMax float32 = 500
)

// YawPrecision is the angular resolution of a quantized yaw in degrees.
const YawPrecision = 360.0 / YawScale

// ErrInvalidBounds is returned when Max is not strictly greater than Min, or
// when either limit is not a finite number.
var ErrInvalidBounds = errors.New("quant: invalid world bounds")

// WorldBounds is the span of world coordinates covered by the quantized range.
// The zero value is not valid; use NewWorldBounds or DefaultBounds.
type WorldBounds struct {
	Min   float32
	Max   float32
	Range float32
}

// NewWorldBounds returns bounds spanning [min, max].
func NewWorldBounds(min, max float32) (WorldBounds, error) {
	if !finite(min) || !finite(max) || max <= min {
		return WorldBounds{}, fmt.Errorf("%w: [%g, %g]", ErrInvalidBounds, min, max)
	}
	r := max - min
	if !finite(r) {
		return WorldBounds{}, fmt.Errorf("%w: range of [%g, %g] overflows", ErrInvalidBounds, min, max)
	}
	return WorldBounds{Min: min, Max: max, Range: r}, nil
}

// DefaultBounds returns [-500, 500].
func DefaultBounds() WorldBounds {
	return WorldBounds{Min: DefaultMin, Max: DefaultMax, Range: DefaultMax - DefaultMin}
}

// BoundsForWorldSize returns bounds centred on the origin, [-size/2, size/2].
func BoundsForWorldSize(size float32) (WorldBounds, error) {
	half := size / 2
	return NewWorldBounds(-half, half)
}

// Valid reports whether b satisfies Range == Max-Min and Range > 0.
func (b WorldBounds) Valid() bool {
	return finite(b.Min) && finite(b.Max) && b.Range > 0 && b.Range == b.Max-b.Min
}

// Precision returns the positional resolution in world units.
func (b WorldBounds) Precision() float32 {
	return b.Range / PositionScale
}

// Quantize maps v onto the int16 range. See the package documentation for the
// overflow behaviour. Non-finite input yields 0.
func (b WorldBounds) Quantize(v float32) int16 {
	t := (v - b.Min) / b.Range
	return wrap16(float64(t * PositionScale))
}

// Dequantize is the inverse of Quantize for in-range values.
func (b WorldBounds) Dequantize(q int16) float32 {
	return b.Min + float32(q)/PositionScale*b.Range
}

func (b WorldBounds) String() string {
	return fmt.Sprintf("[%g, %g]", b.Min, b.Max)
}

// wrap16 truncates f toward zero and keeps the low 16 bits of the result,
// which is what an unchecked float-to-short conversion produces on the peers
// that share this wire format.
func wrap16(f float64) int16 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	w := math.Mod(math.Trunc(f), 1<<16)
	return int16(int32(w))
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
