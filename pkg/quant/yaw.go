package quant

import "math"

// Angle is a yaw in degrees quantized onto [0, 65535].
type Angle uint16

// Repeat wraps v into [0, length). Negative remainders are shifted by length.
func Repeat(v, length float32) float32 {
	r := float32(math.Mod(float64(v), float64(length)))
	if r < 0 {
		r += length
	}
	// A tiny negative remainder can round up to length itself.
	if r >= length {
		r = 0
	}
	return r
}

// QuantizeYaw wraps deg into [0, 360) and maps it onto [0, 65535].
func QuantizeYaw(deg float32) Angle {
	if !finite(deg) {
		return 0
	}
	return Angle(Repeat(deg, 360) / 360 * YawScale)
}

// DequantizeYaw maps q back to degrees in [0, 360].
func DequantizeYaw(q Angle) float32 {
	return float32(q) / YawScale * 360
}

// Degrees returns the angle in degrees.
func (a Angle) Degrees() float32 {
	return DequantizeYaw(a)
}
