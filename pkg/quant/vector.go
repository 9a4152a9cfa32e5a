package quant

import "math"

// Vec2 is an unquantized two-component vector.
type Vec2 struct {
	X, Y float32
}

// Vec3 is an unquantized world-space position or direction.
type Vec3 struct {
	X, Y, Z float32
}

// Quat is an unquantized rotation.
type Quat struct {
	X, Y, Z, W float32
}

// Vector2 is a Vec2 quantized per axis.
type Vector2 struct {
	X, Y int16
}

// Vector3 is a Vec3 quantized per axis.
type Vector3 struct {
	X, Y, Z int16
}

// Vector4 is a quaternion quantized per axis. The components are quantized
// independently and are not renormalized on the way back.
type Vector4 struct {
	X, Y, Z, W int16
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec3) float32 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	dz := float64(a.Z - b.Z)
	return float32(math.Sqrt(dx*dx + dy*dy + dz*dz))
}

func (b WorldBounds) QuantizeVec2(v Vec2) Vector2 {
	return Vector2{X: b.Quantize(v.X), Y: b.Quantize(v.Y)}
}

func (b WorldBounds) QuantizeVec3(v Vec3) Vector3 {
	return Vector3{X: b.Quantize(v.X), Y: b.Quantize(v.Y), Z: b.Quantize(v.Z)}
}

func (b WorldBounds) QuantizeQuat(q Quat) Vector4 {
	return Vector4{X: b.Quantize(q.X), Y: b.Quantize(q.Y), Z: b.Quantize(q.Z), W: b.Quantize(q.W)}
}

func (b WorldBounds) DequantizeVector2(v Vector2) Vec2 {
	return Vec2{X: b.Dequantize(v.X), Y: b.Dequantize(v.Y)}
}

func (b WorldBounds) DequantizeVector3(v Vector3) Vec3 {
	return Vec3{X: b.Dequantize(v.X), Y: b.Dequantize(v.Y), Z: b.Dequantize(v.Z)}
}

func (b WorldBounds) DequantizeVector4(v Vector4) Quat {
	return Quat{X: b.Dequantize(v.X), Y: b.Dequantize(v.Y), Z: b.Dequantize(v.Z), W: b.Dequantize(v.W)}
}
