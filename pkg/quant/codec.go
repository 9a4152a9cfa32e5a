package quant

import "sync/atomic"

// Codec holds the world bounds of a session. The bounds are swapped as one
// value, so concurrent readers see either the old or the new triple.
//
// The zero value uses DefaultBounds.
type Codec struct {
	bounds atomic.Pointer[WorldBounds]
}

// NewCodec returns a codec using b. An invalid b falls back to DefaultBounds.
func NewCodec(b WorldBounds) *Codec {
	c := &Codec{}
	if b.Valid() {
		c.bounds.Store(&b)
	}
	return c
}

// Default is the process-wide codec used by the package-level functions.
var Default = &Codec{}

// Bounds returns the current bounds.
func (c *Codec) Bounds() WorldBounds {
	if b := c.bounds.Load(); b != nil {
		return *b
	}
	return DefaultBounds()
}

// Configure replaces the bounds with [min, max]. On error the current bounds
// are left untouched.
func (c *Codec) Configure(min, max float32) error {
	b, err := NewWorldBounds(min, max)
	if err != nil {
		return err
	}
	c.bounds.Store(&b)
	return nil
}

// ConfigureWorldSize replaces the bounds with [-size/2, size/2].
func (c *Codec) ConfigureWorldSize(size float32) error {
	b, err := BoundsForWorldSize(size)
	if err != nil {
		return err
	}
	c.bounds.Store(&b)
	return nil
}

// Reset restores DefaultBounds.
func (c *Codec) Reset() {
	c.bounds.Store(nil)
}

func (c *Codec) Quantize(v float32) int16 { return c.Bounds().Quantize(v) }
func (c *Codec) Dequantize(q int16) float32 { return c.Bounds().Dequantize(q) }
func (c *Codec) QuantizeVec2(v Vec2) Vector2 { return c.Bounds().QuantizeVec2(v) }
func (c *Codec) QuantizeVec3(v Vec3) Vector3 { return c.Bounds().QuantizeVec3(v) }
func (c *Codec) QuantizeQuat(q Quat) Vector4 { return c.Bounds().QuantizeQuat(q) }
func (c *Codec) DequantizeVector2(v Vector2) Vec2 { return c.Bounds().DequantizeVector2(v) }
func (c *Codec) DequantizeVector3(v Vector3) Vec3 { return c.Bounds().DequantizeVector3(v) }
func (c *Codec) DequantizeVector4(v Vector4) Quat { return c.Bounds().DequantizeVector4(v) }

// ConfigureWorldBounds configures the Default codec.
func ConfigureWorldBounds(min, max float32) error {
	return Default.Configure(min, max)
}

// ResetToDefaults resets the Default codec to DefaultBounds.
func ResetToDefaults() {
	Default.Reset()
}

// Quantize quantizes v with the Default codec.
func Quantize(v float32) int16 {
	return Default.Quantize(v)
}

// Dequantize dequantizes q with the Default codec.
func Dequantize(q int16) float32 {
	return Default.Dequantize(q)
}
