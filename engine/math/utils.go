package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Saturate clamps to [0, 1].
func Saturate[T constraints.Float](f T) T {
	return Clamp(f, 0, 1)
}

// Lerp linearly interpolates between a and b.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// UnitToByte converts a [0, 1] channel value to 8 bits with rounding.
func UnitToByte(f float32) uint8 {
	return uint8(Saturate(f)*255 + 0.5)
}

// ByteToUnit converts an 8 bit channel to [0, 1].
func ByteToUnit(b uint8) float32 {
	return float32(b) / 255
}
