package math

import (
	"fmt"
	"image/color"
)

/** @brief A 4-element vector, used here as a linear RGBA colour. */
type Vec4 struct {
	X, Y, Z, W float32
}

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

func NewVec4Zero() Vec4 {
	return Vec4{}
}

// NewVec4Black is opaque black, the cleared emission colour.
func NewVec4Black() Vec4 {
	return Vec4{W: 1}
}

func NewVec4One() Vec4 {
	return Vec4{X: 1, Y: 1, Z: 1, W: 1}
}

func NewVec4FromArray(a [4]float32) Vec4 {
	return Vec4{X: a[0], Y: a[1], Z: a[2], W: a[3]}
}

func (v Vec4) Array() [4]float32 {
	return [4]float32{v.X, v.Y, v.Z, v.W}
}

// IsBlack reports whether the colour channels are all zero, ignoring alpha.
func (v Vec4) IsBlack() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// NRGBA converts to an 8 bit non-premultiplied colour.
func (v Vec4) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: UnitToByte(v.X),
		G: UnitToByte(v.Y),
		B: UnitToByte(v.Z),
		A: UnitToByte(v.W),
	}
}

func (v Vec4) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", v.X, v.Y, v.Z, v.W)
}
