package math

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(42, 0, 10))
	assert.Equal(t, float32(0.5), Saturate(float32(0.5)))
	assert.Equal(t, float32(1), Saturate(float32(1.5)))
	assert.Equal(t, float64(0), Saturate(-0.1))
}

func TestLerp(t *testing.T) {
	assert.InDelta(t, 5.0, Lerp(0.0, 10.0, 0.5), 1e-9)
	assert.InDelta(t, 2.0, Lerp(2.0, 4.0, 0), 1e-9)
}

func TestByteConversions(t *testing.T) {
	assert.Equal(t, uint8(0), UnitToByte(-1))
	assert.Equal(t, uint8(255), UnitToByte(2))
	assert.Equal(t, uint8(128), UnitToByte(0.5))
	for _, b := range []uint8{0, 1, 64, 127, 200, 255} {
		assert.Equal(t, b, UnitToByte(ByteToUnit(b)))
	}
}

func TestVec4(t *testing.T) {
	black := NewVec4Black()
	assert.True(t, black.IsBlack())
	assert.Equal(t, float32(1), black.W)
	assert.False(t, NewVec4One().IsBlack())

	v := NewVec4FromArray([4]float32{1, 0.5, 0, 1})
	assert.Equal(t, [4]float32{1, 0.5, 0, 1}, v.Array())
	assert.Equal(t, color.NRGBA{255, 128, 0, 255}, v.NRGBA())
}
