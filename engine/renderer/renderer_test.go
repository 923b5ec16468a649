package renderer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/math"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(Software)
	require.NoError(t, err)
	return r
}

func TestRenderer_BuiltinShaders(t *testing.T) {
	r := newRenderer(t)
	for _, name := range []string{
		metadata.ShaderNameStandard,
		metadata.ShaderNameStandardSpecular,
		metadata.ShaderNameSmoothnessPacker,
	} {
		s, err := r.FindShader(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name)
	}

	packer, _ := r.FindShader(metadata.ShaderNameSmoothnessPacker)
	assert.True(t, packer.Hidden)

	_, err := r.FindShader("PBR/Toon")
	assert.True(t, errors.Is(err, core.ErrShaderNotFound))

	// names are unique
	assert.Error(t, r.RegisterShader(&metadata.Shader{Name: metadata.ShaderNameStandard}, nil))
}

func TestRenderer_Temporaries(t *testing.T) {
	r := newRenderer(t)
	a := r.GetTemporary(4, 4)
	b := r.GetTemporary(8, 2)
	assert.Equal(t, 2, r.ActiveTemporaries())

	r.ReleaseTemporary(a)
	r.ReleaseTemporary(a)
	assert.Equal(t, 1, r.ActiveTemporaries())

	r.ReleaseTemporary(b)
	assert.Zero(t, r.ActiveTemporaries())

	// drawing into a released target fails
	err := r.Blit(NewShaderInputs(), b, metadata.ShaderNameSmoothnessPacker)
	assert.Error(t, err)
}

func TestRenderer_BlitWithoutProgram(t *testing.T) {
	r := newRenderer(t)
	target := r.GetTemporary(2, 2)
	defer r.ReleaseTemporary(target)
	assert.Error(t, r.Blit(nil, target, metadata.ShaderNameStandard))
}

func TestSmoothnessPacker_Roughness(t *testing.T) {
	r := newRenderer(t)
	surface := solid(4, 4, color.NRGBA{10, 20, 30, 255})
	rough := solid(4, 4, color.NRGBA{51, 0, 0, 255})

	in := NewShaderInputs()
	in.SetTexture(metadata.PackerInputSurface, surface)
	in.SetTexture(metadata.PackerInputGloss, rough)
	in.SetFloat(metadata.PackerParamInvert, 1)

	target := r.GetTemporary(4, 4)
	defer r.ReleaseTemporary(target)
	require.NoError(t, r.Blit(in, target, metadata.ShaderNameSmoothnessPacker))

	out := r.ReadPixels(target)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := out.NRGBAAt(x, y)
			assert.Equal(t, uint8(10), c.R)
			assert.Equal(t, uint8(20), c.G)
			assert.Equal(t, uint8(30), c.B)
			assert.InDelta(t, 204, int(c.A), 1)
		}
	}
}

func TestSmoothnessPacker_FillWhenSurfaceMissing(t *testing.T) {
	r := newRenderer(t)
	in := NewShaderInputs()
	in.SetTexture(metadata.PackerInputGloss, solid(2, 2, color.NRGBA{128, 0, 0, 255}))
	in.SetColor(metadata.PackerParamFill, math.NewVec4(1, 1, 1, 1))

	target := r.GetTemporary(2, 2)
	defer r.ReleaseTemporary(target)
	require.NoError(t, r.Blit(in, target, metadata.ShaderNameSmoothnessPacker))

	c := r.ReadPixels(target).NRGBAAt(1, 1)
	assert.Equal(t, color.NRGBA{255, 255, 255, 128}, c)
}

func TestShaderInputs_SampleUpscales(t *testing.T) {
	in := NewShaderInputs()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{255, 0, 0, 255})
	in.SetTexture("_Tex", img)

	left, ok := in.Sample("_Tex", 0, 0.5)
	require.True(t, ok)
	assert.InDelta(t, 0, left.X, 1e-6)

	right, _ := in.Sample("_Tex", 1, 0.5)
	assert.InDelta(t, 1, right.X, 1e-6)

	mid, _ := in.Sample("_Tex", 0.5, 0.5)
	assert.InDelta(t, 0.5, mid.X, 1e-6)

	_, ok = in.Sample("_Missing", 0.5, 0.5)
	assert.False(t, ok)
}

func TestShaderInputs_SubImageIsRebased(t *testing.T) {
	in := NewShaderInputs()
	big := solid(8, 8, color.NRGBA{0, 0, 0, 255})
	big.SetNRGBA(5, 5, color.NRGBA{255, 255, 255, 255})
	in.SetTexture("_Tex", big.SubImage(image.Rect(5, 5, 6, 6)))

	c, ok := in.Sample("_Tex", 0.5, 0.5)
	require.True(t, ok)
	assert.InDelta(t, 1, c.X, 1e-6)

	in.SetTexture("_Tex", nil)
	assert.False(t, in.HasTexture("_Tex"))
}

func TestEncodePNG(t *testing.T) {
	data, err := EncodePNG(solid(3, 2, color.NRGBA{1, 2, 3, 4}))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	nrgba, ok := img.(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{1, 2, 3, 4}, nrgba.NRGBAAt(0, 0))
}
