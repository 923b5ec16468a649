package renderer

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/spaghettifunk/pbrforge/engine/math"
)

// RenderTarget is an RGBA8 colour attachment.
type RenderTarget struct {
	Width  int
	Height int

	pixels *image.NRGBA
}

// ShaderInputs are the textures and uniforms bound for a draw.
type ShaderInputs struct {
	textures map[string]*image.NRGBA
	floats   map[string]float32
	colors   map[string]math.Vec4
}

func NewShaderInputs() *ShaderInputs {
	return &ShaderInputs{
		textures: make(map[string]*image.NRGBA),
		floats:   make(map[string]float32),
		colors:   make(map[string]math.Vec4),
	}
}

// SetTexture binds img to name. A nil image unbinds it.
func (si *ShaderInputs) SetTexture(name string, img image.Image) {
	if img == nil {
		delete(si.textures, name)
		return
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		b := img.Bounds()
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	si.textures[name] = nrgba
}

func (si *ShaderInputs) HasTexture(name string) bool {
	_, ok := si.textures[name]
	return ok
}

func (si *ShaderInputs) SetFloat(name string, v float32) {
	si.floats[name] = v
}

func (si *ShaderInputs) Float(name string) float32 {
	return si.floats[name]
}

func (si *ShaderInputs) SetColor(name string, c math.Vec4) {
	si.colors[name] = c
}

func (si *ShaderInputs) Color(name string) math.Vec4 {
	return si.colors[name]
}

// Sample reads the bound texture at uv with bilinear filtering and clamp to
// edge addressing. Unbound textures sample as ok == false.
func (si *ShaderInputs) Sample(name string, u, v float32) (math.Vec4, bool) {
	img, ok := si.textures[name]
	if !ok {
		return math.Vec4{}, false
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return math.Vec4{}, false
	}

	fx := u*float32(w) - 0.5
	fy := v*float32(h) - 0.5
	x0, y0 := floor(fx), floor(fy)
	tx, ty := fx-float32(x0), fy-float32(y0)

	c00 := texel(img, x0, y0)
	c10 := texel(img, x0+1, y0)
	c01 := texel(img, x0, y0+1)
	c11 := texel(img, x0+1, y0+1)

	lerp := func(a, b, c, d float32) float32 {
		return math.Lerp(math.Lerp(a, b, tx), math.Lerp(c, d, tx), ty)
	}
	return math.Vec4{
		X: lerp(c00.X, c10.X, c01.X, c11.X),
		Y: lerp(c00.Y, c10.Y, c01.Y, c11.Y),
		Z: lerp(c00.Z, c10.Z, c01.Z, c11.Z),
		W: lerp(c00.W, c10.W, c01.W, c11.W),
	}, true
}

func texel(img *image.NRGBA, x, y int) math.Vec4 {
	x = math.Clamp(x, 0, img.Rect.Dx()-1)
	y = math.Clamp(y, 0, img.Rect.Dy()-1)
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	return math.Vec4{
		X: math.ByteToUnit(p[0]),
		Y: math.ByteToUnit(p[1]),
		Z: math.ByteToUnit(p[2]),
		W: math.ByteToUnit(p[3]),
	}
}

func floor(f float32) int {
	i := int(f)
	if f < float32(i) {
		i--
	}
	return i
}

func (t *RenderTarget) set(x, y int, c color.NRGBA) {
	t.pixels.SetNRGBA(x, y, c)
}
