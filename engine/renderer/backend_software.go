package renderer

import (
	"fmt"
	"image"

	"github.com/spaghettifunk/pbrforge/engine/math"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
)

// FragmentProgram computes the colour of one output pixel. u and v address
// the pixel centre in [0, 1].
type FragmentProgram func(u, v float32, inputs *ShaderInputs) math.Vec4

type softwareBackend struct {
	programs map[string]FragmentProgram
}

func newSoftwareBackend() *softwareBackend {
	return &softwareBackend{
		programs: make(map[string]FragmentProgram),
	}
}

func (b *softwareBackend) RenderTargetCreate(width, height int) *RenderTarget {
	return &RenderTarget{
		Width:  width,
		Height: height,
		pixels: image.NewNRGBA(image.Rect(0, 0, width, height)),
	}
}

func (b *softwareBackend) RenderTargetDestroy(target *RenderTarget) {
	target.pixels = nil
}

func (b *softwareBackend) ShaderCreate(shader *metadata.Shader, program FragmentProgram) error {
	if _, ok := b.programs[shader.Name]; ok {
		return fmt.Errorf("program for shader %s already exists", shader.Name)
	}
	b.programs[shader.Name] = program
	return nil
}

func (b *softwareBackend) DrawFullscreen(shader *metadata.Shader, inputs *ShaderInputs, target *RenderTarget) error {
	program, ok := b.programs[shader.Name]
	if !ok {
		return fmt.Errorf("shader %s has no fragment program", shader.Name)
	}
	if target.pixels == nil {
		return fmt.Errorf("render target was released")
	}
	if inputs == nil {
		inputs = NewShaderInputs()
	}
	w, h := float32(target.Width), float32(target.Height)
	for y := 0; y < target.Height; y++ {
		v := (float32(y) + 0.5) / h
		for x := 0; x < target.Width; x++ {
			u := (float32(x) + 0.5) / w
			target.set(x, y, program(u, v, inputs).NRGBA())
		}
	}
	return nil
}

func (b *softwareBackend) ReadPixels(target *RenderTarget) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, target.Width, target.Height))
	if target.pixels != nil {
		copy(out.Pix, target.pixels.Pix)
	}
	return out
}
