package renderer

import (
	"github.com/spaghettifunk/pbrforge/engine/math"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
)

func standardProperties() map[string]metadata.ShaderPropertyType {
	return map[string]metadata.ShaderPropertyType{
		metadata.PropMainTex:                  metadata.ShaderPropertyTexture,
		metadata.PropColor:                    metadata.ShaderPropertyColor,
		metadata.PropBumpMap:                  metadata.ShaderPropertyTexture,
		metadata.PropBumpScale:                metadata.ShaderPropertyFloat,
		metadata.PropMetallicGlossMap:         metadata.ShaderPropertyTexture,
		metadata.PropMetallic:                 metadata.ShaderPropertyFloat,
		metadata.PropSpecGlossMap:             metadata.ShaderPropertyTexture,
		metadata.PropSpecColor:                metadata.ShaderPropertyColor,
		metadata.PropGlossiness:               metadata.ShaderPropertyFloat,
		metadata.PropGlossMapScale:            metadata.ShaderPropertyFloat,
		metadata.PropSmoothnessTextureChannel: metadata.ShaderPropertyFloat,
		metadata.PropOcclusionMap:             metadata.ShaderPropertyTexture,
		metadata.PropOcclusionStrength:        metadata.ShaderPropertyFloat,
		metadata.PropEmissionMap:              metadata.ShaderPropertyTexture,
		metadata.PropEmissionColor:            metadata.ShaderPropertyColor,
	}
}

func (r *Renderer) registerBuiltinShaders() error {
	keywords := []string{
		metadata.KeywordNormalMap,
		metadata.KeywordMetallicGlossMap,
		metadata.KeywordSpecGlossMap,
		metadata.KeywordEmission,
	}
	builtins := []struct {
		shader  *metadata.Shader
		program FragmentProgram
	}{
		{
			shader: &metadata.Shader{
				Name:       metadata.ShaderNameStandard,
				Properties: standardProperties(),
				Keywords:   keywords,
			},
		},
		{
			shader: &metadata.Shader{
				Name:       metadata.ShaderNameStandardSpecular,
				Properties: standardProperties(),
				Keywords:   keywords,
			},
		},
		{
			shader: &metadata.Shader{
				Name: metadata.ShaderNameSmoothnessPacker,
				Properties: map[string]metadata.ShaderPropertyType{
					metadata.PackerInputGloss:   metadata.ShaderPropertyTexture,
					metadata.PackerInputSurface: metadata.ShaderPropertyTexture,
					metadata.PackerParamInvert:  metadata.ShaderPropertyFloat,
					metadata.PackerParamFill:    metadata.ShaderPropertyColor,
				},
				Hidden: true,
			},
			program: smoothnessPackerFragment,
		},
	}
	for _, b := range builtins {
		if err := r.RegisterShader(b.shader, b.program); err != nil {
			return err
		}
	}
	return nil
}

// smoothnessPackerFragment keeps the surface map colour and stores the gloss
// source red channel, inverted when _Invert > 0.5, in alpha. A missing
// surface map reads as _SurfaceFill; a missing gloss source as zero.
func smoothnessPackerFragment(u, v float32, in *ShaderInputs) math.Vec4 {
	surface, ok := in.Sample(metadata.PackerInputSurface, u, v)
	if !ok {
		surface = in.Color(metadata.PackerParamFill)
	}
	gloss, _ := in.Sample(metadata.PackerInputGloss, u, v)

	smoothness := gloss.X
	if in.Float(metadata.PackerParamInvert) > 0.5 {
		smoothness = 1 - smoothness
	}
	return math.Vec4{
		X: surface.X,
		Y: surface.Y,
		Z: surface.Z,
		W: math.Saturate(smoothness),
	}
}
