package systems

import (
	"fmt"
	"image"
	"path"

	"github.com/spaghettifunk/pbrforge/engine/assets"
	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/math"
	"github.com/spaghettifunk/pbrforge/engine/renderer"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
)

// DefaultPackSize is the edge length of a packed texture when no input
// provides a size.
const DefaultPackSize = 32

// PackRequest describes one smoothness bake.
type PackRequest struct {
	// AssetFolder receives the packed texture.
	AssetFolder  string
	MaterialName string
	Mode         metadata.WorkflowMode
	Slots        metadata.TextureSlots
	// Fill stands in for a missing surface map.
	Fill math.Vec4
}

// SmoothnessPacker bakes a surface map and a smoothness value into one RGBA texture.
type SmoothnessPacker struct {
	db       *assets.AssetDatabase
	renderer *renderer.Renderer
	textures *TextureSystem
	events   *core.EventSystem
}

func NewSmoothnessPacker(db *assets.AssetDatabase, r *renderer.Renderer, ts *TextureSystem, events *core.EventSystem) *SmoothnessPacker {
	return &SmoothnessPacker{
		db:       db,
		renderer: r,
		textures: ts,
		events:   events,
	}
}

// PackedTexturePath is where the packed texture of a material is written.
func PackedTexturePath(assetFolder, materialName string, mode metadata.WorkflowMode) string {
	kind := "MetallicSmoothness"
	if mode == metadata.WorkflowModeSpecular {
		kind = "SpecularSmoothness"
	}
	return path.Join(assetFolder, fmt.Sprintf("%s_%s_Packed.png", materialName, kind))
}

// PackSize returns the packed texture size: the roughness map's, else the
// smoothness map's, else DefaultPackSize square. The surface map never
// decides the size.
func PackSize(roughness, smoothness image.Image) (int, int) {
	for _, img := range []image.Image{roughness, smoothness} {
		if img == nil {
			continue
		}
		b := img.Bounds()
		if b.Dx() > 0 && b.Dy() > 0 {
			return b.Dx(), b.Dy()
		}
	}
	return DefaultPackSize, DefaultPackSize
}

func (sp *SmoothnessPacker) loadSlot(slots metadata.TextureSlots, role metadata.TextureRole) (image.Image, error) {
	tex := slots.Get(role)
	if tex == nil {
		return nil, nil
	}
	return sp.db.LoadImage(tex.Path)
}

// Pack renders the packed texture, writes it as a PNG asset and imports it
// as linear data.
func (sp *SmoothnessPacker) Pack(req PackRequest) (*metadata.Texture, error) {
	sourceRole, invert, ok := SelectPackSource(req.Slots)
	if !ok {
		return nil, core.ErrNoPackSource
	}

	roughness, err := sp.loadSlot(req.Slots, metadata.TextureRoleRoughness)
	if err != nil {
		return nil, err
	}
	smoothness, err := sp.loadSlot(req.Slots, metadata.TextureRoleSmoothness)
	if err != nil {
		return nil, err
	}
	gloss := roughness
	if sourceRole == metadata.TextureRoleSmoothness {
		gloss = smoothness
	}
	surface, err := sp.loadSlot(req.Slots, req.Mode.GlossRole())
	if err != nil {
		return nil, err
	}

	inputs := renderer.NewShaderInputs()
	inputs.SetTexture(metadata.PackerInputGloss, gloss)
	inputs.SetTexture(metadata.PackerInputSurface, surface)
	inputs.SetColor(metadata.PackerParamFill, req.Fill)
	if invert {
		inputs.SetFloat(metadata.PackerParamInvert, 1)
	}

	w, h := PackSize(roughness, smoothness)
	target := sp.renderer.GetTemporary(w, h)
	defer sp.renderer.ReleaseTemporary(target)

	if err := sp.renderer.Blit(inputs, target, metadata.ShaderNameSmoothnessPacker); err != nil {
		return nil, err
	}
	data, err := renderer.EncodePNG(sp.renderer.ReadPixels(target))
	if err != nil {
		return nil, err
	}

	outPath := PackedTexturePath(req.AssetFolder, req.MaterialName, req.Mode)
	guid, err := sp.db.CreateAsset(outPath, data)
	if err != nil {
		return nil, err
	}
	tex, err := sp.db.LoadTexture(outPath)
	if err != nil {
		return nil, err
	}
	linear := metadata.TextureImportSettings{
		SRGB:        false,
		TextureType: metadata.TextureImporterTypeDefault,
	}
	if err := sp.textures.Apply(tex, linear); err != nil {
		return nil, err
	}

	core.LogInfo("packed %s (%dx%d) from %s, inverted=%t", outPath, w, h, sourceRole, invert)
	sp.events.Fire(core.EVENT_CODE_TEXTURE_PACKED, sp, core.EventContext{
		Path: outPath,
		GUID: guid,
		Kind: metadata.ResourceTypeTexture.String(),
	})
	return tex, nil
}
