package systems

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/pbrforge/engine/assets"
	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/math"
	"github.com/spaghettifunk/pbrforge/engine/renderer"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
)

// MaterialName derives the material name from the folder as typed: the
// override when set, otherwise prefix + last path segment + suffix. The
// segment is taken after the last separator without cleaning the path, so
// "Assets/Rock/" yields an empty segment, which becomes
// metadata.DefaultMaterialName.
func MaterialName(folder, prefix, suffix, override string) string {
	if o := strings.TrimSpace(override); o != "" {
		return o
	}
	slashed := filepath.ToSlash(folder)
	segment := slashed[strings.LastIndex(slashed, "/")+1:]
	if segment == "" || segment == "." {
		segment = metadata.DefaultMaterialName
	}
	return prefix + segment + suffix
}

// MaterialPath is the asset path of the material built for a folder.
func MaterialPath(assetFolder, name string) string {
	return path.Join(assetFolder, name+assets.MaterialExtension)
}

// BuildRequest is a fully resolved material build.
type BuildRequest struct {
	AssetFolder string
	Name        string
	Workflow    WorkflowResolution
	Slots       metadata.TextureSlots
	Emission    metadata.EmissionSettings
	Pack        bool
	Smoothness  float32
	Specular    math.Vec4
}

// BuildResult reports what was written.
type BuildResult struct {
	Material *metadata.Material
	Path     string
	Created  bool
	Packed   *metadata.Texture
}

// MaterialSystem assembles material assets from texture slots.
type MaterialSystem struct {
	db       *assets.AssetDatabase
	renderer *renderer.Renderer
	packer   *SmoothnessPacker
}

func NewMaterialSystem(db *assets.AssetDatabase, r *renderer.Renderer, packer *SmoothnessPacker) *MaterialSystem {
	return &MaterialSystem{
		db:       db,
		renderer: r,
		packer:   packer,
	}
}

// Build creates the material at <folder>/<name>.mat or updates the existing
// asset in place.
func (ms *MaterialSystem) Build(req BuildRequest) (*BuildResult, error) {
	matPath := MaterialPath(req.AssetFolder, req.Name)

	shaderName := metadata.ShaderNameStandard
	if req.Workflow.Mode == metadata.WorkflowModeSpecular {
		shaderName = metadata.ShaderNameStandardSpecular
	}
	shader, err := ms.renderer.FindShader(shaderName)
	if err != nil {
		return nil, err
	}

	mat, err := ms.loadOrCreate(matPath, req.Name, shader.Name)
	if err != nil {
		return nil, err
	}

	ms.bindSurface(mat, req)

	var packed *metadata.Texture
	if req.Pack {
		if _, _, ok := SelectPackSource(req.Slots); ok {
			packed, err = ms.packer.Pack(PackRequest{
				AssetFolder:  req.AssetFolder,
				MaterialName: req.Name,
				Mode:         req.Workflow.Mode,
				Slots:        req.Slots,
				Fill:         packFill(req),
			})
			if err != nil {
				return nil, fmt.Errorf("smoothness packing: %w", err)
			}
			bindPacked(mat, req.Workflow.Mode, packed)
		} else {
			core.LogWarn("smoothness packing requested but %s has no roughness or smoothness texture", req.AssetFolder)
		}
	}

	applyEmission(mat, req.Emission, req.Slots.Get(metadata.TextureRoleEmission))

	created, err := ms.db.SaveMaterial(matPath, mat)
	if err != nil {
		return nil, err
	}
	if created {
		core.LogInfo("created material %s (%s)", matPath, mat.GUID)
	} else {
		core.LogInfo("updated material %s (%s)", matPath, mat.GUID)
	}

	return &BuildResult{
		Material: mat,
		Path:     matPath,
		Created:  created,
		Packed:   packed,
	}, nil
}

func (ms *MaterialSystem) loadOrCreate(matPath, name, shaderName string) (*metadata.Material, error) {
	if _, ok := ms.db.Lookup(matPath); ok {
		mat, err := ms.db.LoadMaterial(matPath)
		if err != nil {
			return nil, err
		}
		mat.Name = name
		mat.ShaderName = shaderName
		return mat, nil
	}
	return metadata.NewMaterial(name, shaderName), nil
}

// bindSurface sets the texture slots and the scalar/texture pair of the
// active workflow, zeroing the pair of the other one.
func (ms *MaterialSystem) bindSurface(mat *metadata.Material, req BuildRequest) {
	slots := req.Slots

	mat.SetTexture(metadata.PropMainTex, slots.Get(metadata.TextureRoleAlbedo))
	mat.SetColor(metadata.PropColor, math.NewVec4One())

	normal := slots.Get(metadata.TextureRoleNormal)
	mat.SetTexture(metadata.PropBumpMap, normal)
	mat.SetFloat(metadata.PropBumpScale, 1)
	mat.SetKeyword(metadata.KeywordNormalMap, normal != nil)

	mat.SetTexture(metadata.PropOcclusionMap, slots.Get(metadata.TextureRoleAO))
	mat.SetFloat(metadata.PropOcclusionStrength, 1)

	mat.SetFloat(metadata.PropGlossiness, req.Smoothness)
	mat.SetFloat(metadata.PropGlossMapScale, req.Smoothness)
	mat.SetFloat(metadata.PropSmoothnessTextureChannel, 0)

	switch req.Workflow.Mode {
	case metadata.WorkflowModeSpecular:
		spec := slots.Get(metadata.TextureRoleSpecular)
		mat.SetTexture(metadata.PropSpecGlossMap, spec)
		mat.SetColor(metadata.PropSpecColor, req.Specular)
		mat.SetKeyword(metadata.KeywordSpecGlossMap, spec != nil)

		mat.SetTexture(metadata.PropMetallicGlossMap, nil)
		mat.SetFloat(metadata.PropMetallic, 0)
		mat.DisableKeyword(metadata.KeywordMetallicGlossMap)
	default:
		metal := slots.Get(metadata.TextureRoleMetalness)
		mat.SetTexture(metadata.PropMetallicGlossMap, metal)
		mat.SetFloat(metadata.PropMetallic, req.Workflow.Metallic)
		mat.SetKeyword(metadata.KeywordMetallicGlossMap, metal != nil)

		mat.SetTexture(metadata.PropSpecGlossMap, nil)
		mat.SetColor(metadata.PropSpecColor, math.NewVec4Zero())
		mat.DisableKeyword(metadata.KeywordSpecGlossMap)
	}
}

// bindPacked rebinds the mode's gloss slot to the packed texture and forces
// the smoothness scalars to their maximum.
func bindPacked(mat *metadata.Material, mode metadata.WorkflowMode, packed *metadata.Texture) {
	if mode == metadata.WorkflowModeSpecular {
		mat.SetTexture(metadata.PropSpecGlossMap, packed)
		mat.EnableKeyword(metadata.KeywordSpecGlossMap)
	} else {
		mat.SetTexture(metadata.PropMetallicGlossMap, packed)
		mat.EnableKeyword(metadata.KeywordMetallicGlossMap)
	}
	mat.SetFloat(metadata.PropGlossiness, 1)
	mat.SetFloat(metadata.PropGlossMapScale, 1)
	mat.SetFloat(metadata.PropSmoothnessTextureChannel, 0)
}

func applyEmission(mat *metadata.Material, e metadata.EmissionSettings, tex *metadata.Texture) {
	if e.Cleared() {
		mat.DisableKeyword(metadata.KeywordEmission)
		mat.SetColor(metadata.PropEmissionColor, math.NewVec4Black())
		mat.SetTexture(metadata.PropEmissionMap, nil)
		mat.GIFlag = metadata.GIFlagEmissiveIsBlack
		return
	}
	mat.EnableKeyword(metadata.KeywordEmission)
	mat.SetColor(metadata.PropEmissionColor, e.Color)
	mat.SetTexture(metadata.PropEmissionMap, tex)
	mat.GIFlag = e.GIFlag
}

// packFill is what a missing surface map reads as in the packer.
func packFill(req BuildRequest) math.Vec4 {
	if req.Workflow.Mode == metadata.WorkflowModeSpecular {
		return req.Specular
	}
	m := math.Saturate(req.Workflow.Metallic)
	return math.NewVec4(m, m, m, 1)
}
