package metadata

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/math"
)

/** @brief The name used when a folder yields no usable material name. */
const DefaultMaterialName string = "Material"

/** @brief The material name prefix used until a preference is saved. */
const DefaultMaterialPrefix string = "m_"

/** @brief The shading model a material uses for reflectance. */
type WorkflowMode int

const (
	WorkflowModeMetallic WorkflowMode = iota
	WorkflowModeSpecular
)

func (m WorkflowMode) String() string {
	if m == WorkflowModeSpecular {
		return "specular"
	}
	return "metallic"
}

func ParseWorkflowMode(s string) (WorkflowMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metallic", "metal", "":
		return WorkflowModeMetallic, nil
	case "specular", "spec":
		return WorkflowModeSpecular, nil
	}
	return WorkflowModeMetallic, fmt.Errorf("unknown workflow mode %q", s)
}

// GlossRole is the role whose texture feeds the gloss map slot in this mode.
func (m WorkflowMode) GlossRole() TextureRole {
	if m == WorkflowModeSpecular {
		return TextureRoleSpecular
	}
	return TextureRoleMetalness
}

/** @brief Global illumination behaviour of emissive surfaces. */
type GIFlag int

const (
	GIFlagNone GIFlag = iota
	GIFlagRealtime
	GIFlagBaked
	GIFlagEmissiveIsBlack
)

func (g GIFlag) String() string {
	switch g {
	case GIFlagRealtime:
		return "realtime"
	case GIFlagBaked:
		return "baked"
	case GIFlagEmissiveIsBlack:
		return "emissive_is_black"
	}
	return "none"
}

func ParseGIFlag(s string) (GIFlag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return GIFlagNone, nil
	case "realtime":
		return GIFlagRealtime, nil
	case "baked":
		return GIFlagBaked, nil
	case "emissive_is_black", "black":
		return GIFlagEmissiveIsBlack, nil
	}
	return GIFlagNone, fmt.Errorf("unknown GI flag %q", s)
}

/** @brief Emission options of a material descriptor. */
type EmissionSettings struct {
	Enabled bool
	/** @brief Auto enables emission exactly when an emission texture is bound. */
	Auto   bool
	Color  math.Vec4
	GIFlag GIFlag
}

// Cleared reports whether emission must be removed from the material entirely.
func (e EmissionSettings) Cleared() bool {
	return !e.Enabled || e.GIFlag == GIFlagEmissiveIsBlack
}

/**
 * @brief Everything the tool knows before a material is built: which folder,
 * how to name the material, the workflow and the texture bindings.
 */
type MaterialDescriptor struct {
	/** @brief The texture folder, relative to the project root or absolute. */
	Folder       string
	NamePrefix   string
	NameSuffix   string
	NameOverride string
	/** @brief The preferred workflow when both metalness and specular maps exist. */
	Mode WorkflowMode
	/** @brief Explicit bindings. Discovered roles only fill the empty ones. */
	Slots    TextureSlots
	Emission EmissionSettings
	/** @brief Bake smoothness into the alpha channel of the gloss map. */
	PackSmoothness bool
	Metallic       float32
	Smoothness     float32
	SpecularColor  math.Vec4
}

/**
 * @brief A material, which represents various properties
 * of a surface such as textures, colours and scalars.
 */
type Material struct {
	/** @brief The asset identifier. */
	GUID core.GUID
	/** @brief The material generation. Incremented every time the material is saved. */
	Generation uint32
	/** @brief The material name. */
	Name       string
	ShaderName string
	Floats     map[string]float32
	Colors     map[string]math.Vec4
	Textures   map[string]*Texture
	Keywords   map[string]bool
	GIFlag     GIFlag
}

func NewMaterial(name, shaderName string) *Material {
	return &Material{
		Name:       name,
		ShaderName: shaderName,
		Floats:     make(map[string]float32),
		Colors:     make(map[string]math.Vec4),
		Textures:   make(map[string]*Texture),
		Keywords:   make(map[string]bool),
	}
}

func (m *Material) SetFloat(name string, v float32) {
	m.Floats[name] = v
}

func (m *Material) GetFloat(name string) float32 {
	return m.Floats[name]
}

func (m *Material) SetColor(name string, c math.Vec4) {
	m.Colors[name] = c
}

func (m *Material) GetColor(name string) math.Vec4 {
	return m.Colors[name]
}

// SetTexture binds tex to the property; nil clears it.
func (m *Material) SetTexture(name string, tex *Texture) {
	if tex == nil {
		delete(m.Textures, name)
		return
	}
	m.Textures[name] = tex
}

func (m *Material) GetTexture(name string) *Texture {
	return m.Textures[name]
}

func (m *Material) EnableKeyword(kw string) {
	m.Keywords[kw] = true
}

func (m *Material) DisableKeyword(kw string) {
	delete(m.Keywords, kw)
}

func (m *Material) SetKeyword(kw string, enabled bool) {
	if enabled {
		m.EnableKeyword(kw)
		return
	}
	m.DisableKeyword(kw)
}

func (m *Material) IsKeywordEnabled(kw string) bool {
	return m.Keywords[kw]
}

// EnabledKeywords returns the enabled keywords sorted.
func (m *Material) EnabledKeywords() []string {
	out := make([]string, 0, len(m.Keywords))
	for kw, on := range m.Keywords {
		if on {
			out = append(out, kw)
		}
	}
	sort.Strings(out)
	return out
}
