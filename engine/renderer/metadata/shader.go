package metadata

const (
	ShaderNameStandard         = "PBR/Standard"
	ShaderNameStandardSpecular = "PBR/StandardSpecular"
	// ShaderNameSmoothnessPacker is the hidden program that writes smoothness into alpha.
	ShaderNameSmoothnessPacker = "Hidden/PBRForge/SmoothnessPacker"
)

// Material property names understood by the standard shaders.
const (
	PropMainTex                  = "_MainTex"
	PropColor                    = "_Color"
	PropBumpMap                  = "_BumpMap"
	PropBumpScale                = "_BumpScale"
	PropMetallicGlossMap         = "_MetallicGlossMap"
	PropMetallic                 = "_Metallic"
	PropSpecGlossMap             = "_SpecGlossMap"
	PropSpecColor                = "_SpecColor"
	PropGlossiness               = "_Glossiness"
	PropGlossMapScale            = "_GlossMapScale"
	PropSmoothnessTextureChannel = "_SmoothnessTextureChannel"
	PropOcclusionMap             = "_OcclusionMap"
	PropOcclusionStrength        = "_OcclusionStrength"
	PropEmissionMap              = "_EmissionMap"
	PropEmissionColor            = "_EmissionColor"
)

// Keywords toggled on standard materials.
const (
	KeywordNormalMap        = "_NORMALMAP"
	KeywordMetallicGlossMap = "_METALLICGLOSSMAP"
	KeywordSpecGlossMap     = "_SPECGLOSSMAP"
	KeywordEmission         = "_EMISSION"
)

// Inputs of the smoothness packer program.
const (
	PackerInputGloss   = "_GlossTex"
	PackerInputSurface = "_SurfaceTex"
	PackerParamInvert  = "_Invert"
	PackerParamFill    = "_SurfaceFill"
)

/** @brief The type of a shader property. */
type ShaderPropertyType int

const (
	ShaderPropertyFloat ShaderPropertyType = iota
	ShaderPropertyColor
	ShaderPropertyTexture
)

/**
 * @brief Describes a shader: its name, the properties materials may set and the keywords it reacts to.
 */
type Shader struct {
	/** @brief The shader name, used for lookups. */
	Name string
	/** @brief Property name to type. */
	Properties map[string]ShaderPropertyType
	/** @brief Keywords the shader compiles variants for. */
	Keywords []string
	/** @brief Hidden shaders are not valid material shaders. */
	Hidden bool
}

// HasProperty reports whether name is declared with type pt.
func (s *Shader) HasProperty(name string, pt ShaderPropertyType) bool {
	t, ok := s.Properties[name]
	return ok && t == pt
}
