package systems

import "github.com/spaghettifunk/pbrforge/engine/renderer/metadata"

// WorkflowResolution is the workflow the material will be built with.
type WorkflowResolution struct {
	Mode metadata.WorkflowMode
	// Overridable is true when both surface maps exist and the user choice applies.
	Overridable bool
	// Metallic is the metallic scalar to write.
	Metallic float32
}

// ResolveWorkflow picks the workflow from the surface maps present:
// both maps keep the preferred mode, a single map forces its mode and no map
// forces metallic with the metallic scalar fixed at 1.
func ResolveWorkflow(slots metadata.TextureSlots, preferred metadata.WorkflowMode, metallic float32) WorkflowResolution {
	hasSpecular := slots.Has(metadata.TextureRoleSpecular)
	hasMetal := slots.Has(metadata.TextureRoleMetalness)

	switch {
	case hasSpecular && hasMetal:
		return WorkflowResolution{Mode: preferred, Overridable: true, Metallic: metallic}
	case hasSpecular:
		return WorkflowResolution{Mode: metadata.WorkflowModeSpecular, Metallic: metallic}
	case hasMetal:
		return WorkflowResolution{Mode: metadata.WorkflowModeMetallic, Metallic: metallic}
	default:
		return WorkflowResolution{Mode: metadata.WorkflowModeMetallic, Metallic: 1}
	}
}

// SelectPackSource returns the role whose texture feeds the alpha channel of
// the packed texture. Smoothness wins over roughness; only roughness is
// inverted.
func SelectPackSource(slots metadata.TextureSlots) (role metadata.TextureRole, invert bool, ok bool) {
	switch {
	case slots.Has(metadata.TextureRoleSmoothness):
		return metadata.TextureRoleSmoothness, false, true
	case slots.Has(metadata.TextureRoleRoughness):
		return metadata.TextureRoleRoughness, true, true
	}
	return 0, false, false
}
