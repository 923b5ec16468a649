package metadata

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/pbrforge/engine/core"
)

/**
 * @brief The semantic role a texture plays in a PBR material.
 */
type TextureRole int

const (
	TextureRoleAlbedo TextureRole = iota
	TextureRoleNormal
	TextureRoleRoughness
	TextureRoleSmoothness
	TextureRoleMetalness
	TextureRoleSpecular
	TextureRoleAO
	TextureRoleEmission
)

// TextureRoles lists every role in display order.
var TextureRoles = []TextureRole{
	TextureRoleAlbedo,
	TextureRoleNormal,
	TextureRoleRoughness,
	TextureRoleSmoothness,
	TextureRoleMetalness,
	TextureRoleSpecular,
	TextureRoleAO,
	TextureRoleEmission,
}

func (r TextureRole) String() string {
	switch r {
	case TextureRoleAlbedo:
		return "albedo"
	case TextureRoleNormal:
		return "normal"
	case TextureRoleRoughness:
		return "roughness"
	case TextureRoleSmoothness:
		return "smoothness"
	case TextureRoleMetalness:
		return "metalness"
	case TextureRoleSpecular:
		return "specular"
	case TextureRoleAO:
		return "ao"
	case TextureRoleEmission:
		return "emission"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

func ParseTextureRole(s string) (TextureRole, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, r := range TextureRoles {
		if r.String() == key {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown texture role %q", s)
}

// IsColor reports whether the role stores colour data, sampled in sRGB.
// Emission is imported linear.
func (r TextureRole) IsColor() bool {
	return r == TextureRoleAlbedo
}

/** @brief How the importer interprets the pixels of a texture. */
type TextureImporterType string

const (
	TextureImporterTypeDefault   TextureImporterType = "default"
	TextureImporterTypeNormalMap TextureImporterType = "normal_map"
)

/**
 * @brief Per-texture import settings, persisted in the .meta sidecar.
 */
type TextureImportSettings struct {
	/** @brief Whether the texture holds sRGB colour data. */
	SRGB bool `toml:"srgb"`
	/** @brief The texture type. */
	TextureType TextureImporterType `toml:"texture_type"`
}

func DefaultTextureImportSettings() TextureImportSettings {
	return TextureImportSettings{
		SRGB:        true,
		TextureType: TextureImporterTypeDefault,
	}
}

/**
 * @brief A handle to an imported texture asset.
 */
type Texture struct {
	/** @brief The asset identifier. */
	GUID core.GUID
	/** @brief Slash separated path relative to the project root, e.g. Assets/Rock/Rock_Albedo.png */
	Path string
	/** @brief The file name without extension. */
	Name string
	/** @brief The texture Width, known after import. */
	Width uint32
	/** @brief The texture Height, known after import. */
	Height uint32
	/** @brief Import settings currently applied. */
	Import TextureImportSettings
}

// TextureSlots binds at most one texture per role.
type TextureSlots map[TextureRole]*Texture

func (s TextureSlots) Get(role TextureRole) *Texture {
	if s == nil {
		return nil
	}
	return s[role]
}

func (s TextureSlots) Has(role TextureRole) bool {
	return s.Get(role) != nil
}

// Set binds tex to role; a nil texture clears the slot.
func (s TextureSlots) Set(role TextureRole, tex *Texture) {
	if tex == nil {
		delete(s, role)
		return
	}
	s[role] = tex
}

// Bound returns the bound roles in display order.
func (s TextureSlots) Bound() []TextureRole {
	out := make([]TextureRole, 0, len(s))
	for _, r := range TextureRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}
