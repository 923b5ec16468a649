package systems

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/pbrforge/engine/assets"
	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
)

// TextureSystem configures importer flags of the textures a material uses.
type TextureSystem struct {
	db *assets.AssetDatabase
}

func NewTextureSystem(db *assets.AssetDatabase) *TextureSystem {
	return &TextureSystem{db: db}
}

// ImportSettingsForRole returns the importer flags a role needs. Only albedo
// is sRGB and the normal slot is imported as a normal map.
func ImportSettingsForRole(role metadata.TextureRole) metadata.TextureImportSettings {
	settings := metadata.TextureImportSettings{
		SRGB:        role.IsColor(),
		TextureType: metadata.TextureImporterTypeDefault,
	}
	if role == metadata.TextureRoleNormal {
		settings.TextureType = metadata.TextureImporterTypeNormalMap
	}
	return settings
}

// FixImports applies the role flags to every bound texture and reimports it.
// A texture bound to several roles is reimported once, sRGB when any of its
// roles is a colour role and a normal map when one of them is the normal slot.
func (ts *TextureSystem) FixImports(slots metadata.TextureSlots) error {
	var order []string
	textures := make(map[string]*metadata.Texture)
	settings := make(map[string]metadata.TextureImportSettings)
	roles := make(map[string][]string)

	for _, role := range slots.Bound() {
		tex := slots.Get(role)
		want := ImportSettingsForRole(role)
		cur, ok := settings[tex.Path]
		if !ok {
			order = append(order, tex.Path)
			textures[tex.Path] = tex
			cur = want
		}
		cur.SRGB = cur.SRGB || want.SRGB
		if want.TextureType == metadata.TextureImporterTypeNormalMap {
			cur.TextureType = want.TextureType
		}
		settings[tex.Path] = cur
		roles[tex.Path] = append(roles[tex.Path], role.String())
	}

	for _, p := range order {
		if len(roles[p]) > 1 {
			core.LogWarn("%s is bound to several roles (%s)", p, strings.Join(roles[p], ", "))
		}
		if err := ts.Apply(textures[p], settings[p]); err != nil {
			return fmt.Errorf("%s texture: %w", strings.Join(roles[p], "/"), err)
		}
	}
	return nil
}

// Apply writes settings for tex and requests a synchronous reimport.
func (ts *TextureSystem) Apply(tex *metadata.Texture, settings metadata.TextureImportSettings) error {
	if tex == nil {
		return nil
	}
	if tex.Import != settings {
		if err := ts.db.SetTextureImportSettings(tex.Path, settings); err != nil {
			return err
		}
		core.LogDebug("%s: srgb=%t type=%s", tex.Path, settings.SRGB, settings.TextureType)
	}
	if err := ts.db.ImportAsset(tex.Path); err != nil {
		return err
	}
	tex.Import = settings
	return nil
}
