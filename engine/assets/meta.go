package assets

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
)

// MetaExtension is appended to an asset file name to get its sidecar.
const MetaExtension = ".meta"

type imageInfo struct {
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

// metaFile is the sidecar written next to every tracked asset.
type metaFile struct {
	GUID     string                          `toml:"guid"`
	Type     string                          `toml:"type"`
	Importer *metadata.TextureImportSettings `toml:"importer,omitempty"`
	Image    *imageInfo                      `toml:"image,omitempty"`
}

func readMeta(path string) (*metaFile, error) {
	data, err := os.ReadFile(path + MetaExtension)
	if err != nil {
		return nil, err
	}
	mf := &metaFile{}
	if err := toml.Unmarshal(data, mf); err != nil {
		return nil, fmt.Errorf("invalid meta for %s: %w", path, err)
	}
	return mf, nil
}

func writeMeta(path string, mf *metaFile) error {
	data, err := toml.Marshal(mf)
	if err != nil {
		return err
	}
	return os.WriteFile(path+MetaExtension, data, 0o644)
}

// ensureMeta loads the sidecar of the asset at path, creating one with a
// fresh GUID when it is missing or unreadable.
func ensureMeta(path string, rt metadata.ResourceType) (*metaFile, bool, error) {
	mf, err := readMeta(path)
	if err == nil {
		if _, perr := core.IdentifierParseGUID(mf.GUID); perr == nil {
			if rt == metadata.ResourceTypeTexture && mf.Importer == nil {
				settings := metadata.DefaultTextureImportSettings()
				mf.Importer = &settings
				return mf, true, writeMeta(path, mf)
			}
			return mf, false, nil
		}
		core.LogWarn("meta for %s has an invalid guid, regenerating", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		core.LogWarn("%s", err.Error())
	}

	mf = &metaFile{
		GUID: core.IdentifierAquireNewGUID().String(),
		Type: rt.String(),
	}
	if rt == metadata.ResourceTypeTexture {
		settings := metadata.DefaultTextureImportSettings()
		mf.Importer = &settings
	}
	return mf, true, writeMeta(path, mf)
}
