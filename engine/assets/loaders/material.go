package loaders

import (
	"fmt"
	"os"
	"path"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/math"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
)

type materialTextureEntry struct {
	GUID string `toml:"guid"`
	Path string `toml:"path"`
}

// materialFile is the on-disk layout of a .mat asset.
type materialFile struct {
	Name     string                          `toml:"name"`
	Shader   string                          `toml:"shader"`
	GIFlag   string                          `toml:"gi_flag"`
	Keywords []string                        `toml:"keywords"`
	Floats   map[string]float32              `toml:"floats"`
	Colors   map[string][4]float32           `toml:"colors"`
	Textures map[string]materialTextureEntry `toml:"textures"`
}

type MaterialLoader struct{}

func (ml *MaterialLoader) Load(filename string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	m, err := DecodeMaterial(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &metadata.Resource{
		Name:     m.Name,
		FullPath: filename,
		Type:     metadata.ResourceTypeMaterial,
		DataSize: uint64(len(data)),
		Data:     m,
	}, nil
}

func (ml *MaterialLoader) Unload(*metadata.Resource) error {
	return nil
}

// DecodeMaterial parses and validates a material asset.
func DecodeMaterial(data []byte) (*metadata.Material, error) {
	mf := materialFile{}
	if err := toml.Unmarshal(data, &mf); err != nil {
		return nil, err
	}

	giFlag, err := metadata.ParseGIFlag(mf.GIFlag)
	if err != nil {
		return nil, err
	}

	m := metadata.NewMaterial(mf.Name, mf.Shader)
	m.GIFlag = giFlag
	for k, v := range mf.Floats {
		m.SetFloat(k, v)
	}
	for k, v := range mf.Colors {
		m.SetColor(k, math.NewVec4FromArray(v))
	}
	for k, v := range mf.Textures {
		guid := core.InvalidGUID
		if v.GUID != "" {
			if guid, err = core.IdentifierParseGUID(v.GUID); err != nil {
				return nil, fmt.Errorf("texture %s: invalid guid: %w", k, err)
			}
		}
		m.SetTexture(k, &metadata.Texture{
			GUID: guid,
			Path: v.Path,
			Name: trimExt(path.Base(v.Path)),
		})
	}
	for _, kw := range mf.Keywords {
		m.EnableKeyword(kw)
	}

	if err := validateMaterial(m); err != nil {
		return nil, err
	}
	return m, nil
}

// EncodeMaterial serializes a material asset. Output is deterministic.
func EncodeMaterial(m *metadata.Material) ([]byte, error) {
	if err := validateMaterial(m); err != nil {
		return nil, err
	}
	mf := materialFile{
		Name:     m.Name,
		Shader:   m.ShaderName,
		GIFlag:   m.GIFlag.String(),
		Keywords: m.EnabledKeywords(),
		Floats:   make(map[string]float32, len(m.Floats)),
		Colors:   make(map[string][4]float32, len(m.Colors)),
		Textures: make(map[string]materialTextureEntry, len(m.Textures)),
	}
	for k, v := range m.Floats {
		mf.Floats[k] = v
	}
	for k, v := range m.Colors {
		mf.Colors[k] = v.Array()
	}
	for k, v := range m.Textures {
		mf.Textures[k] = materialTextureEntry{GUID: v.GUID.String(), Path: v.Path}
	}
	return toml.Marshal(mf)
}

func validateMaterial(material *metadata.Material) error {
	if material.Name == "" {
		return fmt.Errorf("material name is required")
	}

	if material.ShaderName == "" {
		return fmt.Errorf("shader name is required")
	}

	for name, c := range material.Colors {
		if c.X < 0 || c.Y < 0 || c.Z < 0 || c.W < 0 {
			return fmt.Errorf("colour %s must not be negative", name)
		}
	}

	for name, tex := range material.Textures {
		if tex.Path == "" && !tex.GUID.IsValid() {
			return fmt.Errorf("texture %s has neither guid nor path", name)
		}
	}

	return nil
}

func trimExt(name string) string {
	return name[:len(name)-len(path.Ext(name))]
}
