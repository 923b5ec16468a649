package systems

import (
	"context"
	"fmt"
	"os"

	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
)

// Preview is the outcome of discovery and workflow resolution, before
// anything is written.
type Preview struct {
	AssetFolder  string
	MaterialName string
	MaterialPath string
	Slots        metadata.TextureSlots
	Workflow     WorkflowResolution
	// PackSource is set when packing was requested and a gloss source exists.
	PackSource *metadata.TextureRole
	PackInvert bool
}

// Result reports a completed run.
type Result struct {
	Preview
	MaterialGUID core.GUID
	Created      bool
	Packed       *metadata.Texture
}

// ValidateFolder checks the two conditions that abort a run: an empty path
// and a path outside the asset root. It returns the folder as an asset path.
func (sm *SystemManager) ValidateFolder(folder string) (string, error) {
	if folder == "" {
		return "", core.ErrEmptyFolderPath
	}
	assetFolder, err := sm.db.ToAssetPath(folder)
	if err != nil {
		return "", err
	}
	s, err := os.Stat(sm.db.AbsPath(assetFolder))
	if err != nil {
		return "", fmt.Errorf("%w: %s", core.ErrAssetNotFound, assetFolder)
	}
	if !s.IsDir() {
		return "", fmt.Errorf("%s is not a folder", assetFolder)
	}
	return assetFolder, nil
}

// Preview validates the folder, discovers textures and resolves the
// workflow. Explicit slots in desc win over discovered ones.
func (sm *SystemManager) Preview(desc *metadata.MaterialDescriptor) (*Preview, error) {
	assetFolder, err := sm.ValidateFolder(desc.Folder)
	if err != nil {
		return nil, err
	}
	if err := sm.db.Refresh(); err != nil {
		return nil, err
	}

	slots, err := sm.discoverySystem.Discover(assetFolder)
	if err != nil {
		return nil, err
	}
	for role, tex := range desc.Slots {
		slots.Set(role, tex)
	}

	name := MaterialName(desc.Folder, desc.NamePrefix, desc.NameSuffix, desc.NameOverride)
	p := &Preview{
		AssetFolder:  assetFolder,
		MaterialName: name,
		MaterialPath: MaterialPath(assetFolder, name),
		Slots:        slots,
		Workflow:     ResolveWorkflow(slots, desc.Mode, desc.Metallic),
	}
	if desc.PackSmoothness {
		if role, invert, ok := SelectPackSource(slots); ok {
			p.PackSource = &role
			p.PackInvert = invert
		}
	}
	return p, nil
}

// Run executes discovery, material assembly and import configuration in
// order. Re-running against the same folder updates the material in place.
func (sm *SystemManager) Run(ctx context.Context, desc *metadata.MaterialDescriptor) (*Result, error) {
	preview, err := sm.Preview(desc)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	emission := desc.Emission
	if emission.Auto {
		emission.Enabled = preview.Slots.Has(metadata.TextureRoleEmission)
	}

	build, err := sm.materialSystem.Build(BuildRequest{
		AssetFolder: preview.AssetFolder,
		Name:        preview.MaterialName,
		Workflow:    preview.Workflow,
		Slots:       preview.Slots,
		Emission:    emission,
		Pack:        desc.PackSmoothness,
		Smoothness:  desc.Smoothness,
		Specular:    desc.SpecularColor,
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := sm.textureSystem.FixImports(preview.Slots); err != nil {
		return nil, err
	}
	if err := sm.db.Refresh(); err != nil {
		return nil, err
	}

	return &Result{
		Preview:      *preview,
		MaterialGUID: build.Material.GUID,
		Created:      build.Created,
		Packed:       build.Packed,
	}, nil
}
