package engine

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/math"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
)

type ApplicationConfig struct {
	// ProjectRoot is the folder that contains the asset root.
	ProjectRoot string
	// Config is the project configuration, usually loaded from pbrforge.toml.
	Config *core.Config
	// Preferences persist the material name prefix and suffix. Can be nil.
	Preferences *core.Preferences
	// WatchDebounce is how long watch mode waits for changes to settle
	// before rebuilding. Zero means DefaultWatchDebounce.
	WatchDebounce time.Duration
}

const DefaultWatchDebounce = 250 * time.Millisecond

// NewDescriptor returns a descriptor for folder populated from the project
// configuration and the persisted preferences.
func (ac *ApplicationConfig) NewDescriptor(folder string) (*metadata.MaterialDescriptor, error) {
	cfg := ac.Config
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	mode, err := metadata.ParseWorkflowMode(cfg.DefaultMode)
	if err != nil {
		return nil, fmt.Errorf("default_mode: %w", err)
	}

	desc := &metadata.MaterialDescriptor{
		Folder:         folder,
		NamePrefix:     metadata.DefaultMaterialPrefix,
		Mode:           mode,
		Slots:          make(metadata.TextureSlots),
		PackSmoothness: cfg.PackSmoothness,
		Metallic:       cfg.Scalars.Metallic,
		Smoothness:     cfg.Scalars.Smoothness,
		SpecularColor:  math.NewVec4FromArray(cfg.Scalars.SpecularColor),
		Emission: metadata.EmissionSettings{
			Auto:   true,
			Color:  math.NewVec4FromArray(cfg.Scalars.EmissionColor),
			GIFlag: metadata.GIFlagBaked,
		},
	}
	if ac.Preferences != nil {
		desc.NamePrefix = ac.Preferences.GetString(core.PrefKeyMaterialPrefix, metadata.DefaultMaterialPrefix)
		desc.NameSuffix = ac.Preferences.GetString(core.PrefKeyMaterialSuffix, "")
	}
	return desc, nil
}
